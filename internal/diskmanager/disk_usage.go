// Package diskmanager checks available disk space before a relocation run
// writes waveform cache files and external-tool work directories
//.
package diskmanager

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/quakego/hdd/internal/errors"
)

// DiskSpaceInfo holds detailed disk space information for one filesystem.
type DiskSpaceInfo struct {
	TotalBytes  uint64
	UsedBytes   uint64
	FreeBytes   uint64
	UsedPercent float64
	Filesystem  string
}

// GetDetailedDiskUsage returns the total, used, and free disk space for the
// filesystem containing path.
func GetDetailedDiskUsage(path string) (DiskSpaceInfo, error) {
	startTime := time.Now()

	usage, err := disk.Usage(path)
	if err != nil {
		return DiskSpaceInfo{}, errors.New(fmt.Errorf("diskmanager: failed to read disk usage: %w", err)).
			Component("diskmanager").
			Category(errors.CategoryDiskUsage).
			Context("path", path).
			Timing("disk_usage_check", time.Since(startTime)).
			Build()
	}

	return DiskSpaceInfo{
		TotalBytes:  usage.Total,
		UsedBytes:   usage.Used,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
		Filesystem:  usage.Fstype,
	}, nil
}

// GetDiskUsage returns the disk usage percentage for the filesystem
// containing path.
func GetDiskUsage(path string) (float64, error) {
	info, err := GetDetailedDiskUsage(path)
	if err != nil {
		return 0, err
	}
	return info.UsedPercent, nil
}
