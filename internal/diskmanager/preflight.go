package diskmanager

import (
	"fmt"
	"time"

	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/metrics"
)

// CheckPreflight verifies that path's filesystem has at least requiredBytes
// free before a run creates its work directory and waveform cache files,
// recording the check against m if non-nil. It returns an error categorized
// as CategoryDiskUsage when space is insufficient, so callers can abort the
// run before any external tool is spawned.
func CheckPreflight(path string, requiredBytes uint64, m *metrics.DiskManagerMetrics) error {
	start := time.Now()
	info, err := GetDetailedDiskUsage(path)
	duration := time.Since(start)

	if m != nil {
		m.RecordDiskCheckDuration(duration.Seconds())
	}
	if err != nil {
		return err
	}
	if m != nil {
		m.UpdateDiskUsage(info.UsedBytes, info.TotalBytes)
	}

	if info.FreeBytes < requiredBytes {
		return errors.Newf("insufficient disk space at %s: %d bytes free, %d required", path, info.FreeBytes, requiredBytes).
			Component("diskmanager").
			Category(errors.CategoryDiskUsage).
			Context("path", path).
			Context("free_bytes", fmt.Sprintf("%d", info.FreeBytes)).
			Context("required_bytes", fmt.Sprintf("%d", requiredBytes)).
			Build()
	}
	return nil
}
