// Package reloc parses hypoDD's output files and merges their contents
// back onto a geo.Catalog.
package reloc

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
)

// Record is one line of hypoDD.reloc: the relocated hypocenter plus the
// post-relocation statistics hypoDD reports for it, 24 columns: id lat lon
// depth x y z ex ey ez yr mo dy hr mi sc mag nCCp nCCs nCTp nCTs rCC rCT cid.
type Record struct {
	EventID int

	Latitude  float64
	Longitude float64
	Depth     float64

	// X/Y/Z are the relocation offsets from the cluster centroid, km.
	X, Y, Z float64
	// EX/EY/EZ are the east/north/depth relocation error estimates, km.
	EX, EY, EZ float64

	OriginTime time.Time
	Magnitude  float64

	NumCCP, NumCCS int
	NumCTP, NumCTS int

	RCC, RCT float64 // RMS residuals, seconds

	ClusterID int
}

// ParseReloc reads hypoDD.reloc into Records, one per line.
func ParseReloc(r io.Reader) ([]Record, error) {
	var out []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 24 {
			return nil, errors.Newf("hypoDD.reloc line has %d fields, want 24: %q", len(fields), line).
				Category(errors.CategoryRelocResult).Build()
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryRelocResult).Build()
		}

		f := make([]float64, 23)
		for i, s := range fields[1:] {
			v, perr := strconv.ParseFloat(s, 64)
			if perr != nil {
				return nil, errors.New(perr).Category(errors.CategoryRelocResult).
					Context("field_index", i+1).Build()
			}
			f[i] = v
		}

		origin, err := relocDateTime(int(f[9]), int(f[10]), int(f[11]), int(f[12]), int(f[13]), f[14])
		if err != nil {
			return nil, err
		}

		out = append(out, Record{
			EventID:   id,
			Latitude:  f[0],
			Longitude: f[1],
			Depth:     f[2],
			X:         f[3], Y: f[4], Z: f[5],
			EX: f[6], EY: f[7], EZ: f[8],
			OriginTime: origin,
			Magnitude:  f[15],
			NumCCP:     int(f[16]), NumCCS: int(f[17]),
			NumCTP: int(f[18]), NumCTS: int(f[19]),
			RCC: f[20], RCT: f[21],
			ClusterID: int(f[22]),
		})
	}
	return out, scanner.Err()
}

// relocDateTime builds a UTC time.Time from hypoDD.reloc's split
// year/month/day/hour/minute + fractional-seconds fields.
func relocDateTime(yr, mo, dy, hr, mi int, sec float64) (time.Time, error) {
	wholeSec := int(sec)
	nsec := int(math.Round((sec - float64(wholeSec)) * 1e9))
	return time.Date(yr, time.Month(mo), dy, hr, mi, wholeSec, nsec, time.UTC), nil
}

// Category is hypoDD.res field 5's observation category.
type Category int

const (
	CategoryCCP Category = 1
	CategoryCCS Category = 2
	CategoryCTP Category = 3
	CategoryCTS Category = 4
)

// ResRecord is one line of hypoDD.res: a single (station, phase)
// observation's residual and final weight, contributing to both
// participating events' statistics.
//
// hypoDD.res's exact 9-column layout beyond "field 5 is the category" is
// otherwise unconstrained; this loader uses the layout
// "sta ev1 ev2 idx category residual weight obs calc", which keeps field
// 5 the category and gives every other field a role the
// statement "contributes residual and final weight to both participating
// events" needs (the two event ids and the station identifying which
// (event, station, phase) keys receive the contribution).
type ResRecord struct {
	Station       geo.StationID
	Event1, Event2 int
	Category      Category
	Residual      float64
	Weight        float64
}

// ParseRes reads hypoDD.res into ResRecords, one per line. A blank or
// missing hypoDD.res is not an error — it is an optional result file.
func ParseRes(r io.Reader) ([]ResRecord, error) {
	var out []ResRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 9 {
			return nil, errors.Newf("hypoDD.res line has %d fields, want 9: %q", len(fields), line).
				Category(errors.CategoryRelocResult).Build()
		}

		ev1, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryRelocResult).Build()
		}
		ev2, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryRelocResult).Build()
		}
		cat, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryRelocResult).Build()
		}
		residual, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryRelocResult).Build()
		}
		weight, err := strconv.ParseFloat(fields[6], 64)
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryRelocResult).Build()
		}

		out = append(out, ResRecord{
			Station: parseStationField(fields[0]),
			Event1:  ev1, Event2: ev2,
			Category: Category(cat),
			Residual: residual,
			Weight:   weight,
		})
	}
	return out, scanner.Err()
}

// parseStationField splits a "NET.STA" token, defaulting Network to empty
// when no separator is present (hypoDD.res historically carries bare
// station codes without a network prefix).
func parseStationField(tok string) geo.StationID {
	if idx := strings.IndexByte(tok, '.'); idx >= 0 {
		return geo.StationID{Network: tok[:idx], Station: tok[idx+1:]}
	}
	return geo.StationID{Station: tok}
}
