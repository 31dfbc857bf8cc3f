// Package catalogio loads a seed catalog from the three-CSV-file layout
// the original scrtdd catalog loader used (stations.csv, events.csv,
// phases.csv with a header row each) -- the engine otherwise treats
// catalog loading as an out-of-scope external collaborator, so this
// package gives the CLI something concrete to read.
package catalogio

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
)

// LoadCatalog reads stationPath/eventPath/phasePath into a single
// consistent catalog, in that order, so phases can reference already-loaded
// stations and events.
func LoadCatalog(stationPath, eventPath, phasePath string) (*geo.Catalog, error) {
	catalog := geo.NewCatalog()

	if err := loadStations(catalog, stationPath); err != nil {
		return nil, err
	}
	if err := loadEvents(catalog, eventPath); err != nil {
		return nil, err
	}
	if err := loadPhases(catalog, phasePath); err != nil {
		return nil, err
	}
	return catalog, nil
}

func loadStations(catalog *geo.Catalog, path string) error {
	rows, err := readCSVWithHeader(path)
	if err != nil {
		return err
	}
	for _, row := range rows {
		lat, err := strconv.ParseFloat(row["latitude"], 64)
		if err != nil {
			return csvFieldError(path, "latitude", err)
		}
		lon, err := strconv.ParseFloat(row["longitude"], 64)
		if err != nil {
			return csvFieldError(path, "longitude", err)
		}
		elev, err := strconv.ParseFloat(row["elevation"], 64)
		if err != nil {
			return csvFieldError(path, "elevation", err)
		}

		st := &geo.Station{
			ID: geo.StationID{
				Network:  row["networkCode"],
				Station:  row["stationCode"],
				Location: row["locationCode"],
			},
			Latitude: lat, Longitude: lon, Elevation: elev,
		}
		if err := catalog.AddStation(st); err != nil {
			return err
		}
	}
	return nil
}

func loadEvents(catalog *geo.Catalog, path string) error {
	rows, err := readCSVWithHeader(path)
	if err != nil {
		return err
	}
	for _, row := range rows {
		id, err := strconv.Atoi(row["id"])
		if err != nil {
			return csvFieldError(path, "id", err)
		}
		origin, err := time.Parse(time.RFC3339Nano, row["isotime"])
		if err != nil {
			return csvFieldError(path, "isotime", err)
		}
		lat, err := strconv.ParseFloat(row["latitude"], 64)
		if err != nil {
			return csvFieldError(path, "latitude", err)
		}
		lon, err := strconv.ParseFloat(row["longitude"], 64)
		if err != nil {
			return csvFieldError(path, "longitude", err)
		}
		depth, err := strconv.ParseFloat(row["depth"], 64)
		if err != nil {
			return csvFieldError(path, "depth", err)
		}

		ev := &geo.Event{
			ID: id, OriginTime: origin, Latitude: lat, Longitude: lon, Depth: depth,
			Magnitude:             parseFloatOr(row["magnitude"], 0),
			HorizontalUncertainty: parseFloatOr(row["eh"], 0),
			VerticalUncertainty:   parseFloatOr(row["ev"], 0),
			RMS:                   parseFloatOr(row["rms"], 0),
		}
		if err := catalog.AddEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func loadPhases(catalog *geo.Catalog, path string) error {
	rows, err := readCSVWithHeader(path)
	if err != nil {
		return err
	}
	for _, row := range rows {
		eventID, err := strconv.Atoi(row["eventId"])
		if err != nil {
			return csvFieldError(path, "eventId", err)
		}
		ph, err := phaseFromRow(path, row)
		if err != nil {
			return err
		}
		if err := catalog.AddPhase(eventID, ph); err != nil {
			return err
		}
	}
	return nil
}

// LoadPhases reads a phases.csv-shaped file without an eventId column,
// for staging a single new origin's picks before it has a catalog id
// (cmd's "single" subcommand).
func LoadPhases(path string) ([]*geo.Phase, error) {
	rows, err := readCSVWithHeader(path)
	if err != nil {
		return nil, err
	}
	phases := make([]*geo.Phase, 0, len(rows))
	for _, row := range rows {
		ph, err := phaseFromRow(path, row)
		if err != nil {
			return nil, err
		}
		phases = append(phases, ph)
	}
	return phases, nil
}

func phaseFromRow(path string, row map[string]string) (*geo.Phase, error) {
	pickTime, err := time.Parse(time.RFC3339Nano, row["isotime"])
	if err != nil {
		return nil, csvFieldError(path, "isotime", err)
	}
	weight, err := strconv.ParseFloat(row["weight"], 64)
	if err != nil {
		return nil, csvFieldError(path, "weight", err)
	}

	return &geo.Phase{
		StationID: geo.StationID{
			Network:  row["networkCode"],
			Station:  row["stationCode"],
			Location: row["locationCode"],
		},
		Type:     geo.PhaseType(row["type"]),
		Time:     pickTime,
		Weight:   weight,
		IsManual: row["evalMode"] == "manual",
		Stream: geo.StreamCoordinates{
			Network: row["networkCode"], Station: row["stationCode"],
			Location: row["locationCode"], Channel: row["channelCode"],
		},
	}, nil
}

func parseFloatOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func csvFieldError(path, field string, err error) error {
	return errors.New(err).Category(errors.CategoryCatalog).
		Context("file", path).Context("field", field).Build()
}

// readCSVWithHeader reads an Excel-dialect CSV file (encoding/csv handles
// quoting the same way), returning each row as a header-name-keyed map,
// mirroring the original catalog loader's CSV::readWithHeader.
func readCSVWithHeader(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryCatalog).
			Context("file", path).Build()
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryCatalog).
			Context("file", path).Build()
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(err).Category(errors.CategoryCatalog).
				Context("file", path).Build()
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
