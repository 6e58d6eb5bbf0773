package backend

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadBaseline reads baseline feature rows for anomaly fitting.
// Supports: .csv (optional header row) and .json (array of number arrays).
func LoadBaseline(path string) ([][]float64, error) {
	if path == "" {
		return nil, errors.New("empty baseline path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows [][]float64
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readBaselineCSV(f)
	case ".json":
		err = json.NewDecoder(f).Decode(&rows)
	default:
		return nil, fmt.Errorf("unsupported baseline extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("baseline %s has no rows", path)
	}
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("baseline %s row %d column %d is not finite", path, i, j)
			}
		}
	}
	return rows, nil
}

func readBaselineCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	var rows [][]float64
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		row := make([]float64, len(rec))
		numeric := true
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				numeric = false
				break
			}
			row[i] = v
		}
		if !numeric {
			// A non-numeric first line is a header.
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: non-numeric value", line)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
