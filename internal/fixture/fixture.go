// Package fixture loads reference fixture tables and checks an assignment
// function against them.
//
// A table is a list of [state, buckets, expected] rows, stored as JSON or
// YAML.
package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("fixture: unsupported format")
	ErrMalformedCase     = errors.New("fixture: malformed case")
)

// Format is the encoding of a fixture table.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Case is one fixture row.
type Case struct {
	State    int64
	Buckets  int32
	Expected int32
}

func (c Case) String() string {
	return fmt.Sprintf("guava(%d, %d) = %d", c.State, c.Buckets, c.Expected)
}

// FormatOf returns the format implied by the file extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads the fixture table at path.
func Load(path string) ([]Case, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file %s: %w", path, err)
	}

	cases, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse fixture file %s: %w", path, err)
	}
	return cases, nil
}

// Parse decodes a fixture table.
func Parse(data []byte, format Format) ([]Case, error) {
	var rows [][]int64

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCase, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCase, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	cases := make([]Case, 0, len(rows))
	for i, row := range rows {
		c, err := toCase(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func toCase(row []int64) (Case, error) {
	if len(row) != 3 {
		return Case{}, fmt.Errorf("%w: want 3 values, got %d", ErrMalformedCase, len(row))
	}
	if !fitsInt32(row[1]) || !fitsInt32(row[2]) {
		return Case{}, fmt.Errorf("%w: buckets and expected must fit in int32", ErrMalformedCase)
	}
	return Case{State: row[0], Buckets: int32(row[1]), Expected: int32(row[2])}, nil
}

func fitsInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}
