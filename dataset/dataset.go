// Package dataset loads declarative records from YAML documents.
//
// A dataset is a single document of the form:
//
//	records:
//	  - category: TimeIndex
//	    variant: Regular
//	    name: weekly
//	    fields:
//	      start: 2030-01-01T00:00:00Z
//	      step: 168h
//	      count: 52
//
// Record order is irrelevant to resolution but fixes diagnostic ordering on
// failure, so it is preserved.
package dataset

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vassdrag/lpbuild"
)

type document struct {
	Records []entry `yaml:"records"`
}

type entry struct {
	Category string         `yaml:"category"`
	Variant  string         `yaml:"variant"`
	Name     string         `yaml:"name"`
	Fields   map[string]any `yaml:"fields"`
}

// Load reads the dataset at path.
func Load(path string) ([]lpbuild.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()
	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return records, nil
}

// Parse decodes a dataset document from r.
func Parse(r io.Reader) ([]lpbuild.Record, error) {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(doc.Records) == 0 {
		return nil, fmt.Errorf("no records")
	}

	seen := make(map[lpbuild.Id]int, len(doc.Records))
	records := make([]lpbuild.Record, 0, len(doc.Records))
	for i, item := range doc.Records {
		record := lpbuild.Record{
			Category: item.Category,
			Variant:  item.Variant,
			Name:     item.Name,
			Fields:   item.Fields,
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, dup := seen[record.Id()]; dup {
			return nil, fmt.Errorf("record %d: duplicate identity %s (first at %d)", i, record.Id(), prev)
		}
		seen[record.Id()] = i
		records = append(records, record)
	}
	return records, nil
}
