package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
)

type featureFile struct {
	Features []genome.Feature `json:"features"`
}

// ReadJSON decodes a {"features": [...]} document from r. Features without
// a name are named after their location. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]genome.Feature, error) {
	var data featureFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode features")
	}
	if data.Features == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, `missing "features" array`)
	}
	for i := range data.Features {
		f := &data.Features[i]
		if f.Name == "" {
			f.Name = genome.Region{Chrom: f.Chrom, Start: f.Start, End: f.End}.String()
		}
		if f.Strand == "" {
			f.Strand = genome.StrandNone
		}
	}
	return data.Features, nil
}

// WriteJSON encodes features as an indented {"features": [...]} document.
func WriteJSON(w io.Writer, features []genome.Feature) error {
	if features == nil {
		features = []genome.Feature{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(featureFile{Features: features}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes features to a JSON file at path.
func ExportJSON(path string, features []genome.Feature) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, features); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
