package io

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
)

// Format is a feature file format.
type Format string

const (
	FormatBED  Format = "bed"
	FormatJSON Format = "json"
)

// DetectFormat infers the format from path's extension, ignoring a
// trailing ".gz".
func DetectFormat(path string) (Format, error) {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(name) {
	case ".bed":
		return FormatBED, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported feature file: %s (want .bed, .bed.gz or .json)", path)
	}
}

// Read decodes features in the given format from r.
func Read(r io.Reader, format Format) ([]genome.Feature, error) {
	switch format {
	case FormatBED:
		return ReadBED(r)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
}

// ImportFile reads a BED or JSON feature file, transparently decompressing
// ".gz" files.
func ImportFile(path string) ([]genome.Feature, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	features, err := decode(f, path, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}

// ImportFS reads a feature file from fsys, as the HTTP server does for its
// data directory. name must be a valid relative path.
func ImportFS(fsys fs.FS, name string) ([]genome.Feature, error) {
	if err := errors.ValidatePath(name); err != nil {
		return nil, err
	}
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	f, err := fsys.Open(name)
	if err != nil {
		return nil, openError(name, err)
	}
	defer f.Close()
	return decode(f, name, format)
}

func decode(r io.Reader, name string, format Format) ([]genome.Feature, error) {
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "gzip %s", name)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r, format)
}

func openError(name string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "feature file %s", name)
	}
	return fmt.Errorf("open %s: %w", name, err)
}
