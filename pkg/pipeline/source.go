package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/io"
)

// Source supplies the features overlapping a region.
//
// Implementations may return features outside the region; the layout stage
// filters them. Name identifies the source in cache keys and logs and must
// change whenever the underlying data does.
type Source interface {
	Name() string
	Features(ctx context.Context, region genome.Region) ([]genome.Feature, error)
}

// FileSource reads a BED or JSON feature file on every load.
type FileSource struct {
	Path string
}

// Name includes the file's modification time so that edits invalidate
// cached feature sets.
func (s FileSource) Name() string {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "file:" + s.Path
	}
	return fmt.Sprintf("file:%s@%d", s.Path, info.ModTime().UnixNano())
}

func (s FileSource) Features(ctx context.Context, region genome.Region) ([]genome.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.ImportFile(s.Path)
}

// StaticSource serves an in-memory feature set, as used by the terminal
// browser after the first load and by tests.
type StaticSource struct {
	ID   string
	List []genome.Feature
}

func (s StaticSource) Name() string { return "static:" + s.ID }

func (s StaticSource) Features(context.Context, genome.Region) ([]genome.Feature, error) {
	if s.List == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no features loaded for %s", s.ID)
	}
	return s.List, nil
}
