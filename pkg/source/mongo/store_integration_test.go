//go:build integration

package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/genetrack/pkg/genome"
)

func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Connect(ctx, Options{URI: uri, Database: "genetrack_test", Track: "it-" + uuid.NewString()})
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer s.Close(context.Background())
	defer s.Delete(context.Background())

	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error: %v", err)
	}

	features := []genome.Feature{
		{Name: "late", Chrom: "chr1", Start: 500, End: 600},
		{Name: "early", Chrom: "chr1", Start: 10, End: 120},
		{Name: "abuts", Chrom: "chr1", Start: 0, End: 100},
		{Name: "other", Chrom: "chr2", Start: 150, End: 160},
	}
	n, err := s.Insert(ctx, features)
	if err != nil || n != 4 {
		t.Fatalf("Insert() = %d, %v", n, err)
	}

	got, err := s.Features(ctx, genome.Region{Chrom: "chr1", Start: 100, End: 550})
	if err != nil {
		t.Fatalf("Features() error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "early" || got[1].Name != "late" {
		t.Errorf("Features() = %+v, want [early late]", got)
	}

	if count, err := s.Count(ctx); err != nil || count != 4 {
		t.Errorf("Count() = %d, %v", count, err)
	}
	if n, err := s.Replace(ctx, features[:1]); err != nil || n != 1 {
		t.Errorf("Replace() = %d, %v", n, err)
	}
}
