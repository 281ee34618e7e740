package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genetrack/pkg/cache"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

func TestCacheDir(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestNewCache(t *testing.T) {
	ctx := t.Context()
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Dir = t.TempDir()

	cc, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	if fc, ok := cc.(*cache.FileCache); !ok || fc.Dir() != c.Config.Cache.Dir {
		t.Errorf("newCache() = %T, want FileCache in the configured dir", cc)
	}

	if cc, _ := c.newCache(ctx, true); cc != cache.NewNullCache() {
		t.Errorf("newCache(noCache) = %T, want NullCache", cc)
	}

	c.Config.Cache.Disabled = true
	if cc, _ := c.newCache(ctx, false); cc != cache.NewNullCache() {
		t.Errorf("newCache() with cache disabled = %T, want NullCache", cc)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "genes.bed", "genes"},
		{"", "data/genes.bed.gz", "data/genes"},
		{"", "track.json", "track"},
		{"out/view.svg", "genes.bed", "out/view"},
		{"out/view", "genes.bed", "out/view"},
		{"view.txt", "genes.bed", "view.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "svg"},
		{"png", "png"},
		{"svg,json,dot", "svg|json|dot"},
	}
	for _, tt := range tests {
		if got := strings.Join(parseFormats(tt.input), "|"); got != tt.want {
			t.Errorf("parseFormats(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTrackName(t *testing.T) {
	for path, want := range map[string]string{
		"genes.bed":               "genes",
		"data/refGene.bed.gz":     "refGene",
		"/abs/alignment.json":     "alignment",
		"no-extension":            "no-extension",
		"tracks/v1.2/gencode.bed": "gencode",
	} {
		if got := trackName(path); got != want {
			t.Errorf("trackName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestValidFeatures(t *testing.T) {
	in := []genome.Feature{
		{Name: "A", Start: 0, End: 10},
		{Name: "empty", Start: 5, End: 5},
		{Name: "neg", Start: -1, End: 10},
		{Name: "bad\x00name", Start: 0, End: 10},
		{Name: "B", Start: 20, End: 30},
	}
	got, skipped := validFeatures(in, log.New(io.Discard))
	if skipped != 3 {
		t.Errorf("skipped = %d, want 3", skipped)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("valid = %v, want [A B]", got)
	}
	if in[1].Name != "empty" {
		t.Error("input slice was modified")
	}
}

func TestFeatureExtent(t *testing.T) {
	features := []genome.Feature{
		{Name: "bad", Chrom: "chr1", Start: 10, End: 10},
		{Name: "A", Chrom: "chr2", Start: 500, End: 600},
		{Name: "B", Chrom: "chr2", Start: 100, End: 200},
		{Name: "C", Chrom: "chr3", Start: 0, End: 5000},
		{Name: "D", Chrom: "chr2", Start: 550, End: 900},
	}
	got, ok := featureExtent(features)
	if !ok {
		t.Fatal("featureExtent() found nothing")
	}
	if want := (genome.Region{Chrom: "chr2", Start: 100, End: 900}); got != want {
		t.Errorf("featureExtent() = %v, want %v", got, want)
	}

	if _, ok := featureExtent(features[:1]); ok {
		t.Error("featureExtent() of malformed features should report nothing")
	}
}

func TestOptionsFlagsOverrideConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Track.MaxRows = 2
	c.Config.Render.Titles = true
	c.Config.Render.RowHeight = 20

	var flags trackFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)

	opts, err := c.options(cmd, "genes.bed", &flags)
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}
	if *opts.MaxRows != 2 || !opts.Titles || opts.RowHeight != 20 {
		t.Errorf("config values not applied: max_rows=%d titles=%v row_height=%v", *opts.MaxRows, opts.Titles, opts.RowHeight)
	}

	for name, value := range map[string]string{
		"max-rows":         "0",
		"titles":           "false",
		"region":           "chr7:1,000-2,000",
		"label-char-width": "0",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	opts, err = c.options(cmd, "genes.bed", &flags)
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}
	if *opts.MaxRows != 0 || opts.Titles || *opts.LabelCharWidth != 0 {
		t.Errorf("flags not applied: max_rows=%d titles=%v label_char_width=%v", *opts.MaxRows, opts.Titles, *opts.LabelCharWidth)
	}
	if want := (genome.Region{Chrom: "chr7", Start: 1000, End: 2000}); opts.Region != want {
		t.Errorf("Region = %v, want %v", opts.Region, want)
	}
	if opts.RowHeight != 20 {
		t.Errorf("unset --row-height should keep the config value, got %v", opts.RowHeight)
	}

	if err := cmd.Flags().Set("region", "chr1:9-3"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.options(cmd, "genes.bed", &flags); err == nil {
		t.Error("options() should reject an inverted region")
	}
}

func TestHiddenText(t *testing.T) {
	if got := hiddenText(layout.Layout{MaxRows: 4}); got != "" {
		t.Errorf("hiddenText() = %q, want empty", got)
	}
	if got := hiddenText(layout.Layout{MaxRows: 4, Hidden: 3}); got != "3 genes unlabeled" {
		t.Errorf("hiddenText() = %q", got)
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(42, "1 gene unlabeled", true)
	for _, want := range []string{"42 features", "1 gene unlabeled", "cached"} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine() = %q, missing %q", line, want)
		}
	}
	if line := statsLine(0, "", false); !strings.Contains(line, "fresh") || strings.Contains(line, "features") {
		t.Errorf("statsLine() = %q", line)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, "genes.bed", filepath.Join(dir, "view.svg"))
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{filepath.Join(dir, "view.svg"), filepath.Join(dir, "view.json")}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	single := filepath.Join(dir, "exact.name")
	paths, err = writeArtifacts(artifacts, []string{"svg"}, "genes.bed", single)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if len(paths) != 1 || paths[0] != single {
		t.Errorf("single format paths = %v, want [%s]", paths, single)
	}
	if data, _ := os.ReadFile(single); string(data) != "<svg/>" {
		t.Errorf("wrote %q", data)
	}
}
