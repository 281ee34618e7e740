package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Track.MaxRows != 4 || cfg.Track.LabelCharWidth != 10 {
		t.Errorf("track defaults = %+v", cfg.Track)
	}
	if cfg.Drag.MinDistance != 20 {
		t.Errorf("drag.min_distance = %v, want 20", cfg.Drag.MinDistance)
	}
	if cfg.Render.RowHeight != 15 || cfg.Render.RowPadding != 5 || cfg.Render.HiddenPixels != 0 {
		t.Errorf("render defaults = %+v", cfg.Render)
	}
	if cfg.Render.SegmentColors["insertion"] != "pink" {
		t.Errorf("segment colours = %v", cfg.Render.SegmentColors)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	data := `
[track]
max_rows = 6

[render]
hidden_pixels = 1.5

[render.segment_colors]
mismatch = "#ff0000"

[server]
addr = ":9000"
read_timeout = "2s"
`
	cfg := Default()
	if err := Parse([]byte(data), &cfg); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Track.MaxRows != 6 {
		t.Errorf("MaxRows = %d, want 6", cfg.Track.MaxRows)
	}
	if cfg.Track.LabelCharWidth != 10 {
		t.Errorf("unset LabelCharWidth should keep default, got %v", cfg.Track.LabelCharWidth)
	}
	if cfg.Render.HiddenPixels != 1.5 {
		t.Errorf("HiddenPixels = %v", cfg.Render.HiddenPixels)
	}
	if got := cfg.Render.SegmentColorMap()[genome.SegmentMismatch]; got != "#ff0000" {
		t.Errorf("mismatch colour = %q", got)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout.Duration != 2*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax", "[track\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[track]\nmax_row = 3\n", errors.ErrCodeInvalidConfig},
		{"negative rows", "[track]\nmax_rows = -1\n", errors.ErrCodeInvalidConfig},
		{"zero row height", "[render]\nrow_height = 0\n", errors.ErrCodeInvalidConfig},
		{"bad style", "[render]\nstyle = \"handdrawn\"\n", errors.ErrCodeInvalidStyle},
		{"bad colour", "[render.segment_colors]\ndeletion = \"#12\"\n", errors.ErrCodeInvalidConfig},
		{"unknown class", "[render.segment_colors]\nsplice = \"red\"\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[server]\nread_timeout = \"soon\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Parse([]byte(tt.data), &cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "nope.toml"))
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Track.MaxRows != 4 {
			t.Errorf("missing file should yield defaults, got %+v", cfg.Track)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, FileName)
		if err := os.WriteFile(path, []byte("[drag]\nmin_distance = 35\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Drag.MinDistance != 35 {
			t.Errorf("MinDistance = %v, want 35", cfg.Drag.MinDistance)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(path, []byte("[track]\nmax_rows = \"many\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
		}
	})
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != "/tmp/xdg/genetrack/config.toml" {
		t.Errorf("DefaultPath() = %q", got)
	}
}
