package errors

import (
	"strings"
	"testing"

	"github.com/matzehuels/genetrack/pkg/genome"
)

func TestValidateRegion(t *testing.T) {
	tests := []struct {
		name    string
		input   genome.Region
		wantErr bool
	}{
		{"valid", genome.Region{Chrom: "chr1", Start: 0, End: 100}, false},
		{"no chrom", genome.Region{Start: 10, End: 20}, false},
		{"scaffold name", genome.Region{Chrom: "chrUn_KI270302v1", Start: 0, End: 1}, false},

		{"empty", genome.Region{Chrom: "chr1", Start: 5, End: 5}, true},
		{"reversed", genome.Region{Chrom: "chr1", Start: 10, End: 5}, true},
		{"negative start", genome.Region{Start: -1, End: 5}, true},
		{"bad chrom", genome.Region{Chrom: "chr 1", Start: 0, End: 5}, true},
		{"chrom traversal", genome.Region{Chrom: "../etc", Start: 0, End: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegion(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRegion) {
				t.Errorf("ValidateRegion(%v) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateFeature(t *testing.T) {
	tests := []struct {
		name    string
		input   genome.Feature
		wantErr bool
	}{
		{"valid", genome.Feature{Name: "BRCA2", Start: 1, End: 2}, false},
		{"unicode name", genome.Feature{Name: "Δ-region", Start: 1, End: 2}, false},

		{"empty name", genome.Feature{Start: 1, End: 2}, true},
		{"long name", genome.Feature{Name: strings.Repeat("a", 300), Start: 1, End: 2}, true},
		{"control char", genome.Feature{Name: "a\x01b", Start: 1, End: 2}, true},
		{"newline", genome.Feature{Name: "a\nb", Start: 1, End: 2}, true},
		{"zero length", genome.Feature{Name: "a", Start: 2, End: 2}, true},
		{"negative start", genome.Feature{Name: "a", Start: -5, End: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeature(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeature(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFeature) {
				t.Errorf("ValidateFeature(%v) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "genes.bed", false},
		{"valid nested", "hg38/refseq/genes.bed", false},
		{"valid with dots", "v1.2.3/segments.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"black", false},
		{"orange", false},
		{"#fff", false},
		{"#FF8800", false},

		{"", true},
		{"#ff", true},
		{"#gggggg", true},
		{"red;stroke:blue", true},
		{`pink" onload="x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidRegion,
		ErrCodeInvalidFeature,
		ErrCodeInvalidFormat,
		ErrCodeInvalidStyle,
		ErrCodeInvalidConfig,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}
