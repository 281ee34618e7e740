package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matzehuels/genetrack/pkg/genome"
)

const (
	maxFeatureNameLength = 256
	maxPathLength        = 500
)

var chromRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateChrom validates a chromosome or contig name.
func ValidateChrom(chrom string) error {
	if chrom == "" {
		return New(ErrCodeInvalidRegion, "chromosome cannot be empty")
	}
	if len(chrom) > maxFeatureNameLength {
		return New(ErrCodeInvalidRegion, "chromosome name too long (max %d characters)", maxFeatureNameLength)
	}
	if !chromRegex.MatchString(chrom) {
		return New(ErrCodeInvalidRegion, "invalid chromosome name: %q", chrom)
	}
	return nil
}

// ValidateRegion validates a view region: a non-negative start, an end
// greater than the start, and a well-formed chromosome when one is set.
func ValidateRegion(r genome.Region) error {
	if r.Chrom != "" {
		if err := ValidateChrom(r.Chrom); err != nil {
			return err
		}
	}
	if r.Start < 0 {
		return New(ErrCodeInvalidRegion, "region start cannot be negative: %s", r)
	}
	if r.Empty() {
		return New(ErrCodeInvalidRegion, "region end must be greater than start: %s", r)
	}
	return nil
}

// ValidateFeatureName validates a feature display name. Names become SVG
// text and HTTP payloads, so control characters are rejected.
func ValidateFeatureName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFeature, "feature name cannot be empty")
	}
	if len(name) > maxFeatureNameLength {
		return New(ErrCodeInvalidFeature, "feature name too long (max %d characters)", maxFeatureNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFeature, "feature name contains invalid control characters")
		}
	}
	return nil
}

// ValidateFeature validates a feature's name and coordinates.
func ValidateFeature(f genome.Feature) error {
	if err := ValidateFeatureName(f.Name); err != nil {
		return err
	}
	if f.Start < 0 {
		return New(ErrCodeInvalidFeature, "feature %q: start cannot be negative", f.Name)
	}
	if !f.Valid() {
		return New(ErrCodeInvalidFeature, "feature %q: end must be greater than start", f.Name)
	}
	return nil
}

// ValidatePath validates a track file path relative to a data directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

var (
	hexColorRegex   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColorRegex = regexp.MustCompile(`^[a-z]{3,20}$`)
)

// ValidateColor accepts "#rgb", "#rrggbb" and lowercase SVG colour names.
func ValidateColor(c string) error {
	if hexColorRegex.MatchString(c) || namedColorRegex.MatchString(c) {
		return nil
	}
	return New(ErrCodeInvalidStyle, "invalid colour: %q", c)
}
