package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
)

const maxLineSize = 1 << 20

// ReadBED decodes BED3 to BED12 records from r.
func ReadBED(r io.Reader) ([]genome.Feature, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var features []genome.Feature
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if skipBEDLine(line) {
			continue
		}
		f, err := parseBEDLine(line)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "BED line %d", lineNo)
		}
		features = append(features, f)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read BED")
	}
	return features, nil
}

func skipBEDLine(line string) bool {
	return line == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

func parseBEDLine(line string) (genome.Feature, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 3 {
		cols = strings.Fields(line)
	}
	if len(cols) < 3 {
		return genome.Feature{}, fmt.Errorf("need at least 3 columns, got %d", len(cols))
	}

	start, err := strconv.ParseInt(strings.TrimSpace(cols[1]), 10, 64)
	if err != nil {
		return genome.Feature{}, fmt.Errorf("start: %w", err)
	}
	end, err := strconv.ParseInt(strings.TrimSpace(cols[2]), 10, 64)
	if err != nil {
		return genome.Feature{}, fmt.Errorf("end: %w", err)
	}

	f := genome.Feature{
		Chrom: strings.TrimSpace(cols[0]),
		Start: start,
		End:   end,
		Kind:  genome.KindAnnotation,
	}
	if len(cols) > 3 {
		f.Name = strings.TrimSpace(cols[3])
	}
	if len(cols) > 4 && cols[4] != "." {
		if score, err := strconv.ParseFloat(cols[4], 64); err == nil && !math.IsNaN(score) && !math.IsInf(score, 0) {
			setMeta(&f, "score", score)
		}
	}
	if len(cols) > 5 {
		f.Strand = genome.ParseStrand(strings.TrimSpace(cols[5]))
	}
	if len(cols) > 8 && cols[8] != "0" && cols[8] != "." {
		setMeta(&f, "color", "rgb("+cols[8]+")")
	}
	if len(cols) >= 12 {
		exons, err := parseBlocks(start, end, cols[9], cols[10], cols[11])
		if err != nil {
			return genome.Feature{}, err
		}
		if len(exons) > 0 {
			f.Exons = exons
			f.Kind = genome.KindGene
		}
	}
	if f.Name == "" || f.Name == "." {
		f.Name = genome.Region{Chrom: f.Chrom, Start: f.Start, End: f.End}.String()
	}
	return f, nil
}

// parseBlocks reads the BED12 block columns. Blocks must lie inside the
// feature's [start, end).
func parseBlocks(start, end int64, countCol, sizesCol, startsCol string) ([]genome.Exon, error) {
	count, err := strconv.Atoi(strings.TrimSpace(countCol))
	if err != nil {
		return nil, fmt.Errorf("blockCount: %w", err)
	}
	sizes, err := parseIntList(sizesCol)
	if err != nil {
		return nil, fmt.Errorf("blockSizes: %w", err)
	}
	starts, err := parseIntList(startsCol)
	if err != nil {
		return nil, fmt.Errorf("blockStarts: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("blockCount cannot be negative: %d", count)
	}
	if len(sizes) < count || len(starts) < count {
		return nil, fmt.Errorf("blockCount %d but %d sizes and %d starts", count, len(sizes), len(starts))
	}

	exons := make([]genome.Exon, count)
	for i := range count {
		if starts[i] < 0 || sizes[i] < 0 || starts[i] > end-start-sizes[i] {
			return nil, fmt.Errorf("block %d (start %d, size %d) outside the feature", i, starts[i], sizes[i])
		}
		s := start + starts[i]
		exons[i] = genome.Exon{Start: s, End: s + sizes[i]}
	}
	return exons, nil
}

// parseIntList parses "1,2,3," as written by UCSC tools.
func parseIntList(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(strings.TrimSpace(s), ",") {
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func setMeta(f *genome.Feature, key string, v any) {
	if f.Meta == nil {
		f.Meta = map[string]any{}
	}
	f.Meta[key] = v
}
