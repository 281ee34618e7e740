package pipeline

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/genetrack/pkg/cache"
	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/observability"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

var testView = genome.Region{Chrom: "chr1", Start: 0, End: 1000}

func testFeatures() []genome.Feature {
	return []genome.Feature{
		{Name: "A", Chrom: "chr1", Start: 0, End: 100},
		{Name: "B", Chrom: "chr1", Start: 50, End: 150},
		{Name: "C", Chrom: "chr1", Start: 120, End: 200},
		{Name: "bad", Chrom: "chr1", Start: 300, End: 300},
	}
}

func testOptions() Options {
	return Options{
		Source:         StaticSource{ID: "test", List: testFeatures()},
		Region:         testView,
		LabelCharWidth: Float(0),
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing input error = %v, want INVALID_INPUT", err)
	}

	opts = Options{Input: "genes.bed"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Fatalf("ValidateForLoad() error: %v", err)
	}
	if fs, ok := opts.Source.(FileSource); !ok || fs.Path != "genes.bed" {
		t.Errorf("Source = %#v, want FileSource for genes.bed", opts.Source)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"valid", Options{Region: testView}, ""},
		{"negative rows allowed", Options{Region: testView, MaxRows: Int(-3)}, ""},
		{"empty region", Options{Region: genome.Region{Start: 5, End: 5}}, errors.ErrCodeInvalidRegion},
		{"negative start", Options{Region: genome.Region{Start: -1, End: 5}}, errors.ErrCodeInvalidRegion},
		{"negative width", Options{Region: testView, Width: -1}, errors.ErrCodeInvalidInput},
		{"negative label width", Options{Region: testView, LabelCharWidth: Float(-1)}, errors.ErrCodeInvalidInput},
		{"nan width", Options{Region: testView, Width: math.NaN()}, errors.ErrCodeInvalidInput},
		{"inf width", Options{Region: testView, Width: math.Inf(1)}, errors.ErrCodeInvalidInput},
		{"nan label width", Options{Region: testView, LabelCharWidth: Float(math.NaN())}, errors.ErrCodeInvalidInput},
		{"width at limit", Options{Region: testView, Width: MaxWidth}, ""},
		{"width over limit", Options{Region: testView, Width: MaxWidth + 1}, errors.ErrCodeInvalidInput},
		{"rows at limit", Options{Region: testView, MaxRows: Int(MaxRowsLimit)}, ""},
		{"rows over limit", Options{Region: testView, MaxRows: Int(2_000_000_000)}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateForLayout() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateForLayout() error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{SegmentColors: map[string]string{"deletion": "not a colour"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("bad colour error = %v, want INVALID_STYLE", err)
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"negative hidden pixels", Options{HiddenPixels: -1}},
		{"nan row height", Options{RowHeight: math.NaN()}},
		{"inf row padding", Options{RowPadding: Float(math.Inf(1))}},
		{"inf scale", Options{Scale: math.Inf(1)}},
		{"scale over limit", Options{Scale: MaxScale + 1}},
		{"row height over limit", Options{RowHeight: MaxRowHeight + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ValidateForRender() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := testOptions()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	maxRows := opts.MaxRows
	style := opts.Style

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.MaxRows != maxRows {
		t.Error("MaxRows changed on second call")
	}
	if opts.Style != style {
		t.Error("Style changed on second call")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{MaxRows: Int(0)}
	opts.SetLayoutDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if *opts.MaxRows != 0 {
		t.Errorf("explicit MaxRows 0 should be kept, got %d", *opts.MaxRows)
	}
	if *opts.LabelCharWidth != layout.DefaultLabelCharWidth {
		t.Errorf("LabelCharWidth should be %v, got %v", layout.DefaultLabelCharWidth, *opts.LabelCharWidth)
	}

	opts = Options{}
	opts.SetLayoutDefaults()
	if *opts.MaxRows != layout.DefaultMaxRows {
		t.Errorf("MaxRows should be %d, got %d", layout.DefaultMaxRows, *opts.MaxRows)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style should be %s, got %s", DefaultStyle, opts.Style)
	}
	if opts.RowHeight != 15 || *opts.RowPadding != 5 {
		t.Errorf("row geometry = %v/%v, want 15/5", opts.RowHeight, *opts.RowPadding)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3}
	opts.SetRenderDefaults()

	if got := opts.ArtifactKeyOpts(FormatPNG).Scale; got != 3 {
		t.Errorf("png key scale = %v, want 3", got)
	}
	if got := opts.ArtifactKeyOpts(FormatSVG).Scale; got != 0 {
		t.Errorf("svg key should ignore scale, got %v", got)
	}
}

func TestLayoutCodec(t *testing.T) {
	features := testFeatures()
	l := layout.Build(features, testView, layout.LinearScale{Region: testView, Width: 1000},
		layout.WithMaxRows(1), layout.WithLabelCharWidth(0))

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout() error: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}

	if got.Region != l.Region || got.MaxRows != l.MaxRows || got.Hidden != l.Hidden || got.Malformed != l.Malformed {
		t.Errorf("layout header = %+v, want %+v", got, l)
	}
	if len(got.Placements) != len(l.Placements) {
		t.Fatalf("placements = %d, want %d", len(got.Placements), len(l.Placements))
	}
	for i, p := range got.Placements {
		want := l.Placements[i]
		if p.Feature.Name != want.Feature.Name || p.Row != want.Row || p.Labeled != want.Labeled || p.XStart != want.XStart {
			t.Errorf("placement %d = %+v, want %+v", i, p, want)
		}
	}
}

func TestLayoutCodecNaN(t *testing.T) {
	features := []genome.Feature{{Name: "A", Start: 0, End: 10}}
	nan := layout.ProjectorFunc(func(int64) float64 { return math.NaN() })
	l := layout.Build(features, genome.Region{Start: 0, End: 100}, nan)

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout() error: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if !math.IsNaN(got.Placements[0].XStart) {
		t.Errorf("XStart = %v, want NaN", got.Placements[0].XStart)
	}
	if got.Hidden != 1 {
		t.Errorf("Hidden = %d, want 1", got.Hidden)
	}
}

func TestRunnerExecute(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := testOptions()
	opts.MaxRows = Int(1)
	opts.Formats = []string{FormatSVG, FormatJSON, FormatDOT}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.LayoutID == "" {
		t.Error("LayoutID should be set")
	}
	if result.Stats.FeatureCount != 4 || result.Stats.Malformed != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Stats.Visible != 3 || result.Stats.Hidden != 1 || result.Stats.RowsUsed != 1 {
		t.Errorf("layout stats = %+v", result.Stats)
	}
	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, "1 gene unlabeled") {
		t.Errorf("SVG missing overflow note\nGot: %s", svg)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "digraph rows") {
		t.Error("DOT artifact missing")
	}
	if result.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run CacheInfo = %+v, want all misses", result.CacheInfo)
	}

	again, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if again.CacheInfo != (CacheInfo{LoadHit: true, LayoutHit: true, RenderHit: true}) {
		t.Errorf("second run CacheInfo = %+v, want all hits", again.CacheInfo)
	}
	if string(again.Artifacts[FormatSVG]) != svg {
		t.Error("cached SVG differs from the rendered one")
	}
	if again.LayoutID == result.LayoutID {
		t.Error("each run should get a fresh LayoutID")
	}
}

func TestRunnerUnencodableFeaturesBypassCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	nanScore := map[string]any{"score": math.NaN()}
	trackA := []genome.Feature{{Name: "A", Chrom: "chr1", Start: 0, End: 100, Meta: nanScore}}
	trackB := []genome.Feature{
		{Name: "B1", Chrom: "chr1", Start: 0, End: 100, Meta: nanScore},
		{Name: "B2", Chrom: "chr1", Start: 10, End: 110, Meta: nanScore},
	}
	opts := testOptions()

	if _, err := hashFeatures(trackA); err == nil {
		t.Error("hashFeatures() should fail for NaN metadata")
	}

	for _, features := range [][]genome.Feature{trackA, trackB} {
		l, hit, err := runner.ComputeLayoutWithCacheInfo(context.Background(), features, opts)
		if err != nil {
			t.Fatalf("ComputeLayoutWithCacheInfo() error: %v", err)
		}
		if hit {
			t.Error("unencodable features should never hit the layout cache")
		}
		if len(l.Placements) != len(features) || l.Placements[0].Feature.Name != features[0].Name {
			t.Errorf("layout of %s came from another track: %+v", features[0].Name, l.Placements)
		}
	}
}

func TestRunnerRefreshSkipsFeatureCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	opts := testOptions()
	if _, _, err := runner.LoadWithCacheInfo(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	if _, hit, err := runner.LoadWithCacheInfo(ctx, opts); err != nil || hit {
		t.Errorf("refresh load hit = %v, err = %v; want a miss", hit, err)
	}
}

func TestRunnerRenderPartialCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	opts := testOptions()
	l, err := runner.ComputeLayout(ctx, testFeatures(), opts)
	if err != nil {
		t.Fatal(err)
	}

	opts.Formats = []string{FormatSVG}
	if _, err := runner.Render(ctx, l, opts); err != nil {
		t.Fatal(err)
	}

	opts.Formats = []string{FormatSVG, FormatJSON}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("render should not report a full hit when json was missing")
	}
	if len(artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(artifacts))
	}
}

type countingCacheHooks struct {
	hits, misses, sets map[string]int
}

func (h *countingCacheHooks) OnCacheHit(_ context.Context, keyType string)  { h.hits[keyType]++ }
func (h *countingCacheHooks) OnCacheMiss(_ context.Context, keyType string) { h.misses[keyType]++ }
func (h *countingCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.sets[keyType]++
}

func TestRunnerCacheHooks(t *testing.T) {
	hooks := &countingCacheHooks{hits: map[string]int{}, misses: map[string]int{}, sets: map[string]int{}}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	for range 2 {
		if _, err := runner.Execute(ctx, testOptions()); err != nil {
			t.Fatal(err)
		}
	}

	for _, kind := range []string{"features", "layout", "artifact"} {
		if hooks.misses[kind] != 1 || hooks.sets[kind] != 1 || hooks.hits[kind] != 1 {
			t.Errorf("%s: hits=%d misses=%d sets=%d, want 1/1/1",
				kind, hooks.hits[kind], hooks.misses[kind], hooks.sets[kind])
		}
	}
}

func TestStaticSourceMissing(t *testing.T) {
	_, err := StaticSource{ID: "empty"}.Features(context.Background(), testView)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestFileSourceName(t *testing.T) {
	s := FileSource{Path: "does/not/exist.bed"}
	if got := s.Name(); got != "file:does/not/exist.bed" {
		t.Errorf("Name() = %q", got)
	}
}
