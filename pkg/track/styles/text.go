package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	labelFontRatio = 0.8
	labelFontMin   = 8.0
	labelFontMax   = 14.0
	labelGap       = 3.0
)

// LabelFontSize returns the label font size for a row of height h.
func LabelFontSize(h float64) float64 {
	return max(labelFontMin, min(labelFontMax, h*labelFontRatio))
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WithTitle wraps the markup written by fn in a group carrying a <title>
// tooltip. An empty title writes fn's output unchanged.
func WithTitle(buf *bytes.Buffer, title string, fn func()) {
	if title == "" {
		fn()
		return
	}
	fmt.Fprintf(buf, "  <g><title>%s</title>\n", EscapeXML(title))
	fn()
	buf.WriteString("  </g>\n")
}
