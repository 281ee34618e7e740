package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	got := Template()
	for _, want := range []string{"{{.Name}}", "v1.2.3", "abc123", "2026-01-02"} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
	if info := Get(); info.Version != "v1.2.3" || info.Commit != "abc123" {
		t.Errorf("Get() = %+v", info)
	}
}
