package version

import (
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	if Version == "" || BuildTime == "" || GitCommit == "" {
		t.Fatal("version metadata should never be empty")
	}
	s := String()
	if !strings.HasPrefix(s, "guidebuilder "+Version) {
		t.Errorf("unexpected version line %q", s)
	}
}
