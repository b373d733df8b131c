package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "drop-rules,quickstart,sections,web" {
		t.Fatalf("topics=%s", got)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Drop-Rules ")
	if !ok || !strings.Contains(body, "redirected") {
		t.Fatalf("expected drop-rules topic; ok=%v", ok)
	}
	for _, bad := range []string{"", "nope", "../docs", "content/web"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
