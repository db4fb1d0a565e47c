package collateral

import (
	"strings"
	"testing"
)

func TestPDFRendererHTML(t *testing.T) {
	r := &PDFRenderer{}
	html, err := r.HTML(OnePagerMarkdown(sampleBrief(), sampleMatches(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"<h1>Orbit — One Pager</h1>",
		"<h2>Why Now</h2>",
		"<strong>Ann (A Capital)</strong>",
		"<style>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html is missing %q:\n%s", want, html)
		}
	}
}
