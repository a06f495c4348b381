package export

import (
	"strings"
	"testing"
)

func sampleContent() Content {
	return Content{
		Title:           "Best Standing Desks 2025",
		MetaDescription: "The desks worth buying & why",
		Intro:           "Standing desks are everywhere.",
		Sections: []Section{
			{
				Heading: "Top Picks",
				Content: "Our favorites after testing.",
				Subheadings: []Subheading{
					{Title: "Budget Choice", Content: "Affordable & sturdy."},
				},
			},
			{
				Heading: "Buying Guide",
				Content: "What to look for.",
			},
		},
		Conclusion: "Pick the one that fits your space.",
	}
}

func TestRenderHTML(t *testing.T) {
	out := string(Render(sampleContent(), FormatHTML))

	// Elements must appear in document order.
	wantOrder := []string{
		"<!DOCTYPE html>",
		`<meta name="description" content="The desks worth buying &amp; why">`,
		"<title>Best Standing Desks 2025</title>",
		"<h1>Best Standing Desks 2025</h1>",
		"<p>Standing desks are everywhere.</p>",
		"<h2>Top Picks</h2>",
		"<h3>Budget Choice</h3>",
		"<p>Affordable &amp; sturdy.</p>",
		"<h2>Buying Guide</h2>",
		"<p>Pick the one that fits your space.</p>",
	}
	pos := 0
	for _, want := range wantOrder {
		idx := strings.Index(out[pos:], want)
		if idx < 0 {
			t.Fatalf("output missing %q after position %d:\n%s", want, pos, out)
		}
		pos += idx + len(want)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := string(Render(sampleContent(), FormatMarkdown))

	for _, want := range []string{
		"# Best Standing Desks 2025",
		"## Top Picks",
		"### Budget Choice",
		"## Buying Guide",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "Pick the one that fits your space.\n") {
		t.Errorf("output should end with the conclusion, got tail %q", out[len(out)-40:])
	}
}

func TestRenderWordPress(t *testing.T) {
	out := string(Render(sampleContent(), FormatWordPress))

	// The title block carries an explicit level; H2 blocks use the default.
	if !strings.Contains(out, "<!-- wp:heading {\"level\":1} -->\n<h1>Best Standing Desks 2025</h1>\n<!-- /wp:heading -->") {
		t.Error("missing level-1 heading block")
	}
	if !strings.Contains(out, "<!-- wp:heading -->\n<h2>Top Picks</h2>\n<!-- /wp:heading -->") {
		t.Error("missing default-level heading block")
	}
	if !strings.Contains(out, "<!-- wp:heading {\"level\":3} -->\n<h3>Budget Choice</h3>\n<!-- /wp:heading -->") {
		t.Error("missing level-3 heading block")
	}
	if !strings.Contains(out, "<!-- wp:paragraph -->\n<p>Affordable &amp; sturdy.</p>\n<!-- /wp:paragraph -->") {
		t.Error("missing escaped paragraph block")
	}

	opens := strings.Count(out, "<!-- wp:")
	closes := strings.Count(out, "<!-- /wp:")
	if opens != closes {
		t.Errorf("unbalanced blocks: %d opens, %d closes", opens, closes)
	}
}

func TestRenderText(t *testing.T) {
	out := string(Render(sampleContent(), FormatText))

	if strings.Contains(out, "<") || strings.Contains(out, "#") {
		t.Errorf("plain text should carry no markup:\n%s", out)
	}
	if !strings.Contains(out, "Best Standing Desks 2025\n\nStanding desks are everywhere.") {
		t.Error("blocks should be separated by blank lines")
	}
}

func TestRenderUnknownFormatFallsBackToText(t *testing.T) {
	text := Render(sampleContent(), FormatText)
	unknown := Render(sampleContent(), "docx")

	if string(unknown) != string(text) {
		t.Error("unknown format should render as plain text")
	}
}

func TestRenderTitleFallback(t *testing.T) {
	out := string(Render(Content{Intro: "Hi."}, FormatMarkdown))

	if !strings.HasPrefix(out, "# Blog Post\n") {
		t.Errorf("output = %q, want Blog Post fallback title", out)
	}
}

func TestMIMEType(t *testing.T) {
	cases := []struct {
		format, want string
	}{
		{FormatHTML, "text/html"},
		{FormatWordPress, "text/html"},
		{FormatMarkdown, "text/markdown"},
		{FormatText, "text/plain"},
		{"docx", "text/plain"},
	}
	for _, c := range cases {
		if got := MIMEType(c.format); got != c.want {
			t.Errorf("MIMEType(%q) = %q, want %q", c.format, got, c.want)
		}
	}
}

func TestFilename(t *testing.T) {
	cases := []struct {
		format, want string
	}{
		{FormatHTML, "blog-post.html"},
		{FormatMarkdown, "blog-post.md"},
		{FormatWordPress, "blog-post-wordpress.html"},
		{FormatText, "blog-post.txt"},
		{"docx", "blog-post.txt"},
	}
	for _, c := range cases {
		if got := Filename(c.format); got != c.want {
			t.Errorf("Filename(%q) = %q, want %q", c.format, got, c.want)
		}
	}
}
