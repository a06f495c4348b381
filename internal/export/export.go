// Package export renders generated article content into flat publishing
// formats: HTML, Markdown, the WordPress block dialect, and plain text.
package export

import (
	"fmt"
	"html"
	"strings"
)

// Export formats accepted by Render. Anything else falls back to plain text.
const (
	FormatHTML      = "html"
	FormatMarkdown  = "markdown"
	FormatWordPress = "wordpress"
	FormatText      = "text"
)

// Subheading is an H3-level slice of a section.
type Subheading struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Section is one H2-level block of the article body.
type Section struct {
	Heading     string       `json:"heading"`
	Content     string       `json:"content"`
	Subheadings []Subheading `json:"subheadings,omitempty"`
}

// Content is the generated article shape. Every field is optional; the
// generating model may omit any of them and renderers must tolerate that.
type Content struct {
	Title           string    `json:"title,omitempty"`
	MetaDescription string    `json:"metaDescription,omitempty"`
	Intro           string    `json:"intro,omitempty"`
	Sections        []Section `json:"sections,omitempty"`
	Conclusion      string    `json:"conclusion,omitempty"`
	WordCount       *int      `json:"wordCount,omitempty"`
	SeoScore        *int      `json:"seoScore,omitempty"`
	ReadingTime     *int      `json:"readingTime,omitempty"`
}

// title returns the article title with the fixed fallback used across all
// formats.
func (c Content) title() string {
	if c.Title == "" {
		return "Blog Post"
	}
	return c.Title
}

// Render produces the export payload for the given format. Unrecognized
// formats render as plain text.
func Render(c Content, format string) []byte {
	switch format {
	case FormatHTML:
		return []byte(renderHTML(c))
	case FormatMarkdown:
		return []byte(renderMarkdown(c))
	case FormatWordPress:
		return []byte(renderWordPress(c))
	default:
		return []byte(renderText(c))
	}
}

// MIMEType returns the Content-Type for the given format.
func MIMEType(format string) string {
	switch format {
	case FormatHTML, FormatWordPress:
		return "text/html"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// Filename returns the download filename for the given format.
func Filename(format string) string {
	switch format {
	case FormatHTML:
		return "blog-post.html"
	case FormatMarkdown:
		return "blog-post.md"
	case FormatWordPress:
		return "blog-post-wordpress.html"
	default:
		return "blog-post.txt"
	}
}

func renderHTML(c Content) string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"description\" content=\"%s\">\n", html.EscapeString(c.MetaDescription))
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(c.title()))
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <article>\n")
	fmt.Fprintf(&sb, "        <h1>%s</h1>\n", html.EscapeString(c.title()))
	fmt.Fprintf(&sb, "        <p>%s</p>\n", html.EscapeString(c.Intro))
	for _, sec := range c.Sections {
		fmt.Fprintf(&sb, "        <h2>%s</h2>\n", html.EscapeString(sec.Heading))
		fmt.Fprintf(&sb, "        <p>%s</p>\n", html.EscapeString(sec.Content))
		for _, sub := range sec.Subheadings {
			fmt.Fprintf(&sb, "        <h3>%s</h3>\n", html.EscapeString(sub.Title))
			fmt.Fprintf(&sb, "        <p>%s</p>\n", html.EscapeString(sub.Content))
		}
	}
	fmt.Fprintf(&sb, "        <p>%s</p>\n", html.EscapeString(c.Conclusion))
	sb.WriteString("    </article>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return sb.String()
}

func renderMarkdown(c Content) string {
	var blocks []string

	blocks = append(blocks, "# "+c.title())
	blocks = append(blocks, c.Intro)
	for _, sec := range c.Sections {
		blocks = append(blocks, "## "+sec.Heading)
		blocks = append(blocks, sec.Content)
		for _, sub := range sec.Subheadings {
			blocks = append(blocks, "### "+sub.Title)
			blocks = append(blocks, sub.Content)
		}
	}
	blocks = append(blocks, c.Conclusion)

	return strings.Join(blocks, "\n\n") + "\n"
}

func renderWordPress(c Content) string {
	var blocks []string

	blocks = append(blocks, wpHeading(1, c.title()))
	blocks = append(blocks, wpParagraph(c.Intro))
	for _, sec := range c.Sections {
		blocks = append(blocks, wpHeading(2, sec.Heading))
		blocks = append(blocks, wpParagraph(sec.Content))
		for _, sub := range sec.Subheadings {
			blocks = append(blocks, wpHeading(3, sub.Title))
			blocks = append(blocks, wpParagraph(sub.Content))
		}
	}
	blocks = append(blocks, wpParagraph(c.Conclusion))

	return strings.Join(blocks, "\n\n") + "\n"
}

// wpHeading wraps a heading in the paired block comments the WordPress
// editor expects. Level 2 is the default block; other levels carry an
// explicit level attribute.
func wpHeading(level int, text string) string {
	open := "<!-- wp:heading -->"
	if level != 2 {
		open = fmt.Sprintf("<!-- wp:heading {\"level\":%d} -->", level)
	}
	return fmt.Sprintf("%s\n<h%d>%s</h%d>\n<!-- /wp:heading -->", open, level, html.EscapeString(text), level)
}

func wpParagraph(text string) string {
	return fmt.Sprintf("<!-- wp:paragraph -->\n<p>%s</p>\n<!-- /wp:paragraph -->", html.EscapeString(text))
}

func renderText(c Content) string {
	var blocks []string

	blocks = append(blocks, c.title())
	blocks = append(blocks, c.Intro)
	for _, sec := range c.Sections {
		blocks = append(blocks, sec.Heading)
		blocks = append(blocks, sec.Content)
		for _, sub := range sec.Subheadings {
			blocks = append(blocks, sub.Title)
			blocks = append(blocks, sub.Content)
		}
	}
	blocks = append(blocks, c.Conclusion)

	return strings.Join(blocks, "\n\n") + "\n"
}
