package imagegen

import (
	"fmt"
	"strings"
	"unicode"
)

// Section is the slice of a content section the prompt builder cares about.
type Section struct {
	Heading string `json:"heading"`
}

// DerivePrompts produces the two image prompts for a post: a hero image
// parameterized by the keyword and an infographic parameterized by the
// first section heading (or the keyword when no sections exist). The
// 2-prompt policy is fixed.
func DerivePrompts(keyword, title string, sections []Section) []string {
	prompts := []string{
		fmt.Sprintf("Professional hero image for blog post about %s, modern design, high quality, clean composition, suitable for article header, photorealistic style", keyword),
	}

	topic := keyword
	if len(sections) > 0 && sections[0].Heading != "" {
		topic = cleanHeading(sections[0].Heading)
	}
	if topic == "" {
		topic = keyword
	}

	prompts = append(prompts,
		fmt.Sprintf("Infographic style illustration about %s, clean modern design, informative, professional, suitable for blog content", topic),
	)

	return prompts
}

// cleanHeading lowercases a heading and strips everything except letters,
// digits, and spaces.
func cleanHeading(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
