package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// System prompts for the three generation stages.
const (
	analysisSystemPrompt = "You are an expert SEO analyst. Analyze search results and provide detailed insights for content optimization."
	planSystemPrompt     = "You are an expert SEO strategist. Create detailed optimization plans based on SERP analysis and keyword research."
	contentSystemPrompt  = "You are an expert content writer specializing in SEO-optimized blog posts. Create engaging, informative content that ranks well and provides genuine value to readers."
)

const analysisPromptTemplate = `Analyze these Google search results for the keyword "%s" and provide a comprehensive SEO analysis.

Search Results:
%s

Please analyze and return a JSON object with the following structure:
{
  "contentType": "Most common content type (e.g., 'Listicle (78%%)', 'Guide', 'Comparison')",
  "avgWordCount": "Average word count as a number",
  "tone": "Dominant tone (e.g., 'Professional', 'Casual', 'Technical')",
  "topRankingPages": [
    {
      "position": 1,
      "title": "Page title",
      "url": "URL",
      "wordCount": 2847,
      "lastUpdated": "Jan 2025",
      "keyElements": ["Comprehensive Lists", "Expert Reviews", "Screenshots"],
      "description": "Key elements and unique aspects of this page"
    }
  ],
  "competitiveAdvantages": ["Include 2025-specific features", "Add pricing comparison table"],
  "recommendedStructure": ["Introduction (150-200 words)", "Main content sections"]
}`

// buildAnalysisPrompt embeds the keyword and the pretty-printed organic
// results into the SERP analysis prompt.
func buildAnalysisPrompt(keyword string, organic []json.RawMessage) string {
	return fmt.Sprintf(analysisPromptTemplate, keyword, prettyJSON(organicArray(organic)))
}

const planPromptTemplate = `Create a comprehensive SEO optimization plan for the keyword "%s".

Context:
- Primary Keyword: %s
- Secondary Keywords: %s
- Target Audience: %s
- Content Length: %s
- SERP Analysis: %s

Generate a detailed SEO plan in this JSON format:
{
  "suggestedTitle": "SEO-optimized title with primary keyword",
  "titleLength": 58,
  "structure": {
    "intro": "Introduction section description",
    "methodology": "How we tested/research methodology section",
    "mainContent": "Main content sections breakdown",
    "comparison": "Comparison/table section",
    "conclusion": "Conclusion section"
  },
  "keywordDistribution": {
    "primary": {
      "target": 10,
      "placement": ["Title", "H1", "2x H2s", "naturally in content"]
    },
    "secondary": {
      "target": 5,
      "placement": ["H2s", "H3s", "body content"]
    },
    "lsi": {
      "target": 18,
      "placement": ["throughout content", "subheadings"]
    }
  },
  "competitiveAdvantages": ["2025-specific updates", "pricing comparison", "expert testing"]
}`

func buildPlanPrompt(in PlanInput) string {
	return fmt.Sprintf(planPromptTemplate,
		in.Keyword,
		in.Keyword,
		keywordList(in.SecondaryKeywords),
		defaultString(in.TargetAudience, "General"),
		defaultString(in.ContentLength, "Medium"),
		prettyJSON(in.SerpAnalysis),
	)
}

const contentPromptTemplate = `Write a comprehensive, SEO-optimized blog post about "%s".

Requirements:
- Target length: %s
- Primary keyword: %s
- Secondary keywords: %s
- Target audience: %s
- Additional context: %s

SEO Plan to follow:
%s

Create engaging, high-quality content that:
1. Uses the suggested title from the SEO plan
2. Naturally incorporates keywords as specified in the distribution plan
3. Follows the recommended structure
4. Includes the competitive advantages
5. Provides genuine value to readers
6. Maintains professional, authoritative tone
7. Uses current information and 2025 context where relevant

Return in this JSON format:
{
  "title": "The exact title from SEO plan",
  "metaDescription": "SEO-optimized meta description (150-160 chars)",
  "intro": "Engaging introduction paragraph",
  "sections": [
    {
      "heading": "H2 section heading",
      "content": "Detailed section content",
      "subheadings": [
        {
          "title": "H3 subheading",
          "content": "Subheading content"
        }
      ]
    }
  ],
  "conclusion": "Strong conclusion paragraph",
  "wordCount": 2456,
  "seoScore": 87,
  "readingTime": 10
}`

func buildContentPrompt(in ContentInput) string {
	return fmt.Sprintf(contentPromptTemplate,
		in.Keyword,
		targetWords(in.ContentLength),
		in.Keyword,
		keywordList(in.SecondaryKeywords),
		defaultString(in.TargetAudience, "General"),
		defaultString(in.Notes, "None"),
		prettyJSON(in.Seoplan),
	)
}

// lengthGuide maps the UI length labels to the word-count phrase embedded
// in the content prompt. Unrecognized labels fall back to the Medium phrase.
var lengthGuide = map[string]string{
	"Short (800-1,500 words)":    "1200 words",
	"Medium (1,500-2,500 words)": "2000 words",
	"Long (2,500-4,000 words)":   "3200 words",
	"Extra Long (4,000+ words)":  "4500 words",
}

func targetWords(contentLength string) string {
	if words, ok := lengthGuide[contentLength]; ok {
		return words
	}
	return "2000 words"
}

func keywordList(keywords []string) string {
	if len(keywords) == 0 {
		return "None"
	}
	return strings.Join(keywords, ", ")
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// prettyJSON re-indents raw JSON for prompt embedding. Absent values render
// as "null" so the model sees the gap instead of the request failing.
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// organicArray marshals the organic entries back into a single JSON array.
func organicArray(organic []json.RawMessage) json.RawMessage {
	if organic == nil {
		organic = []json.RawMessage{}
	}
	b, err := json.Marshal(organic)
	if err != nil {
		return json.RawMessage("[]")
	}
	return b
}
