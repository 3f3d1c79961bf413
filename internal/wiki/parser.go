package wiki

import (
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"
)

var (
	converter *md.Converter
	sanitizer *bluemonday.Policy

	excessNewlines = regexp.MustCompile(`\n{3,}`)
	emphasis       = regexp.MustCompile(`\*+`)
	markdownLink   = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	headingMarker  = regexp.MustCompile(`(?m)^#+\s+`)
	codeBlock      = regexp.MustCompile("```[^`]*```")
	inlineCode     = regexp.MustCompile("`[^`]+`")
)

func init() {
	// Classes survive so the converter rules below can still match
	// edit links and reference markers.
	sanitizer = bluemonday.UGCPolicy()
	sanitizer.AllowAttrs("class").Globally()
	sanitizer.AllowAttrs("title").OnElements("a")

	// Initialize converter with MediaWiki-friendly options
	converter = md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx", // Use # style headings
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced", // Use ``` for code blocks
		StrongDelimiter:  "**",
		EmDelimiter:      "*",
	})

	// Add custom rules for MediaWiki-specific elements
	converter.AddRules(
		// Remove edit section links
		md.Rule{
			Filter: []string{"span"},
			AdvancedReplacement: func(content string, selec *goquery.Selection, opt *md.Options) (md.AdvancedResult, bool) {
				if selec.HasClass("mw-editsection") {
					return md.AdvancedResult{Markdown: ""}, true
				}
				return md.AdvancedResult{}, false
			},
		},
		// Clean up reference markers
		md.Rule{
			Filter: []string{"sup"},
			AdvancedReplacement: func(content string, selec *goquery.Selection, opt *md.Options) (md.AdvancedResult, bool) {
				if selec.HasClass("reference") {
					// Keep reference numbers in a cleaner format
					text := selec.Text()
					return md.AdvancedResult{Markdown: "[" + text + "]"}, true
				}
				return md.AdvancedResult{}, false
			},
		},
	)
}

// SanitizeHTML strips scripts, styles and event handlers from rendered wiki HTML
func SanitizeHTML(html string) string {
	return sanitizer.Sanitize(html)
}

// HTMLToMarkdown sanitizes MediaWiki HTML and converts it to Markdown
func HTMLToMarkdown(html string) (string, error) {
	markdown, err := converter.ConvertString(SanitizeHTML(html))
	if err != nil {
		return "", eris.Wrap(err, "convert html to markdown")
	}

	// Clean up the markdown
	markdown = cleanupMarkdown(markdown)

	return markdown, nil
}

// cleanupMarkdown performs post-conversion cleanup
func cleanupMarkdown(md string) string {
	// Remove excessive newlines (more than 2 consecutive)
	md = excessNewlines.ReplaceAllString(md, "\n\n")

	// Trim whitespace
	md = strings.TrimSpace(md)

	return md
}

// ExtractLinks extracts all links from HTML
func ExtractLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	links := make([]string, 0)
	seen := make(map[string]bool)

	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}

		// Extract page title from href
		title := extractTitleFromHref(href)
		if title == "" {
			return
		}

		// Deduplicate
		if !seen[title] {
			seen[title] = true
			links = append(links, title)
		}
	})

	return links
}

// extractTitleFromHref extracts the page title from a MediaWiki href
func extractTitleFromHref(href string) string {
	// OSRS Wiki links are /w/Page_Title; other MediaWiki installs use
	// /wiki/Page_Title or /w/index.php?title=Page_Title
	for _, prefix := range []string{"/w/", "/wiki/"} {
		if !strings.HasPrefix(href, prefix) || strings.HasPrefix(href, "/w/index.php") {
			continue
		}
		title := strings.TrimPrefix(href, prefix)
		// Remove anchor
		if idx := strings.Index(title, "#"); idx != -1 {
			title = title[:idx]
		}
		return decodeTitle(title)
	}

	// Handle /w/index.php?title=Page_Title format
	if strings.Contains(href, "title=") {
		parts := strings.Split(href, "title=")
		if len(parts) > 1 {
			title := parts[1]
			// Remove other query params
			if idx := strings.Index(title, "&"); idx != -1 {
				title = title[:idx]
			}
			// Remove anchor
			if idx := strings.Index(title, "#"); idx != -1 {
				title = title[:idx]
			}
			return decodeTitle(title)
		}
	}

	return ""
}

// decodeTitle converts URL-encoded titles to readable format
func decodeTitle(title string) string {
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}
	return strings.ReplaceAll(title, "_", " ")
}

// CountWords counts words in text
func CountWords(text string) int {
	// Remove markdown formatting for more accurate count
	text = stripMarkdownFormatting(text)

	// Split on whitespace
	words := strings.Fields(text)
	return len(words)
}

// stripMarkdownFormatting removes markdown syntax for word counting
func stripMarkdownFormatting(text string) string {
	// Remove bold/italic markers
	text = emphasis.ReplaceAllString(text, "")

	// Remove links but keep text [text](url) -> text
	text = markdownLink.ReplaceAllString(text, "$1")

	// Remove headers
	text = headingMarker.ReplaceAllString(text, "")

	// Remove code blocks
	text = codeBlock.ReplaceAllString(text, "")

	// Remove inline code
	text = inlineCode.ReplaceAllString(text, "")

	return text
}

// ExtractPreview extracts the first N words from markdown as a preview
func ExtractPreview(markdown string, maxWords int) string {
	// Strip formatting
	text := stripMarkdownFormatting(markdown)

	// Split into words
	words := strings.Fields(text)

	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}

	preview := strings.Join(words[:maxWords], " ")
	return preview + "..."
}
