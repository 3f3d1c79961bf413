package wiki

import (
	"github.com/yourusername/osrs-mcp/internal/wikitext"
)

// ExtractInfobox finds the first Infobox template in a parse tree and returns
// its title with each parameter reduced to readable text.
func ExtractInfobox(parseTree string) (string, map[string]string) {
	tpl, ok := wikitext.FindInfobox(wikitext.ExtractTemplates(parseTree))
	if !ok {
		return "", nil
	}

	result := make(map[string]string, len(tpl.Markup))
	for key, raw := range tpl.Markup {
		if value := wikitext.CleanMarkup(wikitext.Source(raw)); value != "" {
			result[key] = value
		}
	}

	if len(result) == 0 {
		return tpl.Title, nil
	}

	return tpl.Title, result
}
