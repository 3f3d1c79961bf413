package wiki

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// SearchResult represents a single search result
type SearchResult struct {
	Title        string   `json:"title"`
	Snippet      string   `json:"snippet"`
	SnippetLinks []string `json:"snippet_links"`
	WordCount    int      `json:"word_count"`
}

// SearchResponse contains search results
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	TotalHits  int            `json:"total_hits"`
	Suggestion *string        `json:"suggestion,omitempty"`
}

// Section represents a page section
type Section struct {
	Index       int        `json:"index"`
	Title       string     `json:"title"`
	Level       int        `json:"level"`
	Preview     string     `json:"preview,omitempty"`
	Content     string     `json:"content,omitempty"`
	Links       []string   `json:"links,omitempty"`
	WordCount   int        `json:"word_count"`
	Subsections []*Section `json:"subsections,omitempty"`
}

// SectionRef points at a neighbouring section
type SectionRef struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// PageOutline contains page structure without full content
type PageOutline struct {
	Title          string            `json:"title"`
	Exists         bool              `json:"exists"`
	Summary        string            `json:"summary"`
	SummaryLinks   []string          `json:"summary_links"`
	InfoboxType    string            `json:"infobox_type,omitempty"`
	Infobox        map[string]string `json:"infobox,omitempty"`
	Sections       []*Section        `json:"sections"`
	Categories     []string          `json:"categories"`
	SeeAlso        []string          `json:"see_also"`
	TotalWordCount int               `json:"total_word_count"`
}

// PageSection contains full content of a specific section
type PageSection struct {
	Title         string      `json:"title"`
	Section       *Section    `json:"section"`
	ParentSection *SectionRef `json:"parent_section,omitempty"`
	Previous      *SectionRef `json:"previous,omitempty"`
	Next          *SectionRef `json:"next,omitempty"`
}

// PageContent contains entire page content as markdown
type PageContent struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Links     []string `json:"links"`
	WordCount int      `json:"word_count"`
	Warning   *string  `json:"warning,omitempty"`
}

// PageRaw contains the unrendered wikitext of a page
type PageRaw struct {
	Title     string    `json:"title"`
	Wikitext  string    `json:"wikitext"`
	Timestamp time.Time `json:"timestamp"`
}

// CategoryMember represents a member of a category
type CategoryMember struct {
	Title string `json:"title"`
	Type  string `json:"type"` // "page", "subcat" or "file"
}

// CategoryResponse contains category information
type CategoryResponse struct {
	Category         string           `json:"category"`
	Members          []CategoryMember `json:"members"`
	ParentCategories []string         `json:"parent_categories,omitempty"`
	TotalMembers     int              `json:"total_members"`
	ContinueToken    *string          `json:"continue_token,omitempty"`
}

// Backlink represents a page that links to another
type Backlink struct {
	Title string `json:"title"`
}

// BacklinksResponse contains backlinks information
type BacklinksResponse struct {
	Title         string     `json:"title"`
	Backlinks     []Backlink `json:"backlinks"`
	TotalCount    int        `json:"total_count"`
	ContinueToken *string    `json:"continue_token,omitempty"`
}

// MediaWiki API response structures (internal use, formatversion=2)

// PageInfoKey is the value of a single infobox field on a page
type PageInfoKey struct {
	Title       string `json:"title"`
	InfoboxType string `json:"infobox_type"`
	Key         string `json:"key"`
	Value       string `json:"value"`
}

// PageImage is the lead image of a page. Data is sent as image content
// rather than JSON.
type PageImage struct {
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// ImageData returns the raw image bytes and their MIME type
func (p *PageImage) ImageData() ([]byte, string) {
	return p.Data, p.MIMEType
}

type mwResponse struct {
	Query    *mwQuery          `json:"query"`
	Parse    *mwParse          `json:"parse"`
	Continue map[string]string `json:"continue"`
	Error    *mwError          `json:"error"`
}

type mwQuery struct {
	Search          []mwSearchResult   `json:"search"`
	SearchInfo      *mwSearchInfo      `json:"searchinfo"`
	Pages           []mwPage           `json:"pages"`
	Backlinks       []mwBacklink       `json:"backlinks"`
	Categorymembers []mwCategoryMember `json:"categorymembers"`
}

type mwSearchResult struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	WordCount int    `json:"wordcount"`
}

type mwSearchInfo struct {
	TotalHits  int    `json:"totalhits"`
	Suggestion string `json:"suggestion"`
}

type mwPage struct {
	PageID     int          `json:"pageid"`
	Title      string       `json:"title"`
	Missing    bool         `json:"missing"`
	Revisions  []mwRevision `json:"revisions"`
	Categories []mwCategory `json:"categories"`
	PageImage  string       `json:"pageimage"`
	Original   *mwImage     `json:"original"`
}

type mwImage struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type mwRevision struct {
	Timestamp time.Time `json:"timestamp"`
	Slots     struct {
		Main struct {
			Content string `json:"content"`
		} `json:"main"`
	} `json:"slots"`
}

type mwCategory struct {
	Title string `json:"title"`
}

// MWLink represents a MediaWiki link (exported for use in tools)
type MWLink struct {
	Title string `json:"title"`
}

// MWParseCategory is a category entry of an action=parse response
type MWParseCategory struct {
	Category string `json:"category"`
	Hidden   bool   `json:"hidden"`
}

type mwParse struct {
	Title      string            `json:"title"`
	PageID     int               `json:"pageid"`
	Text       mwText            `json:"text"`
	ParseTree  mwText            `json:"parsetree"`
	Sections   []MWSection       `json:"sections"`
	Categories []MWParseCategory `json:"categories"`
	Links      []MWLink          `json:"links"`
}

type mwText struct {
	Content string
}

// UnmarshalJSON handles both string and object formats for text
func (t *mwText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Content = s
		return nil
	}

	var obj struct {
		Content string `json:"*"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		t.Content = obj.Content
		return nil
	}

	return eris.New("text must be string or object with * field")
}

// MWSection represents a MediaWiki section (exported for use in tools)
type MWSection struct {
	TocLevel int    `json:"toclevel"`
	Level    string `json:"level"`
	Line     string `json:"line"`
	Number   string `json:"number"`
	Index    string `json:"index"`
}

type mwBacklink struct {
	PageID int    `json:"pageid"`
	Title  string `json:"title"`
}

type mwCategoryMember struct {
	PageID int    `json:"pageid"`
	Title  string `json:"title"`
	Type   string `json:"type"`
}

type mwError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}
