package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourusername/osrs-mcp/config"
	"github.com/yourusername/osrs-mcp/internal/logging"
	"github.com/yourusername/osrs-mcp/internal/wiki"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fakeWiki serves /w/api.php, answering each call with respond(query).
func fakeWiki(t *testing.T, respond func(q url.Values) any) (*wiki.Client, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/images/") {
			atomic.AddInt32(&calls, 1)
			if strings.HasSuffix(r.URL.Path, ".png") {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write(pngBytes)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
			return
		}
		if r.URL.Path != "/w/api.php" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("meta") == "siteinfo" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		atomic.AddInt32(&calls, 1)
		if err := json.NewEncoder(w).Encode(respond(q)); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	client := wiki.NewClient(config.WikiConfig{
		URL:            server.URL,
		UserAgent:      "osrs-mcp-test",
		RateLimit:      1000,
		RequestTimeout: 5 * time.Second,
		CacheTTL:       time.Minute,
		CacheTTLInfo:   time.Minute,
	}, logging.Discard())
	t.Cleanup(client.GetCache().Close)

	return client, &calls
}

func TestSearchWiki(t *testing.T) {
	client, calls := fakeWiki(t, func(q url.Values) any {
		if q.Get("srsearch") != "cook" || q.Get("srlimit") != "5" {
			t.Errorf("unexpected query %v", q)
		}
		return map[string]any{
			"query": map[string]any{
				"searchinfo": map[string]any{"totalhits": 42, "suggestion": "cooks"},
				"search": []map[string]any{{
					"title":     "Cook's Assistant",
					"snippet":   `<span class="searchmatch">Cook</span>'s Assistant is a <a href="/w/Quest">quest</a>`,
					"wordcount": 1200,
				}},
			},
		}
	})

	for i := 0; i < 2; i++ {
		resp, err := SearchWiki(context.Background(), client, "cook", 5)
		if err != nil {
			t.Fatalf("SearchWiki: %v", err)
		}
		if resp.TotalHits != 42 {
			t.Errorf("TotalHits = %d, want 42", resp.TotalHits)
		}
		if resp.Suggestion == nil || *resp.Suggestion != "cooks" {
			t.Errorf("unexpected suggestion %v", resp.Suggestion)
		}
		if len(resp.Results) != 1 || resp.Results[0].Title != "Cook's Assistant" {
			t.Fatalf("unexpected results %+v", resp.Results)
		}
		if strings.Contains(resp.Results[0].Snippet, "searchmatch") {
			t.Errorf("snippet still has markup: %q", resp.Results[0].Snippet)
		}
	}

	if got := atomic.LoadInt32(calls); got != 1 {
		t.Errorf("expected cached second search, got %d calls", got)
	}
}

func TestGetBacklinksContinuation(t *testing.T) {
	client, _ := fakeWiki(t, func(q url.Values) any {
		if q.Get("blnamespace") != "0" {
			t.Errorf("backlinks should be limited to articles: %v", q)
		}
		if q.Get("blcontinue") == "" {
			return map[string]any{
				"query":    map[string]any{"backlinks": []map[string]any{{"pageid": 1, "title": "Lumbridge Castle"}}},
				"continue": map[string]any{"blcontinue": "0|1234", "continue": "-||"},
			}
		}
		return map[string]any{
			"query": map[string]any{"backlinks": []map[string]any{{"pageid": 2, "title": "Cook"}}},
		}
	})

	first, err := GetBacklinks(context.Background(), client, "Cook's Assistant", 1, "")
	if err != nil {
		t.Fatalf("GetBacklinks: %v", err)
	}
	if first.ContinueToken == nil || *first.ContinueToken != "0|1234" {
		t.Fatalf("unexpected continue token %v", first.ContinueToken)
	}

	second, err := GetBacklinks(context.Background(), client, "Cook's Assistant", 1, *first.ContinueToken)
	if err != nil {
		t.Fatalf("GetBacklinks: %v", err)
	}
	if second.ContinueToken != nil {
		t.Errorf("last page should have no token, got %q", *second.ContinueToken)
	}
	if second.Backlinks[0].Title != "Cook" {
		t.Errorf("unexpected backlinks %+v", second.Backlinks)
	}
}

func TestGetCategory(t *testing.T) {
	client, _ := fakeWiki(t, func(q url.Values) any {
		if q.Get("prop") == "categories" {
			return map[string]any{
				"query": map[string]any{"pages": []map[string]any{{
					"title":      "Category:Quests",
					"categories": []map[string]any{{"title": "Category:Content"}},
				}}},
			}
		}
		if q.Get("cmtitle") != "Category:Quests" {
			t.Errorf("category prefix not added: %v", q)
		}
		return map[string]any{
			"query": map[string]any{"categorymembers": []map[string]any{
				{"title": "Cook's Assistant", "type": "page"},
				{"title": "Category:Members' quests", "type": "subcat"},
				{"title": "Demon Slayer"},
			}},
		}
	})

	resp, err := GetCategory(context.Background(), client, "Quests", 20, "")
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if resp.Category != "Quests" || resp.TotalMembers != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Members[1].Type != "subcat" || resp.Members[2].Type != "page" {
		t.Errorf("unexpected member types %+v", resp.Members)
	}
	if !reflect.DeepEqual(resp.ParentCategories, []string{"Content"}) {
		t.Errorf("ParentCategories = %v", resp.ParentCategories)
	}
	if resp.ContinueToken != nil {
		t.Errorf("unexpected continue token %q", *resp.ContinueToken)
	}
}

func questGuide(t *testing.T) func(q url.Values) any {
	return func(q url.Values) any {
		switch q.Get("prop") {
		case "sections|categories|links":
			return map[string]any{"parse": map[string]any{
				"title": "Cook's Assistant",
				"sections": []map[string]any{
					{"toclevel": 1, "line": "Details", "index": "1"},
					{"toclevel": 1, "line": "Walkthrough", "index": "2"},
					{"toclevel": 2, "line": "Starting out", "index": "3"},
					{"toclevel": 2, "line": "<i>Finishing</i>", "index": "4"},
					{"toclevel": 1, "line": "Rewards", "index": "5"},
					{"toclevel": 1, "line": "Navbox", "index": "T-1"},
				},
				"categories": []map[string]any{
					{"category": "Free-to-play_quests"},
					{"category": "Pages_with_broken_file_links", "hidden": true},
				},
				"links": []map[string]any{
					{"title": "Cook"}, {"title": "Category:Quests"}, {"title": "Cook"}, {"title": "Egg"},
				},
			}}
		case "text":
			return map[string]any{"parse": map[string]any{
				"title": "Cook's Assistant",
				"text":  `<p><b>Cook's Assistant</b> is the first quest.</p>`,
			}}
		case "text|links":
			if q.Get("section") != "3" {
				t.Errorf("unexpected section %q", q.Get("section"))
			}
			return map[string]any{"parse": map[string]any{
				"title": "Cook's Assistant",
				"text":  `<p>Talk to the <a href="/w/Cook">Cook</a>.</p>`,
				"links": []map[string]any{{"title": "Cook"}},
			}}
		case "parsetree":
			return map[string]any{"parse": map[string]any{
				"title":     "Cook's Assistant",
				"parsetree": `<root><template><title>Infobox Quest</title><part><name>members</name>=<value>No</value></part></template></root>`,
			}}
		}
		t.Errorf("unexpected query %v", q)
		return map[string]any{}
	}
}

func TestGetPageOutline(t *testing.T) {
	client, _ := fakeWiki(t, questGuide(t))

	outline, err := GetPageOutline(context.Background(), client, "Cook's Assistant")
	if err != nil {
		t.Fatalf("GetPageOutline: %v", err)
	}

	if !reflect.DeepEqual(outline.Categories, []string{"Free-to-play quests"}) {
		t.Errorf("Categories = %v", outline.Categories)
	}
	if !reflect.DeepEqual(outline.SeeAlso, []string{"Cook", "Egg"}) {
		t.Errorf("SeeAlso = %v", outline.SeeAlso)
	}
	if want := wiki.CountWords("Cook's Assistant is the first quest."); outline.TotalWordCount != want {
		t.Errorf("TotalWordCount = %d, want %d", outline.TotalWordCount, want)
	}
	if outline.InfoboxType != "Infobox Quest" || outline.Infobox["members"] != "No" {
		t.Errorf("unexpected infobox %q %v", outline.InfoboxType, outline.Infobox)
	}

	// Lead, Details, Walkthrough, Rewards; the transcluded section is skipped
	if len(outline.Sections) != 4 {
		t.Fatalf("expected 4 top-level sections, got %d", len(outline.Sections))
	}
	walkthrough := outline.Sections[2]
	if len(walkthrough.Subsections) != 2 || walkthrough.Subsections[1].Title != "Finishing" {
		t.Errorf("unexpected walkthrough subsections %+v", walkthrough.Subsections)
	}
}

func TestGetPageSectionNavigation(t *testing.T) {
	client, _ := fakeWiki(t, questGuide(t))

	section, err := GetPageSection(context.Background(), client, "Cook's Assistant", 3)
	if err != nil {
		t.Fatalf("GetPageSection: %v", err)
	}

	if section.Section.Title != "Starting out" || section.Section.Level != 3 {
		t.Errorf("unexpected section %+v", section.Section)
	}
	if !reflect.DeepEqual(section.Section.Links, []string{"Cook"}) {
		t.Errorf("Links = %v", section.Section.Links)
	}
	want := map[string]*wiki.SectionRef{
		"parent":   {Index: 2, Title: "Walkthrough"},
		"previous": {Index: 2, Title: "Walkthrough"},
		"next":     {Index: 4, Title: "Finishing"},
	}
	got := map[string]*wiki.SectionRef{
		"parent":   section.ParentSection,
		"previous": section.Previous,
		"next":     section.Next,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("navigation = %+v, want %+v", got, want)
	}
}

func TestGetPageSectionNotFound(t *testing.T) {
	client, _ := fakeWiki(t, questGuide(t))

	_, err := GetPageSection(context.Background(), client, "Cook's Assistant", 9)

	var notFound *SectionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected SectionNotFoundError, got %v", err)
	}
	if notFound.AvailableSections != 6 {
		t.Errorf("AvailableSections = %d, want 6", notFound.AvailableSections)
	}
}

func TestGetPageInfoKey(t *testing.T) {
	client, _ := fakeWiki(t, func(q url.Values) any {
		tree := `<root><template><title>Infobox Item</title>` +
			`<part><name>members</name>=<value>No</value></part>` +
			`<part><name>release_date</name>=<value>[[4 January]] [[2001]]</value></part>` +
			`</template></root>`
		if q.Get("page") == "Lumbridge" {
			tree = `<root>Lumbridge is a town.</root>`
		}
		return map[string]any{"parse": map[string]any{"title": q.Get("page"), "parsetree": tree}}
	})

	tests := []struct {
		key      string
		wantKey  string
		wantText string
	}{
		{"members", "members", "No"},
		{"Release date", "release_date", "4 January 2001"},
	}
	for _, tt := range tests {
		got, err := GetPageInfoKey(context.Background(), client, "Egg", tt.key)
		if err != nil {
			t.Fatalf("GetPageInfoKey(%q): %v", tt.key, err)
		}
		if got.Key != tt.wantKey || got.Value != tt.wantText || got.InfoboxType != "Infobox Item" {
			t.Errorf("GetPageInfoKey(%q) = %+v", tt.key, got)
		}
	}

	_, err := GetPageInfoKey(context.Background(), client, "Egg", "examine")
	var notFound *InfoKeyNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected InfoKeyNotFoundError, got %v", err)
	}
	if !reflect.DeepEqual(notFound.AvailableKeys, []string{"members", "release_date"}) {
		t.Errorf("AvailableKeys = %v", notFound.AvailableKeys)
	}

	_, err = GetPageInfoKey(context.Background(), client, "Lumbridge", "members")
	if !errors.As(err, &notFound) || notFound.InfoboxType != "" {
		t.Errorf("expected missing infobox error, got %v", err)
	}
}

func TestGetPageMainImage(t *testing.T) {
	var base string
	client, calls := fakeWiki(t, func(q url.Values) any {
		if q.Get("prop") != "pageimages" {
			t.Errorf("unexpected query %v", q)
		}
		page := map[string]any{"title": q.Get("titles")}
		switch q.Get("titles") {
		case "Egg":
			page["pageimage"] = "Egg.png"
			page["original"] = map[string]any{"source": base + "/images/Egg.png", "width": 32, "height": 28}
		case "Broken":
			page["original"] = map[string]any{"source": base + "/images/Broken.html"}
		case "Missing":
			page["missing"] = true
		}
		return map[string]any{"query": map[string]any{"pages": []any{page}}}
	})
	base = client.BaseURL()

	for i := 0; i < 2; i++ {
		img, err := GetPageMainImage(context.Background(), client, "Egg")
		if err != nil {
			t.Fatalf("GetPageMainImage: %v", err)
		}
		if img.FileName != "Egg.png" || img.Width != 32 || img.MIMEType != "image/png" {
			t.Errorf("unexpected image %+v", img)
		}
		if data, mime := img.ImageData(); !reflect.DeepEqual(data, pngBytes) || mime != "image/png" {
			t.Errorf("unexpected image data %q %s", data, mime)
		}
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Errorf("expected one query and one download, got %d calls", got)
	}

	if _, err := GetPageMainImage(context.Background(), client, "Lumbridge"); !errors.Is(err, ErrNoPageImage) {
		t.Errorf("expected ErrNoPageImage, got %v", err)
	}
	if _, err := GetPageMainImage(context.Background(), client, "Broken"); err == nil {
		t.Error("expected non-image content to be rejected")
	}

	_, err := GetPageMainImage(context.Background(), client, "Missing")
	var apiErr *wiki.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "missingtitle" {
		t.Errorf("expected missingtitle, got %v", err)
	}
}

func TestTotalWordCountCountsLeadOnce(t *testing.T) {
	lead := "Cook's Assistant is the first quest."
	leadWords := wiki.CountWords(lead)

	sections := buildSectionsTree([]wiki.MWSection{
		{TocLevel: 1, Line: "Details", Index: "1"},
		{TocLevel: 2, Line: "Items", Index: "2"},
	}, lead)
	sections[1].WordCount = 4
	sections[1].Subsections[0].WordCount = 3

	if got := totalWordCount(sections, lead); got != leadWords+7 {
		t.Errorf("totalWordCount = %d, want %d", got, leadWords+7)
	}
	if got := totalWordCount(buildSectionsTree(nil, lead), lead); got != leadWords {
		t.Errorf("totalWordCount without headings = %d, want %d", got, leadWords)
	}
}
