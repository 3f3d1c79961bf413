package wiki

import (
	"reflect"
	"strings"
	"testing"
)

func TestHTMLToMarkdownSanitizes(t *testing.T) {
	html := `<h2>Walkthrough<span class="mw-editsection">[edit]</span></h2>` +
		`<p>Talk to the <b>Cook</b>.<script>alert(1)</script></p>` +
		`<p onclick="steal()">Bring an egg.<sup class="reference">1</sup></p>`

	got, err := HTMLToMarkdown(html)
	if err != nil {
		t.Fatalf("HTMLToMarkdown: %v", err)
	}

	for _, unwanted := range []string{"alert", "steal", "[edit]"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("expected %q to be removed, got %q", unwanted, got)
		}
	}
	for _, wanted := range []string{"## Walkthrough", "**Cook**", "Bring an egg."} {
		if !strings.Contains(got, wanted) {
			t.Errorf("expected %q in %q", wanted, got)
		}
	}
}

func TestExtractLinks(t *testing.T) {
	html := `<a href="/w/Cook%27s_Assistant">a</a>` +
		`<a href="/w/Lumbridge_Castle#Kitchen">b</a>` +
		`<a href="/w/index.php?title=Bucket_of_milk&action=edit">c</a>` +
		`<a href="/w/Lumbridge_Castle">dup</a>` +
		`<a href="https://example.com">external</a>`

	want := []string{"Cook's Assistant", "Lumbridge Castle", "Bucket of milk"}
	if got := ExtractLinks(html); !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks() = %v, want %v", got, want)
	}
}

func TestCountWordsAndPreview(t *testing.T) {
	md := "# Heading\n\nSome **bold** text with a [link](/w/Link)."
	if got := CountWords(md); got != 7 {
		t.Errorf("CountWords() = %d, want 7", got)
	}
	if got := ExtractPreview("one two three four", 2); got != "one two..." {
		t.Errorf("ExtractPreview() = %q", got)
	}
}

func TestExtractInfobox(t *testing.T) {
	tree := `<root><template><title>Infobox Quest</title>` +
		`<part><name>name</name>=<value>Cook's Assistant</value></part>` +
		`<part><name>members</name>=<value>No</value></part>` +
		`<part><name>reward</name>=<value><template><title>Coins</title><part><name index="1"/><value>500</value></part></template></value></part>` +
		`<part><name>image</name>=<value></value></part>` +
		`</template></root>`

	title, infobox := ExtractInfobox(tree)
	if title != "Infobox Quest" {
		t.Errorf("unexpected title %q", title)
	}
	want := map[string]string{"name": "Cook's Assistant", "members": "No", "reward": "500 coins"}
	if !reflect.DeepEqual(infobox, want) {
		t.Errorf("ExtractInfobox() = %v, want %v", infobox, want)
	}
}

func TestExtractInfoboxMissing(t *testing.T) {
	title, infobox := ExtractInfobox(`<root>plain text</root>`)
	if title != "" || infobox != nil {
		t.Errorf("expected no infobox, got %q %v", title, infobox)
	}
}
