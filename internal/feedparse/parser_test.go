package feedparse

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

var testFeed = domain.Feed{ID: "bbc", URL: "https://example.org/rss", Title: "BBC World", Color: "#bb1919"}

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func TestParseRSSItem(t *testing.T) {
	raw := `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Example</title>
    <item>
      <title>Budget passes parliament</title>
      <link>https://example.org/budget</link>
      <description>Short summary.</description>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
      <dc:creator>Jane Reporter</dc:creator>
    </item>
  </channel>
</rss>`

	p := NewParserWithClock(fixedClock)
	articles, err := p.Parse(raw, testFeed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}

	a := articles[0]
	if a.ID != "https://example.org/budget" {
		t.Errorf("ID = %q, want the link", a.ID)
	}
	if a.FeedID != "bbc" || a.FeedTitle != "BBC World" || a.FeedColor != "#bb1919" {
		t.Errorf("feed identity not denormalized: %+v", a)
	}
	if a.Author != "Jane Reporter" {
		t.Errorf("Author = %q, want dc:creator", a.Author)
	}
	if a.PubDate != "Mon, 01 Jan 2024 10:00:00 GMT" {
		t.Errorf("PubDate = %q, want the raw feed value", a.PubDate)
	}
	if a.ISODate != "2024-01-01T10:00:00.000Z" {
		t.Errorf("ISODate = %q, want 2024-01-01T10:00:00.000Z", a.ISODate)
	}
}

func TestParseRSSEncodedContentWinsWhenLonger(t *testing.T) {
	raw := `<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <item>
      <title>One</title>
      <link>https://example.org/1</link>
      <description>short</description>
      <content:encoded><![CDATA[<p>A much longer full body of the story.</p>]]></content:encoded>
    </item>
    <item>
      <title>Two</title>
      <link>https://example.org/2</link>
      <description>the description is the longer of the pair here</description>
      <content:encoded>tiny</content:encoded>
    </item>
  </channel>
</rss>`

	articles, err := NewParserWithClock(fixedClock).Parse(raw, testFeed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := articles[0].Content; got != "<p>A much longer full body of the story.</p>" {
		t.Errorf("article 1 content = %q, want the encoded body", got)
	}
	if got := articles[1].Content; got != "the description is the longer of the pair here" {
		t.Errorf("article 2 content = %q, want the description", got)
	}
}

func TestParseAtomEntry(t *testing.T) {
	raw := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Release notes</title>
    <link rel="self" href="https://example.org/self.xml"/>
    <link rel="alternate" href="https://example.org/notes"/>
    <summary>Only a summary here.</summary>
    <updated>2024-02-01T08:30:00Z</updated>
    <author><name>The Team</name></author>
  </entry>
</feed>`

	articles, err := NewParserWithClock(fixedClock).Parse(raw, testFeed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}

	a := articles[0]
	if a.Link != "https://example.org/notes" {
		t.Errorf("Link = %q, want the alternate link", a.Link)
	}
	if a.Content != "Only a summary here." {
		t.Errorf("Content = %q, want the summary fallback", a.Content)
	}
	if a.ISODate != "2024-02-01T08:30:00.000Z" {
		t.Errorf("ISODate = %q, want the updated timestamp", a.ISODate)
	}
	if a.Author != "The Team" {
		t.Errorf("Author = %q", a.Author)
	}
}

func TestParseAtomPublishedBeatsUpdated(t *testing.T) {
	raw := `<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Dated</title>
    <link href="https://example.org/dated"/>
    <published>2024-01-10T00:00:00Z</published>
    <updated>2024-01-20T00:00:00Z</updated>
  </entry>
</feed>`

	articles, err := NewParserWithClock(fixedClock).Parse(raw, testFeed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if articles[0].ISODate != "2024-01-10T00:00:00.000Z" {
		t.Errorf("ISODate = %q, want the published date", articles[0].ISODate)
	}
}

func TestParseMissingLinkGetsGeneratedID(t *testing.T) {
	raw := `<rss version="2.0"><channel><item><title>No link</title></item></channel></rss>`

	articles, err := NewParserWithClock(fixedClock).Parse(raw, testFeed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if articles[0].ID == "" {
		t.Error("ID is empty, want a generated one")
	}
	if articles[0].Link != "" {
		t.Errorf("Link = %q, want empty", articles[0].Link)
	}
}

func TestParseNoItemsIsError(t *testing.T) {
	raw := `<rss version="2.0"><channel><title>Empty</title></channel></rss>`

	_, err := NewParserWithClock(fixedClock).Parse(raw, testFeed)
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}
}

func TestParseMalformedXMLIsError(t *testing.T) {
	_, err := NewParserWithClock(fixedClock).Parse("<!doctype html><html><body>not a feed", testFeed)
	if err == nil {
		t.Fatal("err = nil, want a decode error")
	}
	if !strings.Contains(err.Error(), "decode feed xml") {
		t.Errorf("err = %v, want a decode error", err)
	}
}

func TestParseRSSMediaContentThumbnail(t *testing.T) {
	raw := `<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <item>
      <title>Pictured</title>
      <link>https://example.org/pic</link>
      <media:thumbnail url="https://img.example.org/thumb.jpg"/>
      <media:content url="https://img.example.org/full.jpg" type="image/jpeg"/>
    </item>
  </channel>
</rss>`

	articles, err := NewParserWithClock(fixedClock).Parse(raw, testFeed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := articles[0].Thumbnail; got != "https://img.example.org/full.jpg" {
		t.Errorf("Thumbnail = %q, want media:content to win over media:thumbnail", got)
	}
}
