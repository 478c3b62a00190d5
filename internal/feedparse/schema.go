package feedparse

import "encoding/xml"

// XML shapes for the two feed dialects. One probe struct covers both roots:
// an <rss> document populates Channel, an Atom <feed> populates Entries.
type feedProbe struct {
	XMLName xml.Name
	Channel rssChannel  `xml:"channel"`
	Entries []atomEntry `xml:"entry"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Encoded     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Creator     string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Author      string `xml:"author"`

	Enclosures      []enclosure  `xml:"enclosure"`
	MediaContents   []mediaMedia `xml:"http://search.yahoo.com/mrss/ content"`
	MediaThumbnails []mediaMedia `xml:"http://search.yahoo.com/mrss/ thumbnail"`
}

type atomEntry struct {
	// The media fields must precede Content: encoding/xml resolves an
	// element against the first matching field, and the unqualified
	// "content" tag would otherwise swallow media:content elements.
	MediaContents   []mediaMedia `xml:"http://search.yahoo.com/mrss/ content"`
	MediaThumbnails []mediaMedia `xml:"http://search.yahoo.com/mrss/ thumbnail"`

	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	ID        string     `xml:"id"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Author    atomAuthor `xml:"author"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// mediaMedia covers media:content and media:thumbnail elements.
type mediaMedia struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}
