package alertfeed

import (
	"encoding/xml"
	"strings"
)

// Feed is the subset of the Atom feed the lookup needs
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []Entry  `xml:"entry"`
}

// Entry is one Atom feed entry
type Entry struct {
	Title string `xml:"title"`
	ID    string `xml:"id"`
	Link  struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// URL returns the document location for the entry
func (e Entry) URL() string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	return strings.TrimSpace(e.Link.Href)
}

// entryTitle is the title fragment that identifies a region's warning bulletin
func entryTitle(region string) string {
	return region + "の気象警報・注意報"
}

// Match returns the first entry whose title names the region's bulletin
func (f Feed) Match(region string) (Entry, bool) {
	want := entryTitle(region)
	for _, e := range f.Entries {
		if strings.Contains(e.Title, want) {
			return e, true
		}
	}
	return Entry{}, false
}
