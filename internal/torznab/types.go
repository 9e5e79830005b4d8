// Package torznab implements the Torznab XML wire format and the mapping
// from feed items into normalized torrent records.
package torznab

import (
	"encoding/xml"
	"strconv"
)

// Feed is a Torznab search response.
type Feed struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel contains the response items.
type Channel struct {
	Title string `xml:"title"`
	Items []Item `xml:"item"`
}

// Item is a single release in a Torznab response. Torznab-specific fields
// arrive as namespaced <torznab:attr name="..." value="..."/> elements.
type Item struct {
	Title     string    `xml:"title"`
	GUID      string    `xml:"guid"`
	Link      string    `xml:"link"`
	Comments  string    `xml:"comments"`
	PubDate   string    `xml:"pubDate"`
	Size      int64     `xml:"size"`
	Desc      string    `xml:"description"`
	Enclosure Enclosure `xml:"enclosure"`
	Attrs     []Attr    `xml:"http://torznab.com/schemas/2015/feed attr"`
}

// Enclosure carries the download URL and length.
type Enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// Attr is a torznab extension attribute.
type Attr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Caps is the capability document returned by a t=caps query.
type Caps struct {
	XMLName    xml.Name   `xml:"caps"`
	Server     CapsServer `xml:"server"`
	Limits     CapsLimits `xml:"limits"`
	Searching  Searching  `xml:"searching"`
	Categories []Category `xml:"categories>category"`
}

// CapsServer identifies the responding server.
type CapsServer struct {
	Title string `xml:"title,attr"`
}

// CapsLimits carries the server's page size limits.
type CapsLimits struct {
	Max     int `xml:"max,attr"`
	Default int `xml:"default,attr"`
}

// Searching lists the search modes an indexer supports.
type Searching struct {
	Search      SearchMode `xml:"search"`
	TVSearch    SearchMode `xml:"tv-search"`
	MovieSearch SearchMode `xml:"movie-search"`
}

// SearchMode describes one search mode. Available is "yes" or "no" on the
// wire.
type SearchMode struct {
	Available       string `xml:"available,attr"`
	SupportedParams string `xml:"supportedParams,attr"`
}

// Enabled reports whether the mode is usable.
func (m SearchMode) Enabled() bool {
	return m.Available == "yes"
}

// Category is one entry of an indexer's category tree.
type Category struct {
	ID   int        `xml:"id,attr"`
	Name string     `xml:"name,attr"`
	Subs []Category `xml:"subcat"`
}

// Error is the Torznab error document some endpoints return instead of a
// feed.
type Error struct {
	XMLName     xml.Name `xml:"error"`
	Code        int      `xml:"code,attr"`
	Description string   `xml:"description,attr"`
}

// IndexerList is the response to a t=indexers query.
type IndexerList struct {
	XMLName  xml.Name  `xml:"indexers"`
	Indexers []Indexer `xml:"indexer"`
}

// Indexer describes one configured indexer in a t=indexers response.
type Indexer struct {
	ID       string `xml:"id,attr"`
	Type     string `xml:"type,attr"`
	Language string `xml:"language,attr"`
	Title    string `xml:"title"`
}

// Attr returns the named torznab attribute value, or "" when absent.
func (i *Item) Attr(name string) string {
	for _, a := range i.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// IntAttr returns the named attribute as an int, or 0 when absent or
// unparseable.
func (i *Item) IntAttr(name string) int {
	v, err := strconv.Atoi(i.Attr(name))
	if err != nil {
		return 0
	}
	return v
}

// FloatAttr returns the named attribute as a float, or def when absent or
// unparseable.
func (i *Item) FloatAttr(name string, def float64) float64 {
	raw := i.Attr(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
