package prowlarr

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/torznab"
)

// Indexer is one indexer definition from /api/v1/indexer.
type Indexer struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Privacy  string `json:"privacy"`
	Enable   bool   `json:"enable"`
}

// SearchResult is one release from /api/v1/search.
type SearchResult struct {
	Title        string     `json:"title"`
	SortTitle    string     `json:"sortTitle"`
	DownloadURL  string     `json:"downloadUrl"`
	MagnetURL    string     `json:"magnetUrl"`
	InfoURL      string     `json:"infoUrl"`
	GUID         string     `json:"guid"`
	Size         int64      `json:"size"`
	Seeders      int        `json:"seeders"`
	Leechers     int        `json:"leechers"`
	Grabs        int        `json:"grabs"`
	PublishDate  string     `json:"publishDate"`
	ImdbID       FlexString `json:"imdbId"`
	IndexerID    int        `json:"indexerId"`
	Indexer      string     `json:"indexer"`
	IndexerFlags FlagSet    `json:"indexerFlags"`
}

// FlexString decodes a JSON value that may arrive as a string or a number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlagSet decodes indexer flags, which Prowlarr has served both as a bitmask
// integer and as a list of flag names across API versions. Bit 0 marks
// freeleech.
type FlagSet struct {
	Mask  int
	Names []string
}

func (f *FlagSet) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = FlagSet{}
		return nil
	}
	var mask int
	if err := json.Unmarshal(data, &mask); err == nil {
		f.Mask = mask
		f.Names = nil
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	f.Names = names
	f.Mask = 0
	return nil
}

// Freeleech reports whether the flags mark a zero download cost release.
func (f FlagSet) Freeleech() bool {
	if f.Mask&1 != 0 {
		return true
	}
	return f.hasName("freeleech")
}

// DoubleUpload reports whether the flags mark doubled upload credit.
func (f FlagSet) DoubleUpload() bool {
	return f.hasName("doubleupload")
}

func (f FlagSet) hasName(name string) bool {
	for _, n := range f.Names {
		if strings.EqualFold(strings.TrimPrefix(strings.ToLower(n), "g_"), name) {
			return true
		}
	}
	return false
}

// mapResult converts a Prowlarr release into a torrent record attributed to
// the given site. It returns false when the result has no title or no
// download link.
func mapResult(res *SearchResult, siteName string, order int) (plugin.TorrentRecord, bool) {
	if res.Title == "" {
		return plugin.TorrentRecord{}, false
	}

	enclosure := res.DownloadURL
	if enclosure == "" {
		enclosure = res.MagnetURL
	}
	if enclosure == "" {
		return plugin.TorrentRecord{}, false
	}

	pageURL := res.InfoURL
	if pageURL == "" {
		pageURL = res.GUID
	}

	dvf := 1.0
	if res.IndexerFlags.Freeleech() {
		dvf = 0.0
	}
	uvf := 1.0
	if res.IndexerFlags.DoubleUpload() {
		uvf = 2.0
	}

	return plugin.TorrentRecord{
		Title:                res.Title,
		Description:          res.SortTitle,
		Enclosure:            enclosure,
		PageURL:              pageURL,
		Size:                 res.Size,
		Seeders:              res.Seeders,
		Peers:                res.Leechers,
		Grabs:                res.Grabs,
		PubDate:              formatPublishDate(res.PublishDate),
		ImdbID:               torznab.NormalizeImdbID(string(res.ImdbID)),
		DownloadVolumeFactor: dvf,
		UploadVolumeFactor:   uvf,
		SiteName:             siteName,
		SiteOrder:            order,
	}, true
}

// formatPublishDate parses an ISO 8601 publish date and reformats it as
// "2006-01-02 15:04:05". Unparseable input is returned unchanged.
func formatPublishDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02 15:04:05")
		}
	}
	return raw
}

// slugify lowercases a name and collapses runs of non-alphanumerics to
// single dashes, for use in synthetic site domains.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// indexerIDString renders the numeric upstream ID for registry storage.
func indexerIDString(id int) string {
	return strconv.Itoa(id)
}
