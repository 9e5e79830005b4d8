package torznab

import (
	"strings"
	"time"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

// Torznab category IDs for the media kinds this system searches.
const (
	CategoryMovies = 2000
	CategoryTV     = 5000
)

const pubDateLayout = "2006-01-02 15:04:05"

// Categories returns the Torznab category filter for a media kind. An
// unspecified kind searches both movies and TV.
func Categories(kind plugin.MediaKind) []int {
	switch kind {
	case plugin.MediaMovie:
		return []int{CategoryMovies}
	case plugin.MediaTV:
		return []int{CategoryTV}
	default:
		return []int{CategoryMovies, CategoryTV}
	}
}

// MapItem converts a feed item into a torrent record attributed to the given
// site. It returns false when the item is unusable: no title, or no download
// link resolvable from the enclosure, the item link or a magneturl attribute.
func MapItem(item *Item, siteName string, order int) (plugin.TorrentRecord, bool) {
	if item.Title == "" {
		return plugin.TorrentRecord{}, false
	}

	enclosure := item.Enclosure.URL
	if enclosure == "" {
		enclosure = item.Link
	}
	if enclosure == "" {
		enclosure = item.Attr("magneturl")
	}
	if enclosure == "" {
		return plugin.TorrentRecord{}, false
	}

	size := item.Enclosure.Length
	if size == 0 {
		size = item.Size
	}
	if size == 0 {
		size = int64(item.IntAttr("size"))
	}

	seeders := item.IntAttr("seeders")
	peers := item.IntAttr("peers")
	leechers := peers - seeders
	if leechers < 0 {
		leechers = 0
	}

	dvf, uvf := volumeFactors(item)

	return plugin.TorrentRecord{
		Title:                item.Title,
		Description:          item.Desc,
		Enclosure:            enclosure,
		PageURL:              pageURL(item),
		Size:                 size,
		Seeders:              seeders,
		Peers:                leechers,
		Grabs:                item.IntAttr("grabs"),
		PubDate:              FormatPubDate(item.PubDate),
		ImdbID:               NormalizeImdbID(item.Attr("imdbid")),
		DownloadVolumeFactor: dvf,
		UploadVolumeFactor:   uvf,
		SiteName:             siteName,
		SiteOrder:            order,
	}, true
}

func pageURL(item *Item) string {
	if item.Comments != "" {
		return item.Comments
	}
	return item.GUID
}

// volumeFactors resolves the promo factors for an item. Explicit
// downloadvolumefactor/uploadvolumefactor attributes win; otherwise the
// freeleech flag is consulted: 1/freeleech means free download, 4/halfleech
// half download cost, 8/doubleupload doubled upload credit.
func volumeFactors(item *Item) (dvf, uvf float64) {
	dvf, uvf = 1.0, 1.0

	switch strings.ToLower(item.Attr("freeleech")) {
	case "1", "freeleech":
		dvf = 0.0
	case "4", "halfleech":
		dvf = 0.5
	case "8", "doubleupload":
		uvf = 2.0
	}

	dvf = item.FloatAttr("downloadvolumefactor", dvf)
	uvf = item.FloatAttr("uploadvolumefactor", uvf)
	return dvf, uvf
}

// NormalizeImdbID ensures an IMDb ID carries the tt prefix. Already-prefixed
// IDs pass through unchanged and empty input stays empty.
func NormalizeImdbID(id string) string {
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "tt") {
		return id
	}
	return "tt" + id
}

// FormatPubDate parses an RFC 2822 style publish date and reformats it as
// "2006-01-02 15:04:05". Unparseable input is returned unchanged.
func FormatPubDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(pubDateLayout)
		}
	}
	return raw
}
