package plugin

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatRecords renders search results as a compact numbered list for
// command responses and agent surfaces.
func FormatRecords(records []TorrentRecord, max int) string {
	if len(records) == 0 {
		return "No results found."
	}
	if max > 0 && len(records) > max {
		records = records[:max]
	}

	var b strings.Builder
	for i, r := range records {
		promo := promoTags(r)
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   size: %s | seeders: %d | leechers: %d", humanize.IBytes(uint64(r.Size)), r.Seeders, r.Peers)
		if promo != "" {
			fmt.Fprintf(&b, " | %s", promo)
		}
		fmt.Fprintf(&b, "\n   site: %s", r.SiteName)
		if r.PubDate != "" {
			fmt.Fprintf(&b, " | %s", r.PubDate)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func promoTags(r TorrentRecord) string {
	var tags []string
	switch r.DownloadVolumeFactor {
	case 0.0:
		tags = append(tags, "freeleech")
	case 0.5:
		tags = append(tags, "50%")
	}
	if r.UploadVolumeFactor == 2.0 {
		tags = append(tags, "2xUp")
	}
	return strings.Join(tags, " ")
}
