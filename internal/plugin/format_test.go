package plugin

import (
	"strings"
	"testing"
)

func TestFormatRecordsEmpty(t *testing.T) {
	if got := FormatRecords(nil, 10); got != "No results found." {
		t.Errorf("FormatRecords(nil) = %q, want no-results message", got)
	}
}

func TestFormatRecords(t *testing.T) {
	records := []TorrentRecord{
		{
			Title:                "Some.Movie.2023.1080p",
			Size:                 1073741824,
			Seeders:              42,
			Peers:                8,
			DownloadVolumeFactor: 0.0,
			UploadVolumeFactor:   2.0,
			SiteName:             "Jackett-RARBG",
			PubDate:              "2023-06-15 10:30:00",
		},
		{
			Title:                "Other.Movie.2023.720p",
			Size:                 734003200,
			Seeders:              5,
			Peers:                1,
			DownloadVolumeFactor: 1.0,
			UploadVolumeFactor:   1.0,
			SiteName:             "Prowlarr-NZBgeek",
		},
	}

	got := FormatRecords(records, 10)

	for _, want := range []string{
		"1. Some.Movie.2023.1080p",
		"1.0 GiB",
		"seeders: 42",
		"freeleech 2xUp",
		"site: Jackett-RARBG | 2023-06-15 10:30:00",
		"2. Other.Movie.2023.720p",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatRecords() missing %q in:\n%s", want, got)
		}
	}

	// No promo tags for plain 1/1 records.
	if strings.Contains(got, "2. Other.Movie.2023.720p\n   size: 700.0 MiB | seeders: 5 | leechers: 1 |") {
		t.Errorf("FormatRecords() rendered empty promo separator:\n%s", got)
	}
}

func TestFormatRecordsTruncates(t *testing.T) {
	records := make([]TorrentRecord, 5)
	for i := range records {
		records[i] = TorrentRecord{Title: "R", SiteName: "Jackett-Test"}
	}

	got := FormatRecords(records, 3)
	if strings.Contains(got, "4. ") {
		t.Errorf("FormatRecords() did not truncate to 3 entries:\n%s", got)
	}
	if !strings.Contains(got, "3. ") {
		t.Errorf("FormatRecords() dropped entries below the cap:\n%s", got)
	}
}

func TestPromoTags(t *testing.T) {
	tests := []struct {
		name string
		dvf  float64
		uvf  float64
		want string
	}{
		{"plain", 1.0, 1.0, ""},
		{"freeleech", 0.0, 1.0, "freeleech"},
		{"halfleech", 0.5, 1.0, "50%"},
		{"doubleupload", 1.0, 2.0, "2xUp"},
		{"freeleech doubleupload", 0.0, 2.0, "freeleech 2xUp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := TorrentRecord{DownloadVolumeFactor: tt.dvf, UploadVolumeFactor: tt.uvf}
			if got := promoTags(r); got != tt.want {
				t.Errorf("promoTags() = %q, want %q", got, tt.want)
			}
		})
	}
}
