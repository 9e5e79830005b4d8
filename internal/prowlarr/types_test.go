package prowlarr

import (
	"encoding/json"
	"testing"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want FlexString
	}{
		{"string", `"tt0133093"`, "tt0133093"},
		{"number", `133093`, "133093"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if f != tt.want {
				t.Errorf("FlexString = %q, want %q", f, tt.want)
			}
		})
	}
}

func TestFlagSetUnmarshal(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantFreeleech bool
		wantDoubleUp  bool
	}{
		{"freeleech bit", `1`, true, false},
		{"other bits only", `6`, false, false},
		{"zero mask", `0`, false, false},
		{"null", `null`, false, false},
		{"freeleech name", `["freeleech"]`, true, false},
		{"prefixed name", `["g_freeleech"]`, true, false},
		{"mixed case name", `["FreeLeech"]`, true, false},
		{"doubleupload name", `["doubleupload"]`, false, true},
		{"prefixed doubleupload", `["g_doubleupload"]`, false, true},
		{"both names", `["freeleech","doubleupload"]`, true, true},
		{"unrelated names", `["internal"]`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlagSet
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if got := f.Freeleech(); got != tt.wantFreeleech {
				t.Errorf("Freeleech() = %v, want %v", got, tt.wantFreeleech)
			}
			if got := f.DoubleUpload(); got != tt.wantDoubleUp {
				t.Errorf("DoubleUpload() = %v, want %v", got, tt.wantDoubleUp)
			}
		})
	}
}

func TestMapResult(t *testing.T) {
	res := SearchResult{
		Title:       "The.Matrix.1999.1080p",
		SortTitle:   "matrix 1999 1080p",
		DownloadURL: "http://example.com/dl/1",
		InfoURL:     "http://example.com/info/1",
		Size:        734003200,
		Seeders:     42,
		Leechers:    8,
		Grabs:       7,
		PublishDate: "2023-06-15T10:30:00Z",
		ImdbID:      "133093",
	}

	record, ok := mapResult(&res, "Prowlarr-NZBgeek", 2)
	if !ok {
		t.Fatalf("mapResult() ok = false, want true")
	}

	if record.Enclosure != "http://example.com/dl/1" {
		t.Errorf("Enclosure = %q, want download URL", record.Enclosure)
	}
	if record.PageURL != "http://example.com/info/1" {
		t.Errorf("PageURL = %q, want info URL", record.PageURL)
	}
	if record.PubDate != "2023-06-15 10:30:00" {
		t.Errorf("PubDate = %q, want 2023-06-15 10:30:00", record.PubDate)
	}
	if record.ImdbID != "tt133093" {
		t.Errorf("ImdbID = %q, want tt133093", record.ImdbID)
	}
	if record.DownloadVolumeFactor != 1.0 || record.UploadVolumeFactor != 1.0 {
		t.Errorf("volume factors = %v/%v, want 1/1",
			record.DownloadVolumeFactor, record.UploadVolumeFactor)
	}
	if record.SiteName != "Prowlarr-NZBgeek" || record.SiteOrder != 2 {
		t.Errorf("site attribution = %q/%d, want Prowlarr-NZBgeek/2", record.SiteName, record.SiteOrder)
	}
}

func TestMapResultFallbacksAndDrops(t *testing.T) {
	t.Run("magnet fallback", func(t *testing.T) {
		res := SearchResult{Title: "A", MagnetURL: "magnet:?xt=urn:btih:abc", GUID: "guid-1"}
		record, ok := mapResult(&res, "Prowlarr-X", 0)
		if !ok {
			t.Fatalf("mapResult() ok = false, want true")
		}
		if record.Enclosure != "magnet:?xt=urn:btih:abc" {
			t.Errorf("Enclosure = %q, want magnet link", record.Enclosure)
		}
		if record.PageURL != "guid-1" {
			t.Errorf("PageURL = %q, want guid fallback", record.PageURL)
		}
	})

	t.Run("no title dropped", func(t *testing.T) {
		res := SearchResult{DownloadURL: "http://example.com/dl"}
		if _, ok := mapResult(&res, "Prowlarr-X", 0); ok {
			t.Error("mapResult() ok = true, want false")
		}
	})

	t.Run("no link dropped", func(t *testing.T) {
		res := SearchResult{Title: "A"}
		if _, ok := mapResult(&res, "Prowlarr-X", 0); ok {
			t.Error("mapResult() ok = true, want false")
		}
	})
}

func TestMapResultFreeleechFlags(t *testing.T) {
	res := SearchResult{
		Title:        "A",
		DownloadURL:  "http://example.com/dl",
		IndexerFlags: FlagSet{Mask: 1},
	}
	record, _ := mapResult(&res, "Prowlarr-X", 0)
	if record.DownloadVolumeFactor != 0.0 {
		t.Errorf("DownloadVolumeFactor = %v, want 0", record.DownloadVolumeFactor)
	}

	res.IndexerFlags = FlagSet{Names: []string{"g_doubleupload"}}
	record, _ = mapResult(&res, "Prowlarr-X", 0)
	if record.UploadVolumeFactor != 2.0 {
		t.Errorf("UploadVolumeFactor = %v, want 2", record.UploadVolumeFactor)
	}
}

func TestFormatPublishDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-06-15T10:30:00Z", "2023-06-15 10:30:00"},
		{"2023-06-15T10:30:00", "2023-06-15 10:30:00"},
		{"garbage", "garbage"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := formatPublishDate(tt.in); got != tt.want {
			t.Errorf("formatPublishDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NZBgeek", "nzbgeek"},
		{"My Indexer (Clone)", "my-indexer-clone"},
		{"Already-slugged", "already-slugged"},
		{"--weird   input--", "weird-input"},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
