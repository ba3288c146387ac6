package model

import (
	"encoding/json"
	"testing"
)

func TestMetadata_UploadYear(t *testing.T) {
	tests := []struct {
		uploadDate string
		want       string
	}{
		{"20231115", "2023"},
		{"1999", "1999"},
		{"202", ""},
		{"", ""},
		{"20xx1115", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uploadDate, func(t *testing.T) {
			m := &Metadata{UploadDate: tt.uploadDate}
			if got := m.UploadYear(); got != tt.want {
				t.Errorf("UploadYear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadata_ChannelName(t *testing.T) {
	tests := []struct {
		name     string
		channel  string
		uploader string
		want     string
	}{
		{"channel preferred", "Channel", "Uploader", "Channel"},
		{"uploader fallback", "", "Uploader", "Uploader"},
		{"placeholder", "", "", "Unknown_Channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Metadata{Channel: tt.channel, Uploader: tt.uploader}
			if got := m.ChannelName(); got != tt.want {
				t.Errorf("ChannelName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadata_BestURL(t *testing.T) {
	m := &Metadata{WebpageURL: "https://example.com/watch?v=a", URL: "a"}
	if got := m.BestURL(); got != "https://example.com/watch?v=a" {
		t.Errorf("BestURL() = %q, want webpage URL", got)
	}

	m = &Metadata{URL: "a"}
	if got := m.BestURL(); got != "a" {
		t.Errorf("BestURL() = %q, want entry URL fallback", got)
	}
}

func TestMetadata_DecodeNullEntries(t *testing.T) {
	raw := `{"_type":"playlist","title":"List","entries":[{"id":"a","title":"A"},null,{"id":"b","title":"B"}]}`

	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !m.IsPlaylist() {
		t.Error("IsPlaylist() should be true for _type=playlist")
	}
	if len(m.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(m.Entries))
	}
	if m.Entries[1] != nil {
		t.Error("null entry should decode to nil")
	}
	if m.Entries[2] == nil || m.Entries[2].ID != "b" {
		t.Error("non-null entries should decode with fields intact")
	}
}

func TestUnhandledTypeReason(t *testing.T) {
	if got := UnhandledTypeReason("url_transparent"); got != "unhandled-type: url_transparent" {
		t.Errorf("UnhandledTypeReason() = %q", got)
	}
}
