package projects

import (
	"errors"
	"testing"
	"time"
)

func TestDeriveFileMeta(t *testing.T) {
	cases := []struct {
		in, name, fileType string
	}{
		{"report.pdf", "report", "pdf"},
		{"Q3 numbers.XLSX", "Q3 numbers", "excel"},
		{"legacy.xls", "legacy", "excel"},
		{"brief.v2.docx", "brief.v2", "word"},
		{`C:\Users\rina\notes.doc`, "notes", "word"},
		{"dir/sub/deck.pdf", "deck", "pdf"},
	}
	for _, tc := range cases {
		name, fileType, err := DeriveFileMeta(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if name != tc.name || fileType != tc.fileType {
			t.Fatalf("%q: got (%q, %q), want (%q, %q)", tc.in, name, fileType, tc.name, tc.fileType)
		}
	}
}

func TestDeriveFileMetaRejectsOtherTypes(t *testing.T) {
	for _, in := range []string{"photo.png", "archive.zip", "noext", "pdf"} {
		if _, _, err := DeriveFileMeta(in); !errors.Is(err, ErrUnsupportedFile) {
			t.Fatalf("%q: expected ErrUnsupportedFile, got %v", in, err)
		}
	}
}

func TestFormatAvailabilityUsesJakartaTime(t *testing.T) {
	at := time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)
	if got := FormatAvailability(at); got != "Wednesday, 01 January 2025 at 03 PM (Jakarta time)" {
		t.Fatalf("unexpected %q", got)
	}
	late := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	if got := FormatAvailability(late); got != "Wednesday, 01 January 2025 at 03 AM (Jakarta time)" {
		t.Fatalf("expected date rollover, got %q", got)
	}
}

func TestParseDateTime(t *testing.T) {
	for in, want := range map[string]string{
		"2025-01-01T08:30:00Z":      "2025-01-01T08:30:00Z",
		"2025-01-01T15:30:00+07:00": "2025-01-01T08:30:00Z",
		"2025-01-01T08:30":          "2025-01-01T08:30:00Z",
		"2025-01-01 08:30:00":       "2025-01-01T08:30:00Z",
	} {
		got, err := ParseDateTime(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got.Format(time.RFC3339) != want {
			t.Fatalf("%q: got %s, want %s", in, got.Format(time.RFC3339), want)
		}
	}
	if _, err := ParseDateTime("next tuesday"); err == nil {
		t.Fatalf("expected error")
	}
}
