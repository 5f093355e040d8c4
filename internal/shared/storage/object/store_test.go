package object

import (
	"io"
	"strings"
	"testing"
)

func TestNewKeyNamespacesAndSanitizes(t *testing.T) {
	key, err := NewKey("project_files", "q1/report.xlsx")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if !strings.HasPrefix(key, "project_files/") || !strings.HasSuffix(key, "_q1_report.xlsx") {
		t.Fatalf("unexpected key %q", key)
	}
	if strings.Count(key, "/") != 1 {
		t.Fatalf("file name must not add path segments: %q", key)
	}
	if _, err := NewKey("project_files", "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestSniffKeepsFullContent(t *testing.T) {
	content := "%PDF-1.4\n" + strings.Repeat("x", 5000)
	ctype, body, err := Sniff(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if ctype != "application/pdf" {
		t.Fatalf("unexpected content type %q", ctype)
	}
	got, _ := io.ReadAll(body)
	if string(got) != content {
		t.Fatalf("content truncated: %d bytes", len(got))
	}
}
