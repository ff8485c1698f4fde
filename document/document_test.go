package document

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/transcription"
)

var testSegments = []transcription.Segment{
	{Start: 0, End: 4.5, Text: "eerste zin"},
	{Start: 4.5, End: 9.2, Text: "tweede zin"},
	{Start: 9.2, End: 15.0, Text: "derde zin"},
}

var testMeta = Metadata{
	SourceFile: "/media/lecture.mp4",
	Duration:   15.0,
	Model:      "tiny",
	Language:   "nl",
	Generated:  time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC),
}

// readDocumentXML opens the produced package and returns word/document.xml.
func readDocumentXML(t *testing.T, path string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	defer r.Close()

	parts := map[string]bool{}
	var doc string
	for _, f := range r.File {
		parts[f.Name] = true
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatal(err)
			}
			doc = string(data)
		}
	}

	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		if !parts[want] {
			t.Errorf("package missing part %s", want)
		}
	}
	return doc
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	a := New(Config{Timestamps: true})

	out, err := a.Assemble(testSegments, testMeta, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(dir, "lecture.docx")
	if out.Path != want {
		t.Errorf("Path = %q, want %q", out.Path, want)
	}

	doc := readDocumentXML(t, out.Path)

	// Chronological paragraph order.
	first := strings.Index(doc, "eerste zin")
	second := strings.Index(doc, "tweede zin")
	third := strings.Index(doc, "derde zin")
	if first < 0 || second < 0 || third < 0 {
		t.Fatal("segment text missing from document")
	}
	if !(first < second && second < third) {
		t.Errorf("segments out of order: %d %d %d", first, second, third)
	}

	for _, want := range []string{"[00:00:04]", "lecture.mp4", "tiny", "nl", "28/08/2026"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestAssembleWithoutTimestamps(t *testing.T) {
	a := New(Config{Timestamps: false})
	out, err := a.Assemble(testSegments, testMeta, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := readDocumentXML(t, out.Path)
	if strings.Contains(doc, "[00:00:04]") {
		t.Error("timestamps rendered despite being disabled")
	}
}

func TestAssembleSkipsEmptySegments(t *testing.T) {
	a := New(Config{})
	segs := []transcription.Segment{
		{Start: 0, End: 1, Text: "  "},
		{Start: 1, End: 2, Text: "alleen deze"},
	}
	out, err := a.Assemble(segs, testMeta, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := readDocumentXML(t, out.Path)
	if !strings.Contains(doc, "alleen deze") {
		t.Error("non-empty segment missing")
	}
}

func TestAssembleOverwrites(t *testing.T) {
	dir := t.TempDir()
	a := New(Config{})

	if _, err := a.Assemble(testSegments[:1], testMeta, dir); err != nil {
		t.Fatal(err)
	}
	out, err := a.Assemble(testSegments, testMeta, dir)
	if err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("rerun must overwrite, not duplicate; dir has %v", names)
	}
	doc := readDocumentXML(t, out.Path)
	if !strings.Contains(doc, "derde zin") {
		t.Error("second run's content not present; overwrite did not happen")
	}
}

func TestAssembleLeavesNoTempOnSuccess(t *testing.T) {
	dir := t.TempDir()
	a := New(Config{})

	if _, err := a.Assemble(testSegments, testMeta, dir); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".transcript-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestAssembleUnwritableDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	a := New(Config{})
	_, err := a.Assemble(testSegments, testMeta, dir)
	if !errors.Is(err, errors.ErrCodeWriteFailed) {
		t.Errorf("Code = %s, want WRITE_FAILED", errors.Code(err))
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/media/lecture.mp4", "lecture.docx"},
		{"interview.mp3", "interview.docx"},
		{"/deep/path/talk.v2.mkv", "talk.v2.docx"},
		{"noext", "noext.docx"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in); got != tt.want {
			t.Errorf("OutputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{0, "00:00:00"},
		{4.5, "00:00:04"},
		{75, "00:01:15"},
		{3723.9, "01:02:03"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.sec); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}
