package corpus

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	text := "I build platforms.  I ship\n\nreliable software! Do you?   "
	got := SplitSentences(text)
	want := []string{"I build platforms.", "I ship reliable software!", "Do you?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences: %#v", got)
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences("  \n\t "); got != nil {
		t.Fatalf("expected nil for blank input, got %#v", got)
	}
}

func TestSplitSentencesNoTerminator(t *testing.T) {
	got := SplitSentences("a fragment without punctuation")
	if len(got) != 1 || got[0] != "a fragment without punctuation" {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "about.md"), []byte("First sentence. Second one."), 0o644); err != nil {
		t.Fatal(err)
	}
	sources := []Source{
		{File: "about.md", Section: "About"},
		{File: "missing.md", Section: "Gone"},
	}
	chunks, err := Extract(dir, sources)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ID != "About:0" || chunks[0].Section != "About" {
		t.Fatalf("unexpected chunk: %+v", chunks[0])
	}
	if chunks[1].Text != "Second one." {
		t.Fatalf("unexpected text: %q", chunks[1].Text)
	}
}

func TestExtractNoSources(t *testing.T) {
	if _, err := Extract(t.TempDir(), []Source{{File: "nope.md", Section: "X"}}); err == nil {
		t.Fatalf("expected error when no sources resolve")
	}
}
