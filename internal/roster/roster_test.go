package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFallsBackToToken(t *testing.T) {
	tab := New([]Entry{{Name: "Palma, Maicol", Token: "A2X9KQ41LMNOP"}})
	if got := tab.Resolve("A2X9KQ41LMNOP"); got != "Palma, Maicol" {
		t.Fatalf("expected mapped name, got %q", got)
	}
	if got := tab.Resolve("A1UNKNOWN0000"); got != "A1UNKNOWN0000" {
		t.Fatalf("expected token passthrough, got %q", got)
	}
}

func TestReverseResolveMissingName(t *testing.T) {
	tab := New([]Entry{{Name: "Rossi, Luca", Token: "A3BB72QWERTY0"}})
	token, ok := tab.ReverseResolve("Rossi, Luca")
	if !ok || token != "A3BB72QWERTY0" {
		t.Fatalf("expected mapped token, got %q ok=%v", token, ok)
	}
	if _, ok := tab.ReverseResolve("Bianchi, Sara"); ok {
		t.Fatalf("unmapped name should not resolve")
	}
}

func TestBlankEntriesSkipped(t *testing.T) {
	tab := New([]Entry{
		{Name: "", Token: "A000"},
		{Name: "Verdi, Anna", Token: ""},
		{Name: "Verdi, Anna", Token: "A3VALID00000X"},
	})
	if tab.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", tab.Len())
	}
}

func TestPlaceholderNames(t *testing.T) {
	if !IsPlaceholder("ID:A2X9KQ") {
		t.Fatalf("expected ID: prefix to be a placeholder")
	}
	if IsPlaceholder("Palma, Maicol") {
		t.Fatalf("real name flagged as placeholder")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	data := "drivers:\n  - name: \"Palma, Maicol\"\n    token: A2X9KQ41LMNOP\n  - name: \"ID:A1FF00\"\n    token: A1FF00ZYXWVU9\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	tab, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tab.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", tab.Len())
	}
	if got := tab.Resolve("A1FF00ZYXWVU9"); got != "ID:A1FF00" {
		t.Fatalf("placeholder should pass through as label, got %q", got)
	}
}
