package service

import (
	"errors"
	"testing"
)

func TestCatalogRandomPick(t *testing.T) {
	catalog := NewCatalog(writeCatalogFile(t, `[
		{"title":"A","description":"first"},
		{"title":"B","description":"second"}
	]`))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		def, err := catalog.Random()
		if err != nil {
			t.Fatalf("random: %v", err)
		}
		seen[def.Title] = true
	}
	if !seen["A"] || !seen["B"] {
		t.Fatalf("expected both entries to be pickable, saw %v", seen)
	}
}

func TestCatalogEmpty(t *testing.T) {
	catalog := NewCatalog(writeCatalogFile(t, `[]`))
	if _, err := catalog.Random(); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestCatalogMissingFile(t *testing.T) {
	catalog := NewCatalog("does-not-exist.json")
	if _, err := catalog.Random(); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestCatalogMalformed(t *testing.T) {
	catalog := NewCatalog(writeCatalogFile(t, `{not json`))
	if _, err := catalog.Random(); err == nil {
		t.Fatal("expected error for malformed catalog")
	}
}
