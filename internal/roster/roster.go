// Package roster holds the hand-curated reconciliation table pairing driver
// display names with the tracking tokens used by the lateness feed. The
// table is a maintained artifact, loaded once and never mutated at runtime.
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
)

// Entry pairs one display name with one tracking token.
type Entry struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
}

type rosterFile struct {
	Drivers []Entry `yaml:"drivers"`
}

// Table resolves tokens to display names and back. At most one token per
// name; later entries for the same name win so reloads stay deterministic.
type Table struct {
	nameByToken map[string]string
	tokenByName map[string]string
}

// New builds a table from curated entries. Blank names or tokens are skipped.
func New(entries []Entry) *Table {
	t := &Table{
		nameByToken: make(map[string]string, len(entries)),
		tokenByName: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		token := strings.TrimSpace(e.Token)
		if name == "" || token == "" {
			continue
		}
		t.nameByToken[token] = name
		t.tokenByName[name] = token
	}
	return t
}

// Load reads the YAML reconciliation file.
func Load(path string) (*Table, error) {
	log := logger.WithComponent("roster").WithField("path", path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var file rosterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	t := New(file.Drivers)
	log.WithField("entries", t.Len()).Info("roster loaded")
	return t, nil
}

// Resolve maps a tracking token to its display name, falling back to the
// token itself when unmapped. Never fails.
func (t *Table) Resolve(token string) string {
	if name, ok := t.nameByToken[token]; ok {
		return name
	}
	return token
}

// ReverseResolve maps a display name to its token. A missing name means the
// driver exists only in the NCC feed.
func (t *Table) ReverseResolve(name string) (string, bool) {
	token, ok := t.tokenByName[name]
	return token, ok
}

// Len reports the number of mapped pairs.
func (t *Table) Len() int {
	return len(t.nameByToken)
}

// IsPlaceholder reports whether a display name is an "ID:<partial-token>"
// stand-in used when the real name is unknown. Placeholders are opaque
// labels and must never be merged with real-name entries.
func IsPlaceholder(name string) bool {
	return strings.HasPrefix(name, "ID:")
}
