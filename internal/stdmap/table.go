package stdmap

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Entry is the target equivalent of one source-library call.
type Entry struct {
	// Target is the replacement spelling ("serde_json::to_string").
	Target string `yaml:"target"`
	// Import is the use-path the replacement requires, empty when the
	// spelling is fully qualified or needs none.
	Import string `yaml:"import"`
}

// Table is the call-name lookup. Construct with Default, then layer
// overlays; lookups afterward are read-only and safe for concurrent use.
type Table struct {
	entries map[string]Entry
}

type tableDoc struct {
	Mappings map[string]Entry `yaml:"mappings"`
}

// Default returns the embedded default table.
func Default() (*Table, error) {
	t := &Table{entries: map[string]Entry{}}
	if err := t.apply(defaultsYAML); err != nil {
		return nil, fmt.Errorf("embedded default table: %w", err)
	}
	return t, nil
}

// ApplyOverlay merges a YAML overlay into the table. Overlay entries
// override defaults with the same call name.
func (t *Table) ApplyOverlay(data []byte) error {
	return t.apply(data)
}

// ApplyOverlayFile reads and merges a YAML overlay from disk.
func (t *Table) ApplyOverlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overlay: %w", err)
	}
	if err := t.apply(data); err != nil {
		return fmt.Errorf("overlay %s: %w", path, err)
	}
	return nil
}

func (t *Table) apply(data []byte) error {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for call, entry := range doc.Mappings {
		if entry.Target == "" {
			return fmt.Errorf("mapping %q: target must not be empty", call)
		}
		t.entries[call] = entry
	}
	return nil
}

// Lookup resolves a fully-qualified call name.
func (t *Table) Lookup(call string) (Entry, bool) {
	e, ok := t.entries[call]
	return e, ok
}

// Len reports the number of mapped calls.
func (t *Table) Len() int { return len(t.entries) }
