package merge

import (
	"path/filepath"

	"github.com/turretgirls-rus/tgkit/dict"
	"github.com/turretgirls-rus/tgkit/textnorm"
)

// Bank maps normalized source text to its translation.
type Bank struct {
	entries   map[string]bankEntry
	files     []string
	conflicts []Conflict
}

type bankEntry struct {
	value string
	file  string
}

// Conflict records a bank file whose translation for a key was ignored
// because an earlier file already supplied a different one.
type Conflict struct {
	// Key is the normalized source text.
	Key string
	// Kept is the translation in use and KeptFile the file it came from.
	Kept     string
	KeptFile string
	// Ignored is the disagreeing translation from IgnoredFile.
	Ignored     string
	IgnoredFile string
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{entries: make(map[string]bankEntry)}
}

// LoadBank builds a bank from every dictionary file (*.json) in dir, read
// in filename order. For each entry the key is normalized; the first
// non-empty translation of a normalized key wins and later ones are
// recorded as conflicts when they differ. Empty translations are never
// stored. Any unreadable or malformed file fails the whole load.
func LoadBank(dir string) (*Bank, error) {
	files, err := JSONFiles(dir)
	if err != nil {
		return nil, err
	}

	b := NewBank()
	for _, path := range files {
		d, err := dict.ParseFile(path)
		if err != nil {
			return nil, err
		}
		b.AddDictionary(d, filepath.Base(path))
	}
	return b, nil
}

// AddDictionary merges d into the bank under first-writer-wins rules.
// source names d in conflict reports.
func (b *Bank) AddDictionary(d *dict.Dictionary, source string) {
	b.files = append(b.files, source)
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		b.add(textnorm.Normalize(k), v, source)
	}
}

func (b *Bank) add(key, value, source string) {
	if value == "" {
		return
	}
	if prev, ok := b.entries[key]; ok {
		if prev.value != value {
			b.conflicts = append(b.conflicts, Conflict{
				Key:         key,
				Kept:        prev.value,
				KeptFile:    prev.file,
				Ignored:     value,
				IgnoredFile: source,
			})
		}
		return
	}
	b.entries[key] = bankEntry{value: value, file: source}
}

// Lookup normalizes text and returns its translation.
func (b *Bank) Lookup(text string) (string, bool) {
	e, ok := b.entries[textnorm.Normalize(text)]
	if !ok || e.value == "" {
		return "", false
	}
	return e.value, true
}

// Len returns the number of translations in the bank.
func (b *Bank) Len() int { return len(b.entries) }

// Files returns the names of the dictionaries loaded, in load order.
func (b *Bank) Files() []string { return b.files }

// Conflicts returns the disagreements found while loading, in load order.
func (b *Bank) Conflicts() []Conflict { return b.conflicts }
