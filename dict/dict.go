// Package dict implements reading and writing of flat translation
// dictionaries and untranslated-key lists.
//
// A dictionary file is a JSON object mapping source text to its
// translation:
//
//	{
//	  "Start game": "Начать игру",
//	  "Options": ""
//	}
//
// Key order from the file is preserved; new keys are appended. Dictionaries
// are curated by hand between runs, so tools only ever add missing keys.
package dict

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/turretgirls-rus/tgkit/jsondoc"
)

// Dictionary is an ordered source -> translation mapping.
type Dictionary struct {
	keys   []string
	values map[string]string
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{values: make(map[string]string)}
}

// ParseFile reads and parses a dictionary file.
func ParseFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// Parse parses dictionary JSON. Null values are read as empty
// translations; any other non-string value is an error.
func Parse(data []byte) (*Dictionary, error) {
	v, err := jsondoc.Parse(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*jsondoc.Object)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %s", describe(v))
	}

	d := New()
	for _, m := range obj.Members() {
		switch val := m.Value.(type) {
		case string:
			d.Set(m.Key, val)
		case nil:
			d.Set(m.Key, "")
		default:
			return nil, fmt.Errorf("expected string value for key %q, got %s", m.Key, describe(val))
		}
	}
	return d, nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.keys) }

// Keys returns the keys in file order followed by keys added later.
func (d *Dictionary) Keys() []string { return d.keys }

// Get returns the translation for key.
func (d *Dictionary) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present, translated or not.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Set stores a translation, appending the key if it is new.
func (d *Dictionary) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// AddMissing merges keys[i] -> translations[i] for every non-empty
// translation whose key is not already present. Existing entries are
// never overwritten, even when the new translation differs. It returns
// the number of entries added.
func (d *Dictionary) AddMissing(keys, translations []string) int {
	added := 0
	for i, k := range keys {
		if i >= len(translations) {
			break
		}
		v := translations[i]
		if v == "" || d.Has(k) {
			continue
		}
		d.Set(k, v)
		added++
	}
	return added
}

// Stats returns (total, translated, untranslated) counts.
func (d *Dictionary) Stats() (total, translated, untranslated int) {
	total = len(d.keys)
	for _, k := range d.keys {
		if d.values[k] != "" {
			translated++
		} else {
			untranslated++
		}
	}
	return
}

// WriteFile writes the dictionary to path, creating parent directories.
func (d *Dictionary) WriteFile(path string) error {
	return jsondoc.WriteFile(path, d.object())
}

func (d *Dictionary) object() *jsondoc.Object {
	obj := jsondoc.NewObject()
	for _, k := range d.keys {
		obj.Set(k, d.values[k])
	}
	return obj
}

// NewTemplate returns a dictionary holding every key with an empty
// translation, ordered shortest first and then lexically. Duplicate keys
// collapse into one entry.
func NewTemplate(keys []string) *Dictionary {
	sorted := append([]string(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(sorted[i]), utf8.RuneCountInString(sorted[j])
		if li != lj {
			return li < lj
		}
		return sorted[i] < sorted[j]
	})

	d := New()
	for _, k := range sorted {
		if !d.Has(k) {
			d.Set(k, "")
		}
	}
	return d
}

func describe(v any) string {
	switch v.(type) {
	case *jsondoc.Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case nil:
		return "null"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
