package dict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/turretgirls-rus/tgkit/jsondoc"
)

// LoadKeys reads an untranslated-key list. The file may hold:
//
//   - an array of strings (numbers and booleans are taken as their JSON text)
//   - an object, whose keys are used in file order and values ignored
//   - a single string, read as a one-element list
func LoadKeys(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	keys, err := ParseKeys(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return keys, nil
}

// ParseKeys is LoadKeys for in-memory data.
func ParseKeys(data []byte) ([]string, error) {
	v, err := jsondoc.Parse(data)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case *jsondoc.Object:
		return x.Keys(), nil
	case string:
		return []string{x}, nil
	case []any:
		keys := make([]string, 0, len(x))
		for i, item := range x {
			switch s := item.(type) {
			case string:
				keys = append(keys, s)
			case json.Number:
				keys = append(keys, s.String())
			case bool:
				keys = append(keys, fmt.Sprint(s))
			default:
				return nil, fmt.Errorf("element %d: cannot use %s as a key", i, describe(item))
			}
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("expected array, object or string, got %s", describe(v))
	}
}
