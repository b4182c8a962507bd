// Package merge applies a bank of curated translations to raw game-data
// dumps. Text is matched by its normalized form (see textnorm) and
// replaced in place; everything else in the document is left untouched.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/turretgirls-rus/tgkit/jsondoc"
)

// Stats counts the outcome of applying a bank to one document.
type Stats struct {
	// Replaced is the number of text slots rewritten with a translation.
	Replaced int
	// Missed is the number of text slots with no translation in the bank.
	Missed int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Replaced += other.Replaced
	s.Missed += other.Missed
}

// Apply rewrites every text slot in doc that the bank can translate.
//
// At each object matched by rule the slot text is looked up; a hit
// replaces the text and counts as Replaced, anything else counts as
// Missed. The walk always continues into every member and element, so
// text nested below a matched object is visited too.
func Apply(doc any, bank *Bank, rule Rule) Stats {
	var st Stats
	walk(doc, rule, func(obj *jsondoc.Object) {
		if tr, ok := bank.Lookup(rule.Get(obj)); ok {
			rule.Set(obj, tr)
			st.Replaced++
		} else {
			st.Missed++
		}
	})
	return st
}

// Collect returns the text of every slot matched by rule, in walk order.
// Unlike Apply it does not look inside slot containers (rule.Slot), so
// text nested under another slot's text is not listed.
func Collect(doc any, rule Rule) []string {
	var texts []string
	walkTexts(doc, rule, rule.Slot, func(obj *jsondoc.Object) {
		texts = append(texts, rule.Get(obj))
	})
	return texts
}

func walk(v any, rule Rule, visit func(*jsondoc.Object)) {
	walkTexts(v, rule, nil, visit)
}

// walkTexts visits every object matched by rule, depth first. Members for
// which skip reports true are not descended into.
func walkTexts(v any, rule Rule, skip func(*jsondoc.Object, string) bool, visit func(*jsondoc.Object)) {
	switch x := v.(type) {
	case *jsondoc.Object:
		if rule.Match(x) {
			visit(x)
		}
		for _, m := range x.Members() {
			if skip != nil && skip(x, m.Key) {
				continue
			}
			walkTexts(m.Value, rule, skip, visit)
		}
	case []any:
		for _, item := range x {
			walkTexts(item, rule, skip, visit)
		}
	}
}

// ---------------------------------------------------------------------------
// Directory merge
// ---------------------------------------------------------------------------

// Options controls ApplyDir.
type Options struct {
	// RawDir holds the source dumps (*.json). Files are never modified.
	RawDir string
	// OutDir receives one output file per dump, under the same name.
	OutDir string
	// Rule locates text slots; the zero value means DefaultRule.
	Rule Rule
	// OnFile is called after each output file is written.
	OnFile func(r FileReport)
}

// FileReport describes the result for one dump.
type FileReport struct {
	Name    string
	OutPath string
	Stats
}

// ApplyDir applies bank to every dump in opts.RawDir in filename order and
// writes the results to opts.OutDir. A dump that fails to parse stops the
// run; files already written stay in place.
func ApplyDir(bank *Bank, opts Options) ([]FileReport, error) {
	rule := opts.Rule
	if rule.Match == nil {
		rule = DefaultRule
	}

	files, err := JSONFiles(opts.RawDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", opts.OutDir, err)
	}

	var reports []FileReport
	for _, path := range files {
		doc, err := jsondoc.ParseFile(path)
		if err != nil {
			return reports, err
		}

		st := Apply(doc, bank, rule)

		name := filepath.Base(path)
		out := filepath.Join(opts.OutDir, name)
		if err := jsondoc.WriteFile(out, doc); err != nil {
			return reports, err
		}

		r := FileReport{Name: name, OutPath: out, Stats: st}
		reports = append(reports, r)
		if opts.OnFile != nil {
			opts.OnFile(r)
		}
	}
	return reports, nil
}

// JSONFiles lists dir/*.json sorted by file name. A missing directory
// yields no files.
func JSONFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}
