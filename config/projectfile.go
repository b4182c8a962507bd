// Package config resolves tgkit settings from flags, the environment, .env
// and the .tgkit.yaml project file.
//
// The project file is optional. When present in the project root it
// overrides the built-in defaults for directories, the extraction rule
// and drafting settings; environment variables, .env and command-line
// flags still take precedence over it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the project file name looked up in the project root.
const ProjectFileName = ".tgkit.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// ProjectFile is the top-level .tgkit.yaml structure.
type ProjectFile struct {
	// Lang is the target language code.
	Lang string `yaml:"lang,omitempty"`
	// Model is the chat model used by draft.
	Model string `yaml:"model,omitempty"`
	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string `yaml:"base_url,omitempty"`
	// BatchSize is the number of strings per progress batch.
	BatchSize int `yaml:"batch_size,omitempty"`
	// Timeout is the per-request timeout, e.g. "90s".
	Timeout string `yaml:"timeout,omitempty"`
	// Dirs overrides the working directories, relative to the project root.
	Dirs Dirs `yaml:"dirs,omitempty"`
	// Extract overrides the text extraction rule.
	Extract Extract `yaml:"extract,omitempty"`
}

// Dirs lists the working directories.
type Dirs struct {
	Raw    string `yaml:"raw,omitempty"`
	Merged string `yaml:"merged,omitempty"`
	Bank   string `yaml:"bank,omitempty"`
	Tmp    string `yaml:"tmp,omitempty"`
}

// Extract describes where translatable text lives in a dump object:
// the array stored under Field, element Index.
type Extract struct {
	Field string `yaml:"field,omitempty"`
	Index *int   `yaml:"index,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadProjectFile loads .tgkit.yaml from rootDir.
// Returns nil if no project file exists.
func LoadProjectFile(rootDir string) (*ProjectFile, error) {
	path := filepath.Join(rootDir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if pf.Timeout != "" {
		if _, err := time.ParseDuration(pf.Timeout); err != nil {
			return nil, fmt.Errorf("%s: invalid timeout %q: %w", path, pf.Timeout, err)
		}
	}
	return &pf, nil
}

// apply copies every value set in pf onto c.
func (pf *ProjectFile) apply(c *Config) {
	set := func(dst *string, v, field string) {
		if v != "" {
			*dst = v
			c.sources[field] = SourceProjectFile
		}
	}
	set(&c.Lang, pf.Lang, "lang")
	set(&c.Model, pf.Model, "model")
	set(&c.BaseURL, pf.BaseURL, "base_url")
	set(&c.RawDir, resolveDir(c.Root, pf.Dirs.Raw), "dirs.raw")
	set(&c.MergedDir, resolveDir(c.Root, pf.Dirs.Merged), "dirs.merged")
	set(&c.BankDir, resolveDir(c.Root, pf.Dirs.Bank), "dirs.bank")
	set(&c.TmpDir, resolveDir(c.Root, pf.Dirs.Tmp), "dirs.tmp")
	set(&c.ExtractField, pf.Extract.Field, "extract.field")

	if pf.BatchSize != 0 {
		c.BatchSize = pf.BatchSize
		c.sources["batch_size"] = SourceProjectFile
	}
	if pf.Timeout != "" {
		d, _ := time.ParseDuration(pf.Timeout)
		c.Timeout = d
		c.sources["timeout"] = SourceProjectFile
	}
	if pf.Extract.Index != nil {
		c.ExtractIndex = *pf.Extract.Index
		c.sources["extract.index"] = SourceProjectFile
	}
}

func resolveDir(root, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
