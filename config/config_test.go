package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/turretgirls-rus/tgkit/translate"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvAPIKey, EnvBaseURL, EnvModel, EnvLang, EnvBatchSize} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	c, err := Load(root, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Lang != "ru" || c.BatchSize != 40 || c.Model != translate.DefaultModel || c.BaseURL != translate.DefaultBaseURL {
		t.Fatalf("Load() = %+v, want built-in defaults", c)
	}
	if c.Timeout != 120*time.Second {
		t.Fatalf("Timeout = %v, want 120s", c.Timeout)
	}
	if c.APIKey != "" {
		t.Fatalf("APIKey = %q, want empty", c.APIKey)
	}
	if want := filepath.Join(root, "dumps", "raw"); c.RawDir != want {
		t.Fatalf("RawDir = %q, want %q", c.RawDir, want)
	}
	if want := filepath.Join(root, "dumps", "merged"); c.MergedDir != want {
		t.Fatalf("MergedDir = %q, want %q", c.MergedDir, want)
	}
	if want := filepath.Join(root, "translations", "ru"); c.BankDir != want {
		t.Fatalf("BankDir = %q, want %q", c.BankDir, want)
	}
	if c.ExtractField != "Array" || c.ExtractIndex != 0 {
		t.Fatalf("extract rule = %q[%d], want Array[0]", c.ExtractField, c.ExtractIndex)
	}
	if got := c.Source("lang"); got != SourceDefault {
		t.Fatalf("Source(lang) = %q, want default", got)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	writeFile(t, filepath.Join(root, ProjectFileName), `
lang: de
model: yaml-model
batch_size: 10
timeout: 30s
`)
	writeFile(t, filepath.Join(root, DotEnvFileName), strings.Join([]string{
		"OPENAI_API_KEY=from-dotenv",
		"TGKIT_MODEL=dotenv-model",
		"TGKIT_LANG=fr",
	}, "\n")+"\n")
	t.Setenv(EnvLang, "es")

	c, err := Load(root, Overrides{BatchSize: 5})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	checks := []struct {
		key, got, want, source string
	}{
		{"api_key", c.APIKey, "from-dotenv", SourceDotEnv},
		{"model", c.Model, "dotenv-model", SourceDotEnv},
		{"lang", c.Lang, "es", SourceEnv},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Fatalf("%s = %q, want %q", ch.key, ch.got, ch.want)
		}
		if src := c.Source(ch.key); src != ch.source {
			t.Fatalf("Source(%s) = %q, want %q", ch.key, src, ch.source)
		}
	}
	if c.BatchSize != 5 || c.Source("batch_size") != SourceFlag {
		t.Fatalf("BatchSize = %d from %q, want 5 from flag", c.BatchSize, c.Source("batch_size"))
	}
	if c.Timeout != 30*time.Second || c.Source("timeout") != SourceProjectFile {
		t.Fatalf("Timeout = %v from %q, want 30s from project file", c.Timeout, c.Source("timeout"))
	}

	if os.Getenv(EnvAPIKey) != "" {
		t.Fatal(".env must not be exported into the process environment")
	}

	c, err = Load(root, Overrides{APIKey: "from-flag", Lang: "it", Model: "flag-model"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.APIKey != "from-flag" || c.Lang != "it" || c.Model != "flag-model" {
		t.Fatalf("flags should win: %+v", c)
	}
}

func TestLoadEnvBeatsDotEnv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, DotEnvFileName), "OPENAI_API_KEY=dotenv\n")
	t.Setenv(EnvAPIKey, "process")

	c, err := Load(root, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.APIKey != "process" {
		t.Fatalf("APIKey = %q, want process", c.APIKey)
	}
}

func TestLoadProjectFileDirsAndRule(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "bank")
	writeFile(t, filepath.Join(root, ProjectFileName), `
dirs:
  raw: data/in
  merged: data/out
  bank: `+abs+`
extract:
  field: Lines
  index: 1
`)

	c, err := Load(root, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if want := filepath.Join(root, "data", "in"); c.RawDir != want {
		t.Fatalf("RawDir = %q, want %q", c.RawDir, want)
	}
	if want := filepath.Join(root, "data", "out"); c.MergedDir != want {
		t.Fatalf("MergedDir = %q, want %q", c.MergedDir, want)
	}
	if c.BankDir != abs {
		t.Fatalf("BankDir = %q, want %q", c.BankDir, abs)
	}
	if c.ExtractField != "Lines" || c.ExtractIndex != 1 {
		t.Fatalf("extract rule = %q[%d], want Lines[1]", c.ExtractField, c.ExtractIndex)
	}
}

func TestLoadValidation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		project string
		env     string
		ov      Overrides
	}{
		{name: "negative batch", ov: Overrides{BatchSize: -1}},
		{name: "bad language", ov: Overrides{Lang: "not a tag!"}},
		{name: "bad batch env", env: "abc"},
		{name: "negative index", project: "extract:\n  index: -2\n"},
		{name: "bad timeout", project: "timeout: soon\n"},
		{name: "bad yaml", project: "lang: [unclosed\n"},
	}

	for _, tc := range tests {
		root := t.TempDir()
		if tc.project != "" {
			writeFile(t, filepath.Join(root, ProjectFileName), tc.project)
		}
		if tc.env != "" {
			t.Setenv(EnvBatchSize, tc.env)
		} else {
			os.Unsetenv(EnvBatchSize)
		}
		if _, err := Load(root, tc.ov); err == nil {
			t.Fatalf("%s: Load() should fail", tc.name)
		}
	}
}

func TestLoadProjectFileMissing(t *testing.T) {
	pf, err := LoadProjectFile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProjectFile() error: %v", err)
	}
	if pf != nil {
		t.Fatalf("LoadProjectFile() = %+v, want nil", pf)
	}
}
