package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/turretgirls-rus/tgkit/translate"
	"golang.org/x/text/language"
)

// Environment variables read by Load. The same names are looked up in the
// project's .env file.
const (
	EnvAPIKey    = "OPENAI_API_KEY"
	EnvBaseURL   = "OPENAI_BASE_URL"
	EnvModel     = "TGKIT_MODEL"
	EnvLang      = "TGKIT_LANG"
	EnvBatchSize = "TGKIT_BATCH_SIZE"
)

// DotEnvFileName is the optional dotenv file in the project root.
const DotEnvFileName = ".env"

// Where a setting came from, lowest precedence first.
const (
	SourceDefault     = "default"
	SourceProjectFile = ProjectFileName
	SourceDotEnv      = DotEnvFileName
	SourceEnv         = "environment"
	SourceFlag        = "flag"
)

// Built-in defaults.
const (
	DefaultLang         = "ru"
	DefaultRawDir       = "dumps/raw"
	DefaultMergedDir    = "dumps/merged"
	DefaultBankDir      = "translations/ru"
	DefaultTmpDir       = "translations/tmp"
	DefaultExtractField = "Array"
	DefaultExtractIndex = 0
)

// Config is the resolved configuration passed to each command.
type Config struct {
	// Root is the project root; relative directories are resolved against it.
	Root string

	APIKey    string
	BaseURL   string
	Model     string
	Lang      string
	Proxy     string
	BatchSize int
	Timeout   time.Duration

	RawDir    string
	MergedDir string
	BankDir   string
	TmpDir    string

	// ExtractField and ExtractIndex locate translatable text in dumps.
	ExtractField string
	ExtractIndex int

	sources map[string]string
}

// Overrides holds values given explicitly on the command line. Zero values
// mean "not given".
type Overrides struct {
	APIKey    string
	BaseURL   string
	Model     string
	Lang      string
	Proxy     string
	BatchSize int
	Timeout   time.Duration
}

// Default returns the built-in configuration for a project root.
func Default(root string) *Config {
	c := &Config{
		Root:         root,
		BaseURL:      translate.DefaultBaseURL,
		Model:        translate.DefaultModel,
		Lang:         DefaultLang,
		BatchSize:    translate.DefaultBatchSize,
		Timeout:      translate.DefaultTimeout,
		RawDir:       filepath.Join(root, DefaultRawDir),
		MergedDir:    filepath.Join(root, DefaultMergedDir),
		BankDir:      filepath.Join(root, DefaultBankDir),
		TmpDir:       filepath.Join(root, DefaultTmpDir),
		ExtractField: DefaultExtractField,
		ExtractIndex: DefaultExtractIndex,
		sources:      make(map[string]string),
	}
	return c
}

// Load resolves the configuration for root. Each setting takes the first
// value found in this order:
//
//  1. command-line flag (ov)
//  2. process environment
//  3. .env file in root
//  4. .tgkit.yaml in root
//  5. built-in default
func Load(root string, ov Overrides) (*Config, error) {
	if root == "" {
		root = "."
	}
	c := Default(root)

	pf, err := LoadProjectFile(root)
	if err != nil {
		return nil, err
	}
	if pf != nil {
		pf.apply(c)
	}

	dotenv, err := readDotEnv(root)
	if err != nil {
		return nil, err
	}
	if err := c.applyVars(dotenv, SourceDotEnv); err != nil {
		return nil, err
	}

	if err := c.applyVars(processEnv(), SourceEnv); err != nil {
		return nil, err
	}

	c.applyOverrides(ov)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Source reports where a setting came from. Keys are the .tgkit.yaml
// field names (e.g. "lang", "dirs.raw") plus "api_key" and "proxy".
func (c *Config) Source(key string) string {
	if s, ok := c.sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Validate checks that the resolved settings are usable.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be positive, got %d", c.BatchSize)
	}
	if strings.TrimSpace(c.ExtractField) == "" {
		return fmt.Errorf("config: extract field must not be empty")
	}
	if c.ExtractIndex < 0 {
		return fmt.Errorf("config: extract index must not be negative, got %d", c.ExtractIndex)
	}
	if _, err := language.Parse(c.Lang); err != nil {
		return fmt.Errorf("config: invalid language code %q: %w", c.Lang, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Layers
// ---------------------------------------------------------------------------

// readDotEnv parses root/.env without touching the process environment.
// A missing file yields no values.
func readDotEnv(root string) (map[string]string, error) {
	path := filepath.Join(root, DotEnvFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return vars, nil
}

func processEnv() map[string]string {
	vars := make(map[string]string)
	for _, name := range []string{EnvAPIKey, EnvBaseURL, EnvModel, EnvLang, EnvBatchSize} {
		if v, ok := os.LookupEnv(name); ok {
			vars[name] = v
		}
	}
	return vars
}

func (c *Config) applyVars(vars map[string]string, source string) error {
	set := func(dst *string, name, field string) {
		if v := strings.TrimSpace(vars[name]); v != "" {
			*dst = v
			c.sources[field] = source
		}
	}
	set(&c.APIKey, EnvAPIKey, "api_key")
	set(&c.BaseURL, EnvBaseURL, "base_url")
	set(&c.Model, EnvModel, "model")
	set(&c.Lang, EnvLang, "lang")

	if v := strings.TrimSpace(vars[EnvBatchSize]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s from %s: %w", EnvBatchSize, source, err)
		}
		c.BatchSize = n
		c.sources["batch_size"] = source
	}
	return nil
}

func (c *Config) applyOverrides(ov Overrides) {
	set := func(dst *string, v, field string) {
		if v != "" {
			*dst = v
			c.sources[field] = SourceFlag
		}
	}
	set(&c.APIKey, ov.APIKey, "api_key")
	set(&c.BaseURL, ov.BaseURL, "base_url")
	set(&c.Model, ov.Model, "model")
	set(&c.Lang, ov.Lang, "lang")
	set(&c.Proxy, ov.Proxy, "proxy")

	if ov.BatchSize != 0 {
		c.BatchSize = ov.BatchSize
		c.sources["batch_size"] = SourceFlag
	}
	if ov.Timeout > 0 {
		c.Timeout = ov.Timeout
		c.sources["timeout"] = SourceFlag
	}
}
