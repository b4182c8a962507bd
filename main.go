// tgkit is a translation toolkit for game-data localization: it drafts
// translations with an AI provider and merges the curated translation bank
// into raw game-data dumps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/turretgirls-rus/tgkit/config"
	"github.com/turretgirls-rus/tgkit/dict"
	"github.com/turretgirls-rus/tgkit/i18n"
	"github.com/turretgirls-rus/tgkit/jsondoc"
	"github.com/turretgirls-rus/tgkit/merge"
	"github.com/turretgirls-rus/tgkit/textnorm"
	"github.com/turretgirls-rus/tgkit/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tgkit",
		Short: "Translation toolkit for game-data localization",
		Long: `tgkit: translation toolkit for game-data localization.

Works on a project laid out as:

  dumps/raw/           raw game-data JSON dumps (never modified)
  dumps/merged/        dumps with translations applied
  translations/ru/     curated translation dictionaries (the bank)
  translations/tmp/    untranslated lists and templates

Directories and the text extraction rule can be changed in .tgkit.yaml.

Commands:
  draft      Draft translations for untranslated strings with an AI provider
  apply      Apply the translation bank to raw dumps
  template   Build an empty translation template from raw dumps`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newDraftCmd(),
		newApplyCmd(),
		newTemplateCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// exit terminates the process when a command reports a non-zero code.
func exit(code int) {
	if code != 0 {
		os.Exit(code)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tgkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// draft
// ---------------------------------------------------------------------------

func newDraftCmd() *cobra.Command {
	var a draftArgs

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft translations for untranslated strings using AI",
		Long: `Draft translations for untranslated strings using an OpenAI-compatible API.

Reads a list of untranslated strings (JSON array, object keys, or a single
string), translates each one with a separate request, and adds the results
to a translation dictionary. Existing entries are never overwritten, so
reviewed translations are safe.

Without --confirm nothing is sent and nothing is written: the command only
reports how many strings would be translated.

The API key is taken from --api-key, then OPENAI_API_KEY in the environment,
then OPENAI_API_KEY in the project's .env file.

Examples:
  # See how many strings would be sent
  tgkit draft -i translations/tmp/untranslated.json

  # Translate and merge into translations/ru/ru.json
  tgkit draft -i translations/tmp/untranslated.json --confirm

  # Draft into a separate file for review
  tgkit draft -o translations/ru/draft.json --ru translations/ru/ru.json --confirm`,
		Run: func(cmd *cobra.Command, args []string) {
			exit(runDraft(a))
		},
	}

	cmd.Flags().StringVarP(&a.input, "input", "i", "", "Untranslated strings (default: <tmp dir>/untranslated.json)")
	cmd.Flags().StringVarP(&a.out, "out", "o", "", "Output dictionary (default: <bank dir>/<lang>.json)")
	cmd.Flags().StringVar(&a.existing, "ru", "", "Existing dictionary to merge into (default: same as --out)")
	cmd.Flags().StringVar(&a.lang, "lang", "", "Target language code (default \"ru\")")
	cmd.Flags().StringVar(&a.model, "model", "", "Model name (default \""+translate.DefaultModel+"\")")
	cmd.Flags().IntVar(&a.batchSize, "batch-size", 0, "Strings per progress batch (default 40)")
	cmd.Flags().BoolVar(&a.confirm, "confirm", false, "Actually call the API and write translations (spends credits)")

	// Network
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "API key (or OPENAI_API_KEY env var / .env)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom OpenAI-compatible API base URL")
	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (default 2m)")
	cmd.Flags().StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")

	return cmd
}

type draftArgs struct {
	input, out, existing string
	lang, model          string
	batchSize            int
	confirm              bool
	apiKey, baseURL      string
	timeout              time.Duration
	proxy                string
}

func runDraft(a draftArgs) int {
	cfg, err := config.Load(rootDir, config.Overrides{
		APIKey:    a.apiKey,
		BaseURL:   a.baseURL,
		Model:     a.model,
		Lang:      a.lang,
		Proxy:     a.proxy,
		BatchSize: a.batchSize,
		Timeout:   a.timeout,
	})
	if err != nil {
		logError("%v", err)
		return 1
	}

	if cfg.APIKey == "" {
		logError("%s", i18n.T("Please set OPENAI_API_KEY environment variable or place it in .env in project root."))
		return 1
	}

	input := a.input
	if input == "" {
		input = filepath.Join(cfg.TmpDir, "untranslated.json")
	}
	out := a.out
	if out == "" {
		out = filepath.Join(cfg.BankDir, cfg.Lang+".json")
	}
	existing := a.existing
	if existing == "" {
		existing = out
	}

	keys, err := dict.LoadKeys(input)
	if err != nil {
		logError("%v", err)
		return 1
	}
	if len(keys) == 0 {
		logInfo("%s", i18n.T("No keys found in input file"))
		return 0
	}

	logInfo(i18n.T("Loaded %d untranslated keys; will translate %d items in batches of %d (confirm=%v)"),
		len(keys), len(keys), cfg.BatchSize, a.confirm)

	if !a.confirm {
		logWarning("%s", i18n.T("Dry-run: no API calls will be made. Re-run with --confirm to actually call the API and write translations."))
		logSuccess("%s", i18n.T("Dry run finished"))
		return 0
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		logError(i18n.T("Creating directory for %s: %v"), out, err)
		return 1
	}

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logWarning("%s", i18n.T("Interrupted, saving progress..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	client := translate.NewClient(translate.Provider{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Proxy:   cfg.Proxy,
		Timeout: cfg.Timeout,
	})
	logInfo(i18n.T("Model: %s, Language: %s"), cfg.Model, translate.LanguageName(cfg.Lang))

	res := translate.Draft(ctx, client, keys, translate.Options{
		Language:  cfg.Lang,
		BatchSize: cfg.BatchSize,
		OnBatch: func(batch, size int) {
			logInfo(i18n.T("Translating batch %d: %d items..."), batch, size)
		},
		OnError: logError,
	})

	logInfo(i18n.T("Translated %d of %d strings"), res.Translated(), len(keys))

	d := loadExistingDictionary(existing)
	added := d.AddMissing(res.Keys, res.Translations)
	if err := d.WriteFile(out); err != nil {
		logError("%v", err)
		return 1
	}
	logSuccess(i18n.T("Wrote merged translations to %s (%d added, %d total)"), out, added, d.Len())

	if len(res.Failed) > 0 {
		failedPath := filepath.Join(cfg.TmpDir, "failed_"+cfg.Lang+".json")
		if err := jsondoc.WriteFile(failedPath, res.Failed); err != nil {
			logError("%v", err)
			return 1
		}
		logWarning(i18n.N("%d string was not translated; list saved to %s",
			"%d strings were not translated; list saved to %s", len(res.Failed)), len(res.Failed), failedPath)
	}

	return 0
}

// loadExistingDictionary reads the dictionary at path. A missing file gives
// an empty dictionary; an unreadable one is reported and also treated as
// empty.
func loadExistingDictionary(path string) *dict.Dictionary {
	if !fileExists(path) {
		return dict.New()
	}
	d, err := dict.ParseFile(path)
	if err != nil {
		logError(i18n.T("Failed to load existing dictionary: %v"), err)
		return dict.New()
	}
	return d
}

// ---------------------------------------------------------------------------
// apply
// ---------------------------------------------------------------------------

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the translation bank to raw dumps",
		Long: `Apply the translation bank to raw game-data dumps.

Loads every dictionary in the bank directory (filename order, first
translation of a string wins), then rewrites each dump in the raw directory:
every text slot whose normalized text is in the bank gets the translation.
Results go to the merged directory under the same file names; raw dumps are
never modified.

Text is matched after normalization: non-breaking spaces become spaces,
whitespace runs collapse, and long ellipses become "...".`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exit(runApply())
		},
	}

	return cmd
}

func runApply() int {
	cfg, err := config.Load(rootDir, config.Overrides{})
	if err != nil {
		logError("%v", err)
		return 1
	}

	bank, err := merge.LoadBank(cfg.BankDir)
	if err != nil {
		logError("%v", err)
		return 1
	}
	logInfo(i18n.N("Loaded %d translations from %d file", "Loaded %d translations from %d files", len(bank.Files())),
		bank.Len(), len(bank.Files()))

	for _, c := range bank.Conflicts() {
		logWarning(i18n.T("Conflicting translations for %q: keeping %q from %s, ignoring %q from %s"),
			c.Key, c.Kept, c.KeptFile, c.Ignored, c.IgnoredFile)
	}

	var total merge.Stats
	reports, err := merge.ApplyDir(bank, merge.Options{
		RawDir: cfg.RawDir,
		OutDir: cfg.MergedDir,
		Rule:   merge.ArrayRule(cfg.ExtractField, cfg.ExtractIndex),
		OnFile: func(r merge.FileReport) {
			total.Add(r.Stats)
			logSuccess("%s: replaced=%d missed=%d -> %s", r.Name, r.Replaced, r.Missed, r.OutPath)
		},
	})
	if err != nil {
		logError("%v", err)
		return 1
	}

	if len(reports) == 0 {
		logWarning(i18n.T("No dumps found in %s"), cfg.RawDir)
		return 0
	}
	logSuccess(i18n.N("Merged %d file: replaced=%d missed=%d", "Merged %d files: replaced=%d missed=%d", len(reports)),
		len(reports), total.Replaced, total.Missed)
	return 0
}

// ---------------------------------------------------------------------------
// template
// ---------------------------------------------------------------------------

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Build an empty translation template from raw dumps",
		Long: `Collect every text slot from the raw dumps and write a translation template.

The template is a dictionary of normalized English strings with empty
translations, ordered shortest first, written to <tmp dir>/<lang>_template.json.
Dumps that cannot be parsed are reported and skipped.

Text nested inside a text slot (for example an object stored in the "Array"
field after the English string) is not listed. apply still translates it
when the bank has an entry.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exit(runTemplate())
		},
	}

	return cmd
}

func runTemplate() int {
	cfg, err := config.Load(rootDir, config.Overrides{})
	if err != nil {
		logError("%v", err)
		return 1
	}

	files, err := merge.JSONFiles(cfg.RawDir)
	if err != nil {
		logError("%v", err)
		return 1
	}

	rule := merge.ArrayRule(cfg.ExtractField, cfg.ExtractIndex)
	seen := make(map[string]bool)
	var keys []string
	for _, path := range files {
		doc, err := jsondoc.ParseFile(path)
		if err != nil {
			logWarning("%s: %v", filepath.Base(path), err)
			continue
		}
		for _, text := range merge.Collect(doc, rule) {
			k := textnorm.Normalize(text)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}

	tpl := dict.NewTemplate(keys)
	path := filepath.Join(cfg.TmpDir, cfg.Lang+"_template.json")
	if err := tpl.WriteFile(path); err != nil {
		logError("%v", err)
		return 1
	}
	logSuccess(i18n.T("Template written: %s (%d keys)"), path, tpl.Len())
	return 0
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
