// Package translate drafts translations for untranslated strings using an
// OpenAI-compatible chat completion API.
//
// Strings are sent one request at a time, strictly in order. Batches only
// group the work for progress reporting. A failed request never stops the
// run: the string is reported as failed and gets an empty translation.
package translate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultBatchSize is the number of strings per progress batch.
const DefaultBatchSize = 40

// previewLen is how much of a failed string is shown in error messages.
const previewLen = 30

// Translator translates a single string into lang.
type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

// ---------------------------------------------------------------------------
// Prompt
// ---------------------------------------------------------------------------

// BuildPrompt returns the user message asking for a translation of text
// into lang that keeps formatting and placeholders intact.
func BuildPrompt(text, lang string) string {
	return fmt.Sprintf("Translate the following string to %s preserving formatting and placeholders. Return only the translation.\n\n", LanguageName(lang)) + text
}

// LanguageName returns "English name (code)" for a language code, or the
// code itself when it is not a known language.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" || strings.EqualFold(name, code) {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

// ---------------------------------------------------------------------------
// Drafting
// ---------------------------------------------------------------------------

// Options controls Draft.
type Options struct {
	// Language is the target language code (e.g. "ru").
	Language string
	// BatchSize groups keys for progress reporting (default DefaultBatchSize).
	BatchSize int
	// OnBatch is called before each batch with its 1-based number and size.
	OnBatch func(batch, size int)
	// OnError reports a failed string.
	OnError func(format string, args ...any)
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// Result holds one translation per input key, in input order. Failed
// strings have an empty translation and are also listed in Failed.
type Result struct {
	Keys         []string
	Translations []string
	Failed       []string
}

// Translated returns the number of keys that received a non-empty translation.
func (r Result) Translated() int {
	n := 0
	for _, t := range r.Translations {
		if t != "" {
			n++
		}
	}
	return n
}

// Draft translates keys one by one. When ctx is cancelled the remaining
// keys are left untranslated and reported as failed.
func Draft(ctx context.Context, tr Translator, keys []string, opts Options) Result {
	res := Result{
		Keys:         keys,
		Translations: make([]string, len(keys)),
	}

	for i, batch := range splitStrings(keys, opts.effectiveBatchSize()) {
		if ctx.Err() != nil {
			break
		}
		if opts.OnBatch != nil {
			opts.OnBatch(i+1, len(batch))
		}
		base := i * opts.effectiveBatchSize()
		for j, text := range batch {
			if ctx.Err() != nil {
				break
			}
			out, err := tr.Translate(ctx, text, opts.Language)
			if err != nil {
				opts.logError("API error for text: %s...: %v", truncate(text, previewLen), err)
				continue
			}
			res.Translations[base+j] = out
		}
	}

	for i, t := range res.Translations {
		if t == "" {
			res.Failed = append(res.Failed, keys[i])
		}
	}
	return res
}

// splitStrings partitions items into consecutive chunks of chunkSize.
func splitStrings(items []string, chunkSize int) [][]string {
	if chunkSize <= 0 || chunkSize >= len(items) {
		if len(items) == 0 {
			return nil
		}
		return [][]string{items}
	}
	var chunks [][]string
	for i := 0; i < len(items); i += chunkSize {
		end := i + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// truncate returns at most maxLen runes of s.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
