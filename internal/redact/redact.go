// Package redact strips email addresses and phone numbers from user-authored
// text before it is logged or sent to the model gateway. Recognizers are
// defined in YAML (embedded defaults plus an optional operator override file)
// and applied in file order, so email redaction always runs before phone
// redaction.
package redact

import "fmt"

// Redactor replaces PII matches with fixed placeholders.
type Redactor struct {
	patterns []compiledPattern
}

// Option configures a Redactor.
type Option func(*config)

type config struct {
	overrideFile string
}

// WithOverrideFile layers recognizers from a YAML file over the embedded
// defaults. A missing file is silently skipped.
func WithOverrideFile(path string) Option {
	return func(c *config) { c.overrideFile = path }
}

// NewRedactor builds a redactor from the embedded default recognizers plus
// any configured overrides.
func NewRedactor(opts ...Option) (*Redactor, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	recs, err := DefaultRecognizers()
	if err != nil {
		return nil, err
	}

	if cfg.overrideFile != "" {
		rf, err := LoadRecognizerFile(cfg.overrideFile)
		if err != nil {
			return nil, fmt.Errorf("loading override recognizers: %w", err)
		}
		if rf != nil {
			recs = MergeRecognizers(recs, rf.Recognizers)
		}
	}

	compiled, err := compileRecognizers(recs)
	if err != nil {
		return nil, err
	}
	return &Redactor{patterns: compiled}, nil
}

// MustNewRedactor is like NewRedactor but panics on error. The embedded
// defaults are expected to always compile.
func MustNewRedactor(opts ...Option) *Redactor {
	r, err := NewRedactor(opts...)
	if err != nil {
		panic(fmt.Sprintf("redact.NewRedactor: %v", err))
	}
	return r
}

// Redact replaces every recognizer match with its placeholder. Patterns run
// in recognizer order. Idempotent: placeholders contain no pattern-shaped
// text, so redacting already-redacted input is a no-op. Empty input returns
// the empty string.
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range r.patterns {
		text = p.re.ReplaceAllString(text, p.placeholder)
	}
	return text
}
