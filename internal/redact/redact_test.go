package redact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedactor(t *testing.T) *Redactor {
	t.Helper()
	r, err := NewRedactor()
	require.NoError(t, err)
	return r
}

func TestRedactEmail(t *testing.T) {
	r := newTestRedactor(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "my email is a@b.com thanks", "my email is [email redacted] thanks"},
		{"uppercase", "Contact JOHN.DOE@EXAMPLE.ORG today", "Contact [email redacted] today"},
		{"plus tag", "send to me+tag@mail.example.co", "send to [email redacted]"},
		{"no email", "no contact info here", "no contact info here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Redact(tt.input))
		})
	}
}

func TestRedactPhone(t *testing.T) {
	r := newTestRedactor(t)

	tests := []struct {
		name  string
		input string
	}{
		{"dashes", "call me at 555-867-5309"},
		{"parens", "call (555) 867-5309 anytime"},
		{"dots", "555.867.5309"},
		{"country code", "+1 555 867 5309"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Redact(tt.input)
			assert.Contains(t, got, "[phone redacted]")
			assert.NotContains(t, got, "867")
		})
	}
}

func TestRedactEmailBeforePhone(t *testing.T) {
	r := newTestRedactor(t)

	// The digit run in the local part must be consumed by email redaction,
	// not mangled by the phone pattern.
	got := r.Redact("reach me at 5558675309@example.com")
	assert.Equal(t, "reach me at [email redacted]", got)
}

func TestRedactIdempotent(t *testing.T) {
	r := newTestRedactor(t)

	inputs := []string{
		"my email is a@b.com and my phone is 555-867-5309",
		"[email redacted] already clean",
		"nothing sensitive",
	}
	for _, in := range inputs {
		once := r.Redact(in)
		twice := r.Redact(once)
		assert.Equal(t, once, twice, "redact must be idempotent for %q", in)
	}
}

func TestRedactEmpty(t *testing.T) {
	r := newTestRedactor(t)
	assert.Equal(t, "", r.Redact(""))
}

func TestRedactBoth(t *testing.T) {
	r := newTestRedactor(t)
	got := r.Redact("email a@b.com or call 555-867-5309")
	assert.Equal(t, "email [email redacted] or call [phone redacted]", got)
}

func TestOverrideFileReplacesEntity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	override := `
recognizers:
  - name: CustomEmail
    entity: EMAIL
    placeholder: "[contact removed]"
    patterns:
      - name: email
        regex: '(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}'
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	r, err := NewRedactor(WithOverrideFile(path))
	require.NoError(t, err)

	assert.Equal(t, "[contact removed]", r.Redact("a@b.com"))
	// Phone default still active.
	assert.Equal(t, "[phone redacted]", r.Redact("555-867-5309"))
}

func TestOverrideFileMissingIsSkipped(t *testing.T) {
	r, err := NewRedactor(WithOverrideFile(filepath.Join(t.TempDir(), "nope.yaml")))
	require.NoError(t, err)
	assert.Equal(t, "[email redacted]", r.Redact("a@b.com"))
}

func TestMergeRecognizersAppendsNewEntities(t *testing.T) {
	defaults, err := DefaultRecognizers()
	require.NoError(t, err)

	merged := MergeRecognizers(defaults, []RecognizerConfig{{
		Name:        "Zip",
		Entity:      "ZIP",
		Placeholder: "[zip]",
		Patterns:    []PatternConfig{{Name: "zip", Regex: `\b\d{5}\b`}},
	}})

	require.Len(t, merged, len(defaults)+1)
	assert.Equal(t, "EMAIL", merged[0].Entity)
	assert.Equal(t, "ZIP", merged[len(merged)-1].Entity)
}
