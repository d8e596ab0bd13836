package redact

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/DewclawArchery/teri-gateway/patterns"
)

// RecognizerFile is the top-level YAML structure for a recognizer config file.
type RecognizerFile struct {
	Recognizers []RecognizerConfig `yaml:"recognizers"`
}

// RecognizerConfig defines one PII entity: the placeholder its matches are
// replaced with, and one or more regex patterns that detect it.
type RecognizerConfig struct {
	Name        string          `yaml:"name"`
	Entity      string          `yaml:"entity"`
	Placeholder string          `yaml:"placeholder"`
	Enabled     *bool           `yaml:"enabled,omitempty"`
	Patterns    []PatternConfig `yaml:"patterns,omitempty"`
}

// PatternConfig is a single regex pattern within a recognizer.
type PatternConfig struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
}

func (r *RecognizerConfig) isEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ParseRecognizerFile parses recognizer YAML bytes.
func ParseRecognizerFile(data []byte) (*RecognizerFile, error) {
	var rf RecognizerFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing recognizer YAML: %w", err)
	}
	return &rf, nil
}

// LoadRecognizerFile reads and parses a recognizer YAML file from disk.
// A missing file is not an error; it returns (nil, nil) so operator override
// files remain optional.
func LoadRecognizerFile(path string) (*RecognizerFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recognizer file %s: %w", path, err)
	}
	return ParseRecognizerFile(data)
}

// DefaultRecognizers returns the built-in recognizers parsed from the
// embedded pii_na.yaml file.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	rf, err := ParseRecognizerFile(patterns.PIINAYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded PII patterns: %w", err)
	}
	return rf.Recognizers, nil
}

// MergeRecognizers layers override recognizers on top of the defaults.
// An override with the same Entity replaces the default wholesale; new
// entities are appended after the defaults so the default ordering
// (email before phone) is preserved.
func MergeRecognizers(defaults, overrides []RecognizerConfig) []RecognizerConfig {
	merged := make([]RecognizerConfig, 0, len(defaults)+len(overrides))
	byEntity := make(map[string]int, len(overrides))
	for i, o := range overrides {
		byEntity[o.Entity] = i
	}
	seen := make(map[string]bool, len(overrides))
	for _, d := range defaults {
		if i, ok := byEntity[d.Entity]; ok {
			merged = append(merged, overrides[i])
			seen[d.Entity] = true
			continue
		}
		merged = append(merged, d)
	}
	for _, o := range overrides {
		if !seen[o.Entity] {
			merged = append(merged, o)
		}
	}
	return merged
}

// compiledPattern is a ready-to-use redaction rule.
type compiledPattern struct {
	entity      string
	placeholder string
	re          *regexp.Regexp
}

// compileRecognizers turns recognizer configs into ordered compiled rules.
// Disabled recognizers and recognizers without patterns are skipped.
func compileRecognizers(recs []RecognizerConfig) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, rec := range recs {
		if !rec.isEnabled() {
			continue
		}
		if rec.Placeholder == "" {
			return nil, fmt.Errorf("recognizer %s: placeholder is required", rec.Name)
		}
		for _, p := range rec.Patterns {
			re, err := regexp.Compile(p.Regex)
			if err != nil {
				return nil, fmt.Errorf("recognizer %s pattern %s: %w", rec.Name, p.Name, err)
			}
			out = append(out, compiledPattern{
				entity:      rec.Entity,
				placeholder: rec.Placeholder,
				re:          re,
			})
		}
	}
	return out, nil
}
