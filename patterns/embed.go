// Package patterns provides the embedded default PII recognizer definitions
// used by the redaction layer.
package patterns

import _ "embed"

//go:embed pii_na.yaml
var piiNAYAML []byte

// PIINAYAML returns the embedded North-American PII recognizer definitions.
func PIINAYAML() []byte { return piiNAYAML }
