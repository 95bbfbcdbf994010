// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// renderScalar produces the text spliced over a scalar's extent. prev is the
// current text of that extent (quotes included); contIndent is the column at
// which continuation lines of a multiline value must start.
func renderScalar(s scalar, prev string, contIndent int) (string, error) {
	out := s.text
	if !s.raw {
		var err error
		out, err = quote(s.text, prev, contIndent)
		if err != nil {
			return "", err
		}
	}
	if prev == "" && out != "" {
		// Implicit nulls have a zero-width extent right after the colon.
		out = " " + out
	}
	return out, nil
}

// quote encodes value as a YAML string, trying to preserve the quotation
// style of the old text when that style looks intentional: if the old value
// would not have needed its quotes, the new value keeps them; if the quotes
// were required (e.g. a number forced to be a string) they are only kept as
// long as the new value needs them too.
func quote(value, old string, contIndent int) (string, error) {
	if contIndent < 2 {
		contIndent = 2
	}

	if len(old) > 0 {
		q := old[0]
		if q == '"' || q == '\'' {
			reEncoded, err := yamlRoundTrip(old, contIndent)
			if err != nil {
				return "", err
			}
			if len(reEncoded) > 0 && reEncoded[0] != q {
				if q == '"' {
					return jsonMarshalString(value)
				}
				return yamlStringTrySingleQuoted(value, contIndent)
			}
		}
	}

	return yamlString(value, contIndent)
}

func jsonMarshalString(value string) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// yamlRoundTrip decodes a string from YAML and re-encodes it.
func yamlRoundTrip(str string, contIndent int) (string, error) {
	var parsed string
	if err := yaml.Unmarshal([]byte(str), &parsed); err != nil {
		return "", err
	}
	return yamlString(parsed, contIndent)
}

// yamlString encodes value with YAML quoting rules. Continuation lines of
// multiline encodings (block scalars) are reindented to contIndent, since
// the encoder only knows about its own fixed indentation step.
func yamlString(value string, contIndent int) (string, error) {
	if value == "" {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	s := buf.String()
	s = s[:len(s)-1] // strip the trailing newline emitted by the encoder

	return reindent(s, contIndent-2), nil
}

// reindent shifts every line after the first by delta extra spaces.
func reindent(s string, delta int) string {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 || delta <= 0 {
		return s
	}
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) > 0 {
			lines[i] = strings.Repeat(" ", delta) + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// yamlStringTrySingleQuoted returns a single-quoted YAML string, unless the
// value cannot be encoded that way (e.g. it contains non-printable runes), in
// which case it falls back to whatever encoding yamlString picks.
func yamlStringTrySingleQuoted(s string, contIndent int) (string, error) {
	if !isPrintable(s) {
		return yamlString(s, contIndent)
	}
	return fmt.Sprintf("'%s'", strings.ReplaceAll(s, "'", "''")), nil
}
