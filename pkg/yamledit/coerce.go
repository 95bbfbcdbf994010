// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// A scalar is a replacement value ready to be written: the typed value for
// the change record, the replacement text, and whether the text is emitted
// verbatim (non-string scalars) or goes through string quoting.
type scalar struct {
	value any
	text  string
	raw   bool
}

// coerce converts the textual new value to the type of the scalar it is
// about to replace:
//
//	null    -> keep the text as a string
//	bool    -> true iff lowercased, trimmed text is "true", "yes" or "1"
//	int     -> parse as integer, keep as string when that fails
//	float   -> parse as float, keep as string when that fails
//	string  -> keep as string
func coerce(existing *yaml.Node, text string) scalar {
	switch existing.Tag {
	case "!!bool":
		b := isTruthy(text)
		return scalar{value: b, text: strconv.FormatBool(b), raw: true}
	case "!!int":
		t := strings.TrimSpace(text)
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			return scalar{value: v, text: t, raw: true}
		}
	case "!!float":
		t := strings.TrimSpace(text)
		if v, err := strconv.ParseFloat(t, 64); err == nil {
			return scalar{value: v, text: t, raw: true}
		}
	}
	return scalar{value: text, text: text}
}

// isTruthy implements the boolean coercion rule for action-style booleans.
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// scalarValue returns the Go value of a scalar node according to its
// resolved tag.
func scalarValue(n *yaml.Node) any {
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		switch strings.ToLower(n.Value) {
		case "true", "yes", "on", "y":
			return true
		}
		return false
	case "!!int":
		if v, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			return v
		}
	case "!!float":
		if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return v
		}
	}
	return n.Value
}
