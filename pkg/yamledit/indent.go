// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit

import "strings"

// DetectIndent returns the mapping indentation width of src, detected from
// the first nested key: the delta between a key line and the nearest
// shallower key line above it. Files with no nested keys report the
// conventional width of 2.
func DetectIndent(src []byte) int {
	lines := strings.Split(string(src), "\n")
	for i, line := range lines {
		stripped := strings.TrimLeft(line, " ")
		if stripped == "" || strings.HasPrefix(stripped, "#") || strings.HasPrefix(stripped, "-") {
			continue
		}
		if !strings.Contains(stripped, ":") {
			continue
		}
		indent := len(line) - len(stripped)
		if indent == 0 {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			prev := strings.TrimLeft(lines[j], " ")
			if prev == "" || strings.HasPrefix(prev, "#") {
				continue
			}
			if strings.Contains(prev, ":") && !strings.HasPrefix(prev, "-") {
				if pi := len(lines[j]) - len(prev); pi < indent {
					return indent - pi
				}
			}
			break
		}
	}
	return 2
}

// lineIndent returns the indentation of the given 1-based source line.
func lineIndent(src []byte, line int) int {
	lines := strings.Split(string(src), "\n")
	if line < 1 || line > len(lines) {
		return 0
	}
	l := lines[line-1]
	return len(l) - len(strings.TrimLeft(l, " "))
}
