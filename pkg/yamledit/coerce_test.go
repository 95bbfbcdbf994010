// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit

import (
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"
)

func scalarNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(src), &root); err != nil {
		t.Fatal(err)
	}
	return root.Content[0]
}

func TestCoerce(t *testing.T) {
	testCases := []struct {
		existing string
		text     string
		want     scalar
	}{
		{"true", "yes", scalar{value: true, text: "true", raw: true}},
		{"true", "1", scalar{value: true, text: "true", raw: true}},
		{"true", "no", scalar{value: false, text: "false", raw: true}},
		{"false", " TRUE ", scalar{value: true, text: "true", raw: true}},
		{"3", "5", scalar{value: int64(5), text: "5", raw: true}},
		{"3", " 42 ", scalar{value: int64(42), text: "42", raw: true}},
		{"3", "abc", scalar{value: "abc", text: "abc"}},
		{"3", "4.5", scalar{value: "4.5", text: "4.5"}},
		{"0.5", "0.75", scalar{value: 0.75, text: "0.75", raw: true}},
		{"0.5", "2", scalar{value: float64(2), text: "2", raw: true}},
		{"0.5", "abc", scalar{value: "abc", text: "abc"}},
		{"null", "filled", scalar{value: "filled", text: "filled"}},
		{"hello", "world", scalar{value: "world", text: "world"}},
		{"hello", "5", scalar{value: "5", text: "5"}},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			n := scalarNode(t, tc.existing)
			if got, want := coerce(n, tc.text), tc.want; got != want {
				t.Errorf("got: %+v, want: %+v", got, want)
			}
		})
	}
}

func TestScalarValue(t *testing.T) {
	testCases := []struct {
		src  string
		want any
	}{
		{"null", nil},
		{"~", nil},
		{"true", true},
		{"false", false},
		{"3", int64(3)},
		{"-7", int64(-7)},
		{"0.5", 0.5},
		{"hello", "hello"},
		{"\"5\"", "5"},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			n := scalarNode(t, tc.src)
			if got, want := scalarValue(n), tc.want; got != want {
				t.Errorf("got: %v (%T), want: %v (%T)", got, got, want, want)
			}
		})
	}
}
