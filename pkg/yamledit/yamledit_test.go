// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dnd-it/yaml-update-action/pkg/yamledit"
)

func mustLoad(t *testing.T, src string) *yamledit.Document {
	t.Helper()
	doc, err := yamledit.Load([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func mustBytes(t *testing.T, doc *yamledit.Document) string {
	t.Helper()
	b, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRoundTrip(t *testing.T) {
	testCases := []string{
		"app:\n  version: v1.0.0\n",
		"# leading comment\napp:\n  version: v1.0.0 # trailing\n",
		"app:\n    nested:\n        deep: 1\n",
		"quoted: \"v1\"\nsingle: 'v2'\nplain: v3\n",
		"items:\n- name: a\n- name: b\n",
		"empty: {}\n",
	}

	for i, src := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			doc := mustLoad(t, src)
			if got, want := mustBytes(t, doc), src; got != want {
				t.Errorf("got: %q, want: %q", got, want)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	if got, want := mustLoad(t, "app:\n    version: v1\n").Indent(), 4; got != want {
		t.Errorf("got: %d, want: %d", got, want)
	}
	if got, want := mustLoad(t, "flat: 1\n").Indent(), 2; got != want {
		t.Errorf("got: %d, want: %d", got, want)
	}
}

func TestLoadNoDocument(t *testing.T) {
	for i, src := range []string{
		"",
		"# just a comment\n",
		"\n\n# two\n# comments\n",
		"---\n",
		"---\n# no overrides\n",
		"null\n",
		"~\n",
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if _, err := yamledit.Load([]byte(src)); !errors.Is(err, yamledit.ErrNoDocument) {
				t.Errorf("got: %v, want: ErrNoDocument", err)
			}
		})
	}

	// An empty mapping is a document, not the sentinel.
	if _, err := yamledit.Load([]byte("{}\n")); err != nil {
		t.Errorf("got: %v, want: nil", err)
	}
}

func TestUpdateKeys(t *testing.T) {
	testCases := []struct {
		src    string
		keys   []string
		values []string
		want   string
		wantCh []yamledit.Change
	}{
		{
			src:    "app:\n  version: v1.0.0\n",
			keys:   []string{"app.version"},
			values: []string{"v2.0.0"},
			want:   "app:\n  version: v2.0.0\n",
			wantCh: []yamledit.Change{{Key: "app.version", Old: "v1.0.0", New: "v2.0.0"}},
		},
		{
			src:    "items:\n- value: old\n",
			keys:   []string{"items.0.value"},
			values: []string{"new"},
			want:   "items:\n- value: new\n",
			wantCh: []yamledit.Change{{Key: "items.0.value", Old: "old", New: "new"}},
		},
		{
			src:    "replicas: 3\n",
			keys:   []string{"replicas"},
			values: []string{"5"},
			want:   "replicas: 5\n",
			wantCh: []yamledit.Change{{Key: "replicas", Old: int64(3), New: int64(5)}},
		},
		{
			// Unparseable integer falls back to string.
			src:    "replicas: 3\n",
			keys:   []string{"replicas"},
			values: []string{"abc"},
			want:   "replicas: abc\n",
			wantCh: []yamledit.Change{{Key: "replicas", Old: int64(3), New: "abc"}},
		},
		{
			src:    "enabled: false\n",
			keys:   []string{"enabled"},
			values: []string{"yes"},
			want:   "enabled: true\n",
			wantCh: []yamledit.Change{{Key: "enabled", Old: false, New: true}},
		},
		{
			src:    "ratio: 0.5\n",
			keys:   []string{"ratio"},
			values: []string{"0.75"},
			want:   "ratio: 0.75\n",
			wantCh: []yamledit.Change{{Key: "ratio", Old: 0.5, New: 0.75}},
		},
		{
			// Existing null keeps the new value as a string.
			src:    "key: null\n",
			keys:   []string{"key"},
			values: []string{"filled"},
			want:   "key: filled\n",
			wantCh: []yamledit.Change{{Key: "key", Old: nil, New: "filled"}},
		},
		{
			// Intentional double quotes survive the update.
			src:    "tag: \"v1\"\n",
			keys:   []string{"tag"},
			values: []string{"v2"},
			want:   "tag: \"v2\"\n",
			wantCh: []yamledit.Change{{Key: "tag", Old: "v1", New: "v2"}},
		},
		{
			// Comments around the touched scalar are untouched.
			src:    "# release\napp:\n  version: v1.0.0 # pinned\n  name: demo\n",
			keys:   []string{"app.version"},
			values: []string{"v2.0.0"},
			want:   "# release\napp:\n  version: v2.0.0 # pinned\n  name: demo\n",
			wantCh: []yamledit.Change{{Key: "app.version", Old: "v1.0.0", New: "v2.0.0"}},
		},
		{
			// Multiple pairs in one call, applied in order.
			src:    "a: 1\nb: two\n",
			keys:   []string{"a", "b"},
			values: []string{"9", "drei"},
			want:   "a: 9\nb: drei\n",
			wantCh: []yamledit.Change{
				{Key: "a", Old: int64(1), New: int64(9)},
				{Key: "b", Old: "two", New: "drei"},
			},
		},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			doc := mustLoad(t, tc.src)
			changes, err := doc.UpdateKeys(tc.keys, tc.values)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := changes, tc.wantCh; !reflect.DeepEqual(got, want) {
				t.Errorf("changes: got: %+v, want: %+v", got, want)
			}
			if got, want := mustBytes(t, doc), tc.want; got != want {
				t.Errorf("got: %q, want: %q", got, want)
			}
		})
	}
}

func TestUpdateKeysNoop(t *testing.T) {
	testCases := []struct {
		src    string
		key    string
		value  string
	}{
		{"app:\n  version: v1.0.0\n", "app.version", "v1.0.0"},
		{"replicas: 3\n", "replicas", "3"},
		{"enabled: true\n", "enabled", "yes"},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			doc := mustLoad(t, tc.src)
			changes, err := doc.UpdateKeys([]string{tc.key}, []string{tc.value})
			if err != nil {
				t.Fatal(err)
			}
			if len(changes) != 0 {
				t.Errorf("got %d changes, want 0", len(changes))
			}
			if got, want := mustBytes(t, doc), tc.src; got != want {
				t.Errorf("got: %q, want: %q", got, want)
			}
		})
	}
}

func TestUpdateKeysErrors(t *testing.T) {
	testCases := []struct {
		src  string
		key  string
		want error
	}{
		{"a:\n  x: 1\n", "a.b.c", yamledit.ErrNotFound},
		{"items:\n- value: old\n", "items.notanumber", yamledit.ErrBadIndex},
		{"top: 1\n", "missing", yamledit.ErrNotFound},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			doc := mustLoad(t, tc.src)
			_, err := doc.UpdateKeys([]string{tc.key}, []string{"x"})
			if !errors.Is(err, tc.want) {
				t.Errorf("got: %v, want: %v", err, tc.want)
			}
			if err != nil && !strings.Contains(err.Error(), tc.key) {
				t.Errorf("error %q does not name path %q", err, tc.key)
			}
		})
	}

	// Out-of-range sequence indices fail too.
	doc := mustLoad(t, "items:\n- value: old\n")
	if _, err := doc.UpdateKeys([]string{"items.5.value"}, []string{"x"}); err == nil {
		t.Error("got nil error for out-of-range index")
	}
}

func TestUpdateKeysPartialApply(t *testing.T) {
	// A failing pair aborts the call but does not roll back earlier pairs.
	doc := mustLoad(t, "a: 1\nb: 2\n")
	_, err := doc.UpdateKeys([]string{"a", "missing"}, []string{"9", "x"})
	if !errors.Is(err, yamledit.ErrNotFound) {
		t.Fatalf("got: %v, want: ErrNotFound", err)
	}
	if got, want := mustBytes(t, doc), "a: 9\nb: 2\n"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
}

func TestUpdateKeysRepeatedPath(t *testing.T) {
	// A path repeated within one batch behaves last-wins: the second pair
	// sees the first pair's value and supersedes its replacement.
	doc := mustLoad(t, "a: 1\nb: x\n")
	changes, err := doc.UpdateKeys([]string{"a", "a"}, []string{"2", "3"})
	if err != nil {
		t.Fatal(err)
	}
	want := []yamledit.Change{
		{Key: "a", Old: int64(1), New: int64(2)},
		{Key: "a", Old: int64(2), New: int64(3)},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes: got: %+v, want: %+v", changes, want)
	}
	if got, want := mustBytes(t, doc), "a: 3\nb: x\n"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}

	// Repeating the value already queued is a no-op for the second pair.
	doc = mustLoad(t, "a: 1\n")
	changes, err = doc.UpdateKeys([]string{"a", "a"}, []string{"2", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 {
		t.Errorf("got %d changes, want 1", len(changes))
	}
	if got, want := mustBytes(t, doc), "a: 2\n"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
}

func TestUpdateImageTags(t *testing.T) {
	testCases := []struct {
		src       string
		imageName string
		newTag    string
		want      string
		wantCh    []yamledit.Change
	}{
		{
			src:       "image:\n  repository: ghcr.io/org/webapp\n  tag: v1.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want:      "image:\n  repository: ghcr.io/org/webapp\n  tag: v2.0.0\n",
			wantCh:    []yamledit.Change{{Key: "image.tag", Old: "v1.0.0", New: "v2.0.0"}},
		},
		{
			// Exact name match, no registry prefix.
			src:       "image:\n  repository: webapp\n  tag: v1.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want:      "image:\n  repository: webapp\n  tag: v2.0.0\n",
			wantCh:    []yamledit.Change{{Key: "image.tag", Old: "v1.0.0", New: "v2.0.0"}},
		},
		{
			// Suffix rule must not match other images.
			src:       "image:\n  repository: ghcr.io/org/otherapp\n  tag: v1.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want:      "image:\n  repository: ghcr.io/org/otherapp\n  tag: v1.0.0\n",
			wantCh:    nil,
		},
		{
			// Kustomize-style images list.
			src:       "images:\n- name: ghcr.io/org/webapp\n  newTag: v1.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want:      "images:\n- name: ghcr.io/org/webapp\n  newTag: v2.0.0\n",
			wantCh:    []yamledit.Change{{Key: "images.0.newTag", Old: "v1.0.0", New: "v2.0.0"}},
		},
		{
			// Both shapes in one document update independently.
			src: "image:\n  repository: ghcr.io/org/webapp\n  tag: v1.0.0\nimages:\n- name: ghcr.io/org/webapp\n  newTag: v1.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want: "image:\n  repository: ghcr.io/org/webapp\n  tag: v2.0.0\nimages:\n- name: ghcr.io/org/webapp\n  newTag: v2.0.0\n",
			wantCh: []yamledit.Change{
				{Key: "image.tag", Old: "v1.0.0", New: "v2.0.0"},
				{Key: "images.0.newTag", Old: "v1.0.0", New: "v2.0.0"},
			},
		},
		{
			// Same tag produces no change.
			src:       "image:\n  repository: ghcr.io/org/webapp\n  tag: v2.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want:      "image:\n  repository: ghcr.io/org/webapp\n  tag: v2.0.0\n",
			wantCh:    nil,
		},
		{
			// Deeply nested Helm values.
			src:       "services:\n  frontend:\n    image:\n      repository: ghcr.io/org/webapp\n      tag: v1.0.0\n",
			imageName: "webapp",
			newTag:    "v2.0.0",
			want:      "services:\n  frontend:\n    image:\n      repository: ghcr.io/org/webapp\n      tag: v2.0.0\n",
			wantCh:    []yamledit.Change{{Key: "services.frontend.image.tag", Old: "v1.0.0", New: "v2.0.0"}},
		},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			doc := mustLoad(t, tc.src)
			changes := doc.UpdateImageTags(tc.imageName, tc.newTag)
			if got, want := changes, tc.wantCh; !reflect.DeepEqual(got, want) {
				t.Errorf("changes: got: %+v, want: %+v", got, want)
			}
			if got, want := mustBytes(t, doc), tc.want; got != want {
				t.Errorf("got: %q, want: %q", got, want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	doc := mustLoad(t, "app:\n  version: v1.0.0\n  name: demo\n")
	if _, err := doc.UpdateKeys([]string{"app.version"}, []string{"v2.0.0"}); err != nil {
		t.Fatal(err)
	}

	diff, err := doc.Diff("deploy/values.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"--- deploy/values.yaml",
		"+++ deploy/values.yaml",
		"-  version: v1.0.0",
		"+  version: v2.0.0",
	} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}

func TestDiffNoChanges(t *testing.T) {
	doc := mustLoad(t, "app:\n  version: v1.0.0\n")
	diff, err := doc.Diff("values.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if diff != "" {
		t.Errorf("got: %q, want empty diff", diff)
	}
}
