// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

/*
Package yamledit implements format-preserving edits of YAML documents.

A Document keeps the raw source bytes next to the node tree parsed from them.
Updates never re-encode the tree: every changed scalar becomes a splice
operation against the source buffer, so comments, key order, quoting style and
indentation of untouched text survive byte for byte. Bytes returns the source
with all queued replacements applied; with no replacements it returns the
input unchanged.

Two update strategies are offered. UpdateKeys addresses scalars with
dot-notation key paths ("app.image.tag", "images.0.newTag"), where integer
segments index into sequences. UpdateImageTags scans the whole tree for
container image references in either the Helm shape (repository/tag) or the
Kustomize shape (name/newTag) and rewrites the tag of every block whose image
name matches.

New values are plain text and are coerced to the type of the scalar they
replace: a "5" written over an integer stays an integer, "yes" written over a
boolean becomes true, and anything unparseable falls back to a string.

UpdateKeys applies its pairs in order and stops at the first path that fails
to resolve. Pairs applied before the failure stay applied; there is no
rollback. A path repeated within one call applies last-wins, with each pair
seeing the value left by the previous one.
*/
package yamledit

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/vmware-labs/go-yaml-edit/splice"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// ErrNoDocument is returned by Load for input that contains no YAML document
// at all (empty or comment-only files). It is distinct from an empty mapping,
// which is a perfectly editable document.
var ErrNoDocument = errors.New("no YAML document")

// A Change records one scalar replacement: the dot-notation key that was
// updated, the value found there and the value written in its place.
type Change struct {
	Key string
	Old any
	New any
}

// A Document is a YAML file opened for in-place editing.
type Document struct {
	src    []byte
	root   *yaml.Node
	indent int
	ops    []splice.Op
	queued map[int]queuedOp // extent start -> pending replacement
}

// queuedOp remembers what a pending splice op will write, so that a later
// update of the same scalar can supersede it instead of producing two
// overlapping ops over one extent.
type queuedOp struct {
	index int
	value any
}

// Load parses src into a Document. The mapping indentation width is detected
// from the first nested key so that multiline replacement values can be
// aligned with the rest of the file.
func Load(src []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, ErrNoDocument
	}
	// An explicit null document ("---" alone, or a lone ~) has nothing to
	// update either.
	if n := root.Content[0]; n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, ErrNoDocument
	}
	return &Document{src: src, root: &root, indent: DetectIndent(src)}, nil
}

// Indent reports the mapping indentation width detected at load time.
func (d *Document) Indent() int { return d.indent }

// UpdateKeys sets each dot-notation key path to the corresponding value,
// coercing the value text to the type of the existing scalar. Pairs whose
// coerced value equals the existing one are skipped. The first path that
// fails to resolve aborts the call; replacements queued by earlier pairs of
// the same call remain queued.
func (d *Document) UpdateKeys(keys, values []string) ([]Change, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("got %d keys and %d values", len(keys), len(values))
	}

	var changes []Change
	for i, keyPath := range keys {
		node, err := d.resolve(keyPath)
		if err != nil {
			return nil, err
		}

		old := d.currentValue(node)
		next := coerce(node, values[i])
		if old == next.value {
			continue
		}

		d.replace(node, next)
		changes = append(changes, Change{Key: keyPath, Old: old, New: next.value})
	}
	return changes, nil
}

// Bytes returns the document serialized back to text: the original source
// with all queued scalar replacements spliced in.
func (d *Document) Bytes() ([]byte, error) {
	if len(d.ops) == 0 {
		return d.src, nil
	}
	b, _, err := transform.Bytes(splice.T(d.ops...), d.src)
	if err != nil {
		return nil, fmt.Errorf("apply edits: %w", err)
	}
	return b, nil
}

// Diff returns a unified diff (3 lines of context, ---/+++ headers carrying
// path) between the original source and the current serialization, or the
// empty string when they are identical.
func (d *Document) Diff(path string) (string, error) {
	cur, err := d.Bytes()
	if err != nil {
		return "", err
	}
	if bytes.Equal(cur, d.src) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(d.src)),
		B:        difflib.SplitLines(string(cur)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
}

// currentValue returns the value a scalar node will hold once the queued
// edits are applied.
func (d *Document) currentValue(n *yaml.Node) any {
	start, _ := extentOf(n)
	if q, ok := d.queued[start]; ok {
		return q.value
	}
	return scalarValue(n)
}

// replace queues a splice op overwriting the extent of n with the rendered
// scalar. Updating the same scalar again supersedes the earlier op, so a
// repeated key path in one batch behaves last-wins instead of splicing twice
// over the same extent.
func (d *Document) replace(n *yaml.Node, s scalar) {
	start, end := extentOf(n)
	contIndent := lineIndent(d.src, n.Line) + d.indent
	op := splice.Span(start, end).WithFunc(func(prev string) (string, error) {
		return renderScalar(s, prev, contIndent)
	})

	if q, ok := d.queued[start]; ok {
		d.ops[q.index] = op
		d.queued[start] = queuedOp{index: q.index, value: s.value}
		return
	}
	if d.queued == nil {
		d.queued = map[int]queuedOp{}
	}
	d.queued[start] = queuedOp{index: len(d.ops), value: s.value}
	d.ops = append(d.ops, op)
}

// extentOf returns the rune extent covered by a node, including any quotes.
func extentOf(n *yaml.Node) (start, end int) {
	// IndexEnd includes the trailing newline of block scalars.
	d := 0
	if n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		d = 1
	}
	return n.Index, n.IndexEnd - d
}
