// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	yptr "github.com/vmware-labs/yaml-jsonpointer"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound means a mapping key named by a key path does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrBadIndex means a key path segment addressed a sequence with
	// something that is not an integer.
	ErrBadIndex = errors.New("non-integer sequence index")
)

// resolve walks a dot-notation key path down to the node it addresses.
func (d *Document) resolve(keyPath string) (*yaml.Node, error) {
	n, err := yptr.Find(d.root, toJSONPointer(keyPath))
	if err != nil {
		return nil, classifyPathError(keyPath, err)
	}
	return n, nil
}

// toJSONPointer converts a dot path such as "app.image.tag" or
// "images.0.newTag" into a JSON Pointer. Segments containing "~" or "/" are
// escaped per RFC 6901.
func toJSONPointer(keyPath string) string {
	segs := strings.Split(keyPath, ".")
	for i, s := range segs {
		s = strings.ReplaceAll(s, "~", "~0")
		segs[i] = strings.ReplaceAll(s, "/", "~1")
	}
	return "/" + strings.Join(segs, "/")
}

// classifyPathError maps resolution failures onto the two failure kinds the
// caller can act on, keeping the offending path in the message.
func classifyPathError(keyPath string, err error) error {
	var num *strconv.NumError
	switch {
	case errors.As(err, &num):
		return fmt.Errorf("expected integer index for sequence, got %q in path %q: %w", num.Num, keyPath, ErrBadIndex)
	case errors.Is(err, yptr.ErrNotFound):
		return fmt.Errorf("path %q: %w", keyPath, ErrNotFound)
	default:
		return fmt.Errorf("path %q: %w", keyPath, err)
	}
}
