// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package yamledit

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// imageShapes are the two mapping shapes that carry a container image
// reference: Helm-style values (repository/tag) and Kustomize-style image
// overrides (name/newTag). Both are checked independently at every mapping.
var imageShapes = []struct {
	ref, tag string
}{
	{"repository", "tag"},
	{"name", "newTag"},
}

// UpdateImageTags walks the whole tree depth-first and rewrites the tag of
// every image block whose reference matches imageName, either exactly or as
// the path component after the final "/" (so "ghcr.io/org/webapp" matches
// "webapp"). Change keys carry the dot path of the updated tag field.
func (d *Document) UpdateImageTags(imageName, newTag string) []Change {
	var changes []Change
	root := d.root
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	d.walkImageTags(root, imageName, newTag, "", &changes)
	return changes
}

func (d *Document) walkImageTags(n *yaml.Node, imageName, newTag, path string, changes *[]Change) {
	switch n.Kind {
	case yaml.MappingNode:
		for _, shape := range imageShapes {
			ref := mapEntry(n, shape.ref)
			tag := mapEntry(n, shape.tag)
			if ref == nil || tag == nil || !imageMatches(ref.Value, imageName) {
				continue
			}
			old := d.currentValue(tag)
			next := coerce(tag, newTag)
			if old == next.value {
				continue
			}
			d.replace(tag, next)
			*changes = append(*changes, Change{Key: joinPath(path, shape.tag), Old: old, New: next.value})
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			d.walkImageTags(n.Content[i+1], imageName, newTag, joinPath(path, n.Content[i].Value), changes)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			d.walkImageTags(item, imageName, newTag, joinPath(path, strconv.Itoa(i)), changes)
		}
	}
	// Alias nodes are not followed: an anchored block is edited once, where
	// it is defined.
}

func imageMatches(ref, imageName string) bool {
	return ref == imageName || strings.HasSuffix(ref, "/"+imageName)
}

// mapEntry returns the value node stored under key, or nil.
func mapEntry(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func joinPath(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "." + seg
}
