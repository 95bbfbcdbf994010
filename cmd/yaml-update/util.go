// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dnd-it/yaml-update-action/pkg/yamledit"
)

// generateBranchName derives a branch name from the update inputs so that
// reruns with the same inputs sort together, plus a timestamp so they never
// collide.
func generateBranchName(seed []string, now time.Time) string {
	h := sha256.Sum256([]byte(strings.Join(seed, "\n")))
	return fmt.Sprintf("yaml-update/%x-%d", h[:4], now.Unix())
}

// splitRepo splits an "owner/name" repository slug.
func splitRepo(repository string) (owner, name string, err error) {
	parts := strings.SplitN(repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed repository %q, expected owner/name", repository)
	}
	return parts[0], parts[1], nil
}

func envDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// prBody renders the default pull request body: one bullet per change,
// grouped by file.
func prBody(results []fileResult) string {
	var b strings.Builder
	b.WriteString("## Changes\n")
	for _, r := range results {
		if len(r.changes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n`%s`:\n", r.path)
		for _, ch := range r.changes {
			fmt.Fprintf(&b, "- `%s`: `%s` -> `%s`\n", ch.Key, formatValue(ch.Old), formatValue(ch.New))
		}
	}
	return b.String()
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

// fileResult is the outcome of updating a single file.
type fileResult struct {
	path    string
	changes []yamledit.Change
	diff    string
}
