// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"os"

	"github.com/sethvargo/go-githubactions"
)

// setOutput publishes a workflow output. Outside of a workflow there is no
// GITHUB_OUTPUT file and the output is silently skipped; the library treats
// that as fatal.
func setOutput(a *githubactions.Action, name, value string) {
	if os.Getenv("GITHUB_OUTPUT") == "" {
		return
	}
	a.SetOutput(name, value)
}

// setEmptyPublishOutputs emits the publish outputs as empty strings on runs
// that stop before committing, so downstream steps can reference them
// unconditionally.
func setEmptyPublishOutputs(a *githubactions.Action) {
	setOutput(a, "commit_sha", "")
	setOutput(a, "pr_number", "")
	setOutput(a, "pr_url", "")
}
