// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/mkmik/multierror"
	"gopkg.in/yaml.v3"
)

// lineList is a newline-separated flag value, the shape multiline action
// inputs arrive in. Blank lines and surrounding whitespace are dropped.
type lineList []string

func (l *lineList) UnmarshalText(in []byte) error {
	*l = splitList(string(in), "\n")
	return nil
}

// csvList is a comma-separated flag value.
type csvList []string

func (l *csvList) UnmarshalText(in []byte) error {
	*l = splitList(string(in), ",")
	return nil
}

func splitList(s, sep string) []string {
	var res []string
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}

// parseBool reads an action-style boolean, where unset means the default and
// anything outside the truthy set means false.
func parseBool(s string, def bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	switch s {
	case "true", "yes", "1":
		return true
	}
	return false
}

// fallback restores def when an input arrived as the empty string. The runner
// exports every declared INPUT_* variable, so kong's own defaults only kick
// in outside of a workflow.
func fallback(s *string, def string) {
	if strings.TrimSpace(*s) == "" {
		*s = def
	}
}

const (
	modeKey   = "key"
	modeImage = "image"
)

// UpdateFlags select which files to edit and what to change in them.
type UpdateFlags struct {
	Files      lineList `name:"files" env:"INPUT_FILES" help:"YAML files to update, one per line. Use - for stdin (diff only)."`
	Mode       string   `name:"mode" env:"INPUT_MODE" default:"key" help:"Update mode: key or image."`
	Keys       lineList `name:"keys" env:"INPUT_KEYS" help:"Dot-notation key paths to set, one per line."`
	Values     lineList `name:"values" env:"INPUT_VALUES" help:"New values, one per line, matching keys."`
	ValuesFile lineList `name:"values_file" env:"INPUT_VALUES_FILE" help:"YAML files of key: value pairs to apply before keys/values. Local paths or go-getter URLs."`
	ImageName  string   `name:"image_name" env:"INPUT_IMAGE_NAME" help:"Image name to match in image mode."`
	ImageTag   string   `name:"image_tag" env:"INPUT_IMAGE_TAG" help:"New tag to write in image mode."`

	// merged pairs for mode=key, values files first
	keys   []string
	values []string
}

func (u *UpdateFlags) validate() error {
	var errs []error
	if len(u.Files) == 0 {
		errs = append(errs, fmt.Errorf("files is required"))
	}

	u.Mode = strings.ToLower(strings.TrimSpace(u.Mode))
	fallback(&u.Mode, modeKey)
	switch u.Mode {
	case modeKey:
		keys, values, err := pairsFromFiles(u.ValuesFile)
		if err != nil {
			errs = append(errs, err)
		}
		u.keys = append(keys, u.Keys...)
		u.values = append(values, u.Values...)
		if len(u.Keys) != len(u.Values) {
			errs = append(errs, fmt.Errorf("got %d keys and %d values", len(u.Keys), len(u.Values)))
		} else if len(u.keys) == 0 {
			errs = append(errs, fmt.Errorf("mode %q needs keys/values or a values_file", modeKey))
		}
	case modeImage:
		if u.ImageName == "" {
			errs = append(errs, fmt.Errorf("image_name is required in mode %q", modeImage))
		}
		if u.ImageTag == "" {
			errs = append(errs, fmt.Errorf("image_tag is required in mode %q", modeImage))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q, expected %q or %q", u.Mode, modeKey, modeImage))
	}

	if errs != nil {
		return multierror.Join(errs)
	}
	return nil
}

// pairsFromFiles loads key: value YAML files in order and returns their pairs
// in document order. Nested mappings flatten to dot paths. Paths can be
// anything go-getter understands, including plain local files and https URLs.
func pairsFromFiles(paths []string) (keys, values []string, err error) {
	var errs []error
	for _, path := range paths {
		k, v, err := pairsFromFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("values file %q: %w", path, err))
			continue
		}
		keys = append(keys, k...)
		values = append(values, v...)
	}
	if errs != nil {
		return nil, nil, multierror.Join(errs)
	}
	return keys, values, nil
}

func pairsFromFile(path string) (keys, values []string, err error) {
	tmp, err := os.CreateTemp("", "values")
	if err != nil {
		return nil, nil, err
	}
	defer os.Remove(tmp.Name())
	tmp.Close()

	opt := func(c *getter.Client) (err error) {
		c.Pwd, err = os.Getwd()
		return
	}
	if err := getter.GetFile(tmp.Name(), path, opt); err != nil {
		return nil, nil, err
	}
	b, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil, fmt.Errorf("no YAML document")
	}
	return flattenPairs("", root.Content[0])
}

func flattenPairs(prefix string, n *yaml.Node) (keys, values []string, err error) {
	if n.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("expected a mapping, got %v", n.Tag)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := k.Value
		if prefix != "" {
			key = prefix + "." + key
		}
		switch v.Kind {
		case yaml.ScalarNode:
			keys = append(keys, key)
			values = append(values, v.Value)
		case yaml.MappingNode:
			ks, vs, err := flattenPairs(key, v)
			if err != nil {
				return nil, nil, err
			}
			keys = append(keys, ks...)
			values = append(values, vs...)
		default:
			return nil, nil, fmt.Errorf("key %q: only scalars and mappings are supported", key)
		}
	}
	return keys, values, nil
}

// GitFlags configure the identity and credential used for commits.
type GitFlags struct {
	Token         string `name:"token" env:"INPUT_TOKEN" help:"Token used for pushing and for the GitHub API. Falls back to GITHUB_TOKEN."`
	CommitMessage string `name:"commit_message" env:"INPUT_COMMIT_MESSAGE" default:"chore: update YAML values" help:"Commit message."`
	GitUserName   string `name:"git_user_name" env:"INPUT_GIT_USER_NAME" default:"github-actions[bot]" help:"Committer name."`
	GitUserEmail  string `name:"git_user_email" env:"INPUT_GIT_USER_EMAIL" default:"41898282+github-actions[bot]@users.noreply.github.com" help:"Committer email."`
}

func (g *GitFlags) normalize() {
	fallback(&g.Token, os.Getenv("GITHUB_TOKEN"))
	fallback(&g.CommitMessage, "chore: update YAML values")
	fallback(&g.GitUserName, "github-actions[bot]")
	fallback(&g.GitUserEmail, "41898282+github-actions[bot]@users.noreply.github.com")
}

// PRFlags configure publishing: branch, pull request, labels, auto-merge.
// Boolean inputs stay strings because the runner exports them as text.
type PRFlags struct {
	CreatePR     string  `name:"create_pr" env:"INPUT_CREATE_PR" default:"true" help:"Open a pull request for the change. When false the commit is pushed to the target branch."`
	DryRun       string  `name:"dry_run" env:"INPUT_DRY_RUN" default:"false" help:"Compute changes and outputs without writing, committing or pushing."`
	TargetBranch string  `name:"target_branch" env:"INPUT_TARGET_BRANCH" help:"Branch to merge into. Defaults to the repository default branch."`
	PRBranch     string  `name:"pr_branch" env:"INPUT_PR_BRANCH" help:"Branch to push to. Defaults to a generated yaml-update/ branch."`
	PRTitle      string  `name:"pr_title" env:"INPUT_PR_TITLE" help:"Pull request title. Defaults to the commit message."`
	PRBody       string  `name:"pr_body" env:"INPUT_PR_BODY" help:"Pull request body. Defaults to a summary of the changes."`
	PRLabels     csvList `name:"pr_labels" env:"INPUT_PR_LABELS" help:"Labels to add to the pull request, comma separated."`
	PRReviewers  csvList `name:"pr_reviewers" env:"INPUT_PR_REVIEWERS" help:"Reviewers to request, comma separated."`
	AutoMerge    string  `name:"auto_merge" env:"INPUT_AUTO_MERGE" default:"false" help:"Enable auto-merge on the pull request."`
	MergeMethod  string  `name:"merge_method" env:"INPUT_MERGE_METHOD" default:"SQUASH" help:"Auto-merge method: MERGE, SQUASH or REBASE."`

	createPR  bool
	dryRun    bool
	autoMerge bool
}

func (p *PRFlags) normalize() error {
	p.createPR = parseBool(p.CreatePR, true)
	p.dryRun = parseBool(p.DryRun, false)
	p.autoMerge = parseBool(p.AutoMerge, false)

	p.MergeMethod = strings.ToUpper(strings.TrimSpace(p.MergeMethod))
	fallback(&p.MergeMethod, "SQUASH")
	switch p.MergeMethod {
	case "MERGE", "SQUASH", "REBASE":
	default:
		return fmt.Errorf("unknown merge_method %q, expected MERGE, SQUASH or REBASE", p.MergeMethod)
	}
	return nil
}
