// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

// Command yaml-update updates values in YAML files, preserving their
// formatting, and optionally publishes the result as a commit or a pull
// request. It is the entrypoint of the yaml-update GitHub Action but also
// works as a plain CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sethvargo/go-githubactions"

	"github.com/dnd-it/yaml-update-action/pkg/gh"
	"github.com/dnd-it/yaml-update-action/pkg/gitops"
	"github.com/dnd-it/yaml-update-action/pkg/yamledit"
)

// version is overridden at build time.
var version = "devel"

type Context struct {
	action *githubactions.Action
	stdout io.Writer
}

var cli struct {
	Run  RunCmd  `cmd:"" default:"withargs" help:"Apply updates and publish the result."`
	Diff DiffCmd `cmd:"" help:"Apply updates in memory and print the unified diff to stdout."`

	Version kong.VersionFlag `name:"version" help:"Print version information and quit"`
}

type RunCmd struct {
	UpdateFlags
	GitFlags
	PRFlags
}

func (c *RunCmd) AfterApply() error {
	c.GitFlags.normalize()
	if err := c.PRFlags.normalize(); err != nil {
		return err
	}
	return c.UpdateFlags.validate()
}

func (c *RunCmd) Run(ctx *Context) error {
	bg := context.Background()
	a := ctx.action

	results, err := applyUpdates(a, &c.UpdateFlags, !c.dryRun)
	if err != nil {
		return err
	}

	var (
		changedFiles []string
		diffs        []string
	)
	for _, r := range results {
		if len(r.changes) > 0 {
			changedFiles = append(changedFiles, r.path)
			diffs = append(diffs, r.diff)
		}
	}
	changed := len(changedFiles) > 0

	setOutput(a, "changed", strconv.FormatBool(changed))
	setOutput(a, "changed_files", strings.Join(changedFiles, "\n"))
	setOutput(a, "diff", strings.Join(diffs, ""))

	if !changed {
		a.Infof("No changes, nothing to publish")
		setEmptyPublishOutputs(a)
		return nil
	}
	if c.dryRun {
		a.Infof("Dry run, skipping commit and pull request")
		setEmptyPublishOutputs(a)
		return nil
	}

	repository := os.Getenv("GITHUB_REPOSITORY")
	owner, repo, err := splitRepo(repository)
	if err != nil {
		return err
	}

	git := &gitops.Git{}
	serverURL := envDefault("GITHUB_SERVER_URL", "https://github.com")
	if err := git.Configure(bg, c.GitUserName, c.GitUserEmail, c.Token, repository, serverURL); err != nil {
		return err
	}

	base := c.TargetBranch
	if base == "" {
		if base, err = git.DefaultBranch(bg); err != nil {
			return err
		}
	}

	branch := base
	if c.createPR {
		branch = c.PRBranch
		if branch == "" {
			branch = generateBranchName(c.branchSeed(), time.Now())
		}
		if err := git.CreateBranch(bg, branch, base); err != nil {
			return err
		}
	}

	sha, err := git.CommitAndPush(bg, changedFiles, c.CommitMessage, branch)
	if err != nil {
		return err
	}
	setOutput(a, "commit_sha", sha)
	a.Infof("Pushed commit %s to branch %q", sha, branch)

	if !c.createPR {
		setOutput(a, "pr_number", "")
		setOutput(a, "pr_url", "")
		return nil
	}

	client, err := gh.NewClient(bg, c.Token, apiBaseURL(), graphqlBaseURL())
	if err != nil {
		return err
	}

	title := c.PRTitle
	fallback(&title, c.CommitMessage)
	body := c.PRBody
	if body == "" {
		body = prBody(results)
	}

	pr, err := client.CreatePullRequest(bg, owner, repo, title, body, branch, base)
	if err != nil {
		return err
	}
	setOutput(a, "pr_number", strconv.Itoa(pr.Number))
	setOutput(a, "pr_url", pr.URL)
	a.Infof("Opened pull request %s", pr.URL)

	// The PR exists at this point; decoration failures must not fail the run.
	if len(c.PRLabels) > 0 {
		if err := client.AddLabels(bg, owner, repo, pr.Number, c.PRLabels); err != nil {
			a.Warningf("%v", err)
		}
	}
	if len(c.PRReviewers) > 0 {
		if err := client.RequestReviewers(bg, owner, repo, pr.Number, c.PRReviewers); err != nil {
			a.Warningf("%v", err)
		}
	}
	if c.autoMerge {
		if err := client.EnableAutoMerge(bg, pr.NodeID, c.MergeMethod); err != nil {
			a.Warningf("%v", err)
		}
	}

	return nil
}

// branchSeed gathers every input that determines what the run changes, so
// reruns with the same inputs hash to the same branch prefix.
func (c *RunCmd) branchSeed() []string {
	seed := make([]string, 0, len(c.Files)+len(c.keys)+len(c.values)+3)
	seed = append(seed, c.Files...)
	seed = append(seed, c.Mode, c.ImageName, c.ImageTag)
	seed = append(seed, c.keys...)
	seed = append(seed, c.values...)
	return seed
}

type DiffCmd struct {
	UpdateFlags
}

func (c *DiffCmd) AfterApply() error {
	return c.UpdateFlags.validate()
}

func (c *DiffCmd) Run(ctx *Context) error {
	// Annotations would interleave with the diff on stdout.
	quiet := githubactions.New(githubactions.WithWriter(io.Discard))
	results, err := applyUpdates(quiet, &c.UpdateFlags, false)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprint(ctx.stdout, r.diff)
	}
	return nil
}

// applyUpdates runs the selected update over every input file. With persist
// set, files with changes are rewritten in place; stdin input is never
// written back.
func applyUpdates(a *githubactions.Action, u *UpdateFlags, persist bool) ([]fileResult, error) {
	var results []fileResult
	for _, path := range u.Files {
		src, err := readInput(path)
		if err != nil {
			return nil, err
		}

		doc, err := yamledit.Load(src)
		if errors.Is(err, yamledit.ErrNoDocument) {
			a.Warningf("%s: no YAML document, skipping", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		var changes []yamledit.Change
		switch u.Mode {
		case modeImage:
			changes = doc.UpdateImageTags(u.ImageName, u.ImageTag)
		default:
			if changes, err = doc.UpdateKeys(u.keys, u.values); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}

		a.Group(fmt.Sprintf("Updating %s", path))
		for _, ch := range changes {
			a.Infof("%s: %s -> %s", ch.Key, formatValue(ch.Old), formatValue(ch.New))
		}
		if len(changes) == 0 {
			a.Infof("no changes")
		}
		a.EndGroup()

		diff, err := doc.Diff(path)
		if err != nil {
			return nil, err
		}

		if persist && len(changes) > 0 && path != "-" {
			out, err := doc.Bytes()
			if err != nil {
				return nil, err
			}
			if err := writeFileAtomic(path, out); err != nil {
				return nil, err
			}
		}

		results = append(results, fileResult{path: path, changes: changes, diff: diff})
	}
	return results, nil
}

// apiBaseURL returns the REST endpoint for enterprise instances, or "" for
// github.com.
func apiBaseURL() string {
	if u := os.Getenv("GITHUB_API_URL"); u != "" && u != "https://api.github.com" {
		return u
	}
	return ""
}

func graphqlBaseURL() string {
	if u := os.Getenv("GITHUB_GRAPHQL_URL"); u != "" && u != "https://api.github.com/graphql" {
		return u
	}
	return ""
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("yaml-update"),
		kong.Description("Update values in YAML files, preserving formatting, and publish the result."),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	err := ctx.Run(&Context{action: githubactions.New(), stdout: os.Stdout})
	if err != nil && os.Getenv("GITHUB_ACTIONS") == "true" {
		githubactions.Errorf("%v", err)
		os.Exit(1)
	}
	ctx.FatalIfErrorf(err)
}
