// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

// Package gitops drives the git CLI of the runner: committing edited files,
// pushing branches and answering questions about the checkout. It shells out
// rather than reimplementing git so that the runner's own credential and
// transport configuration keeps working.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
)

// Git runs git commands in a working directory. The zero value runs them in
// the process working directory.
type Git struct {
	Dir string
}

// CommandError carries the stderr of a failed git invocation; plain exec
// errors say "exit status 128" and nothing else.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// Configure prepares the checkout for committing as the given identity and
// rewrites the origin remote to authenticate with token. Runner checkouts are
// owned by a different uid than the container process, so the directory is
// also marked safe.
func (g *Git) Configure(ctx context.Context, name, email, token, repository, serverURL string) error {
	dir := g.Dir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}
	if _, err := g.run(ctx, "config", "--global", "--add", "safe.directory", dir); err != nil {
		return err
	}
	if _, err := g.run(ctx, "config", "user.name", name); err != nil {
		return err
	}
	if _, err := g.run(ctx, "config", "user.email", email); err != nil {
		return err
	}

	remote, err := authRemote(token, repository, serverURL)
	if err != nil {
		return err
	}
	_, err = g.run(ctx, "remote", "set-url", "origin", remote)
	return err
}

// authRemote builds an https remote URL with an x-access-token credential,
// the scheme GitHub documents for app and action tokens.
func authRemote(token, repository, serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", serverURL)
	}
	return fmt.Sprintf("https://x-access-token:%s@%s/%s.git", token, u.Host, repository), nil
}

// DefaultBranch reports the branch origin/HEAD points at, falling back to
// "main" when the checkout has no remote HEAD (e.g. shallow clones).
func (g *Git) DefaultBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err != nil {
		return "main", nil
	}
	return strings.TrimPrefix(out, "refs/remotes/origin/"), nil
}

// CurrentBranch reports the branch the checkout is on.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// CreateBranch fetches base from origin and checks out a new branch on top
// of it.
func (g *Git) CreateBranch(ctx context.Context, name, base string) error {
	if _, err := g.run(ctx, "fetch", "origin", base); err != nil {
		return err
	}
	_, err := g.run(ctx, "checkout", "-B", name, "origin/"+base)
	return err
}

// Checkout switches to an existing branch.
func (g *Git) Checkout(ctx context.Context, name string) error {
	_, err := g.run(ctx, "checkout", name)
	return err
}

// HasChanges reports whether the working tree differs from HEAD.
func (g *Git) HasChanges(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CommitAndPush stages the given files, commits them and pushes the branch to
// origin. It returns the SHA of the created commit.
func (g *Git) CommitAndPush(ctx context.Context, files []string, message, branch string) (string, error) {
	for _, f := range files {
		if _, err := g.run(ctx, "add", f); err != nil {
			return "", err
		}
	}
	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return "", err
	}
	sha, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	if _, err := g.run(ctx, "push", "-u", "origin", branch); err != nil {
		return "", err
	}
	return sha, nil
}
