// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

// Package gh wraps the pieces of the GitHub API the action needs: opening
// pull requests, decorating them with labels and reviewers, and enabling
// auto-merge. Auto-merge only exists in the GraphQL API, so the client speaks
// both protocols.
package gh

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v59/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Client talks to one GitHub instance, github.com or an enterprise server.
type Client struct {
	rest *github.Client
	gql  *githubv4.Client
}

// NewClient returns a client authenticated with token. apiURL and graphqlURL
// select the instance; pass the empty string for github.com.
func NewClient(ctx context.Context, token, apiURL, graphqlURL string) (*Client, error) {
	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	rest := github.NewClient(hc)
	if apiURL != "" {
		var err error
		rest, err = rest.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("enterprise api url %q: %w", apiURL, err)
		}
	}

	gql := githubv4.NewClient(hc)
	if graphqlURL != "" {
		gql = githubv4.NewEnterpriseClient(graphqlURL, hc)
	}

	return &Client{rest: rest, gql: gql}, nil
}

// PullRequest identifies a pull request across both API flavors: Number and
// URL for humans and REST calls, NodeID for GraphQL mutations.
type PullRequest struct {
	Number int
	URL    string
	NodeID string
}

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (*PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(head),
		Base:  github.String(base),
	})
	if err != nil {
		return nil, fmt.Errorf("create pull request %s -> %s: %w", head, base, err)
	}
	return &PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
		NodeID: pr.GetNodeID(),
	}, nil
}

// AddLabels attaches labels to a pull request, creating missing ones with
// default colors.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := c.rest.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return fmt.Errorf("add labels to #%d: %w", number, err)
	}
	return nil
}

// RequestReviewers asks the given users for review.
func (c *Client) RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error {
	_, _, err := c.rest.PullRequests.RequestReviewers(ctx, owner, repo, number, github.ReviewersRequest{
		Reviewers: reviewers,
	})
	if err != nil {
		return fmt.Errorf("request reviewers for #%d: %w", number, err)
	}
	return nil
}

// EnableAutoMerge turns on auto-merge for a pull request. method is one of
// MERGE, SQUASH or REBASE. The repository must have auto-merge allowed in its
// settings or GitHub rejects the mutation.
func (c *Client) EnableAutoMerge(ctx context.Context, nodeID, method string) error {
	var m struct {
		EnablePullRequestAutoMerge struct {
			PullRequest struct {
				Number githubv4.Int
			}
		} `graphql:"enablePullRequestAutoMerge(input: $input)"`
	}
	mergeMethod := githubv4.PullRequestMergeMethod(strings.ToUpper(method))
	input := githubv4.EnablePullRequestAutoMergeInput{
		PullRequestID: githubv4.ID(nodeID),
		MergeMethod:   &mergeMethod,
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("enable auto-merge: %w", err)
	}
	return nil
}
