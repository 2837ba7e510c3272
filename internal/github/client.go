// Package github is a thin client for linked pull request submission. It
// consumes the structured stack values produced by the core; token and
// remote discovery are deliberately simple (env token, origin URL parsing).
package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// PullRequestInfo is the subset of PR state the CLI reports.
type PullRequestInfo struct {
	Number int
	URL    string
	State  string
	Base   string
	Head   string
}

// Client wraps the GitHub API for one repository.
type Client struct {
	api   *github.Client
	owner string
	repo  string
}

// NewClient creates a client for the repository identified by remoteURL
// (origin). The token comes from GITHUB_TOKEN or GH_TOKEN.
func NewClient(ctx context.Context, remoteURL string) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no GitHub token found; set GITHUB_TOKEN")
	}

	owner, repo, err := parseRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return &Client{
		api:   github.NewClient(httpClient),
		owner: owner,
		repo:  repo,
	}, nil
}

// parseRemoteURL extracts owner/repo from https or ssh GitHub remote URLs.
func parseRemoteURL(remoteURL string) (string, string, error) {
	url := strings.TrimSuffix(remoteURL, ".git")
	switch {
	case strings.HasPrefix(url, "git@"):
		// git@github.com:owner/repo
		_, path, found := strings.Cut(url, ":")
		if !found {
			return "", "", fmt.Errorf("unrecognized remote URL: %s", remoteURL)
		}
		url = path
	case strings.Contains(url, "://"):
		// https://github.com/owner/repo
		parts := strings.SplitN(url, "/", 4)
		if len(parts) < 4 {
			return "", "", fmt.Errorf("unrecognized remote URL: %s", remoteURL)
		}
		url = parts[3]
	}

	owner, repo, found := strings.Cut(url, "/")
	if !found || owner == "" || repo == "" {
		return "", "", fmt.Errorf("unrecognized remote URL: %s", remoteURL)
	}
	return owner, repo, nil
}

// FindPullRequest returns the open PR for a head branch, or nil.
func (c *Client) FindPullRequest(ctx context.Context, head string) (*PullRequestInfo, error) {
	prs, _, err := c.api.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:  c.owner + ":" + head,
		State: "open",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return toPullRequestInfo(prs[0]), nil
}

// CreatePullRequest opens a PR for head targeting base.
func (c *Client) CreatePullRequest(ctx context.Context, head, base, title, body string) (*PullRequestInfo, error) {
	pr, _, err := c.api.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(base),
		Body:  github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return toPullRequestInfo(pr), nil
}

// UpdatePullRequestBase retargets an existing PR, keeping linked PRs
// pointed at their stack parent after restacks.
func (c *Client) UpdatePullRequestBase(ctx context.Context, number int, base string) error {
	_, _, err := c.api.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
		Base: &github.PullRequestBranch{Ref: github.String(base)},
	})
	if err != nil {
		return fmt.Errorf("failed to update pull request %d: %w", number, err)
	}
	return nil
}

func toPullRequestInfo(pr *github.PullRequest) *PullRequestInfo {
	info := &PullRequestInfo{}
	if pr.Number != nil {
		info.Number = *pr.Number
	}
	if pr.HTMLURL != nil {
		info.URL = *pr.HTMLURL
	}
	if pr.State != nil {
		info.State = *pr.State
	}
	if pr.Base != nil && pr.Base.Ref != nil {
		info.Base = *pr.Base.Ref
	}
	if pr.Head != nil && pr.Head.Ref != nil {
		info.Head = *pr.Head.Ref
	}
	return info
}
