package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v63/github"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// Client wraps the GitHub API for pull request diff retrieval and review
// posting.
type Client struct {
	owner  string
	repo   string
	client *github.Client
}

// NewClient creates a GitHub client for the given repository. The token
// should be a personal access token or GITHUB_TOKEN from Actions.
func NewClient(owner, repo, token string) *Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Client{
		owner:  owner,
		repo:   repo,
		client: client,
	}
}

// SetBaseURL points the client at a custom API endpoint (GitHub Enterprise,
// tests). The URL must be parseable; a trailing slash is added if missing.
func (c *Client) SetBaseURL(base string) error {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}
	c.client.BaseURL = parsed
	return nil
}

// FetchDiff returns the unified diff text for a pull request.
func (c *Client) FetchDiff(ctx context.Context, prNumber int) (string, error) {
	raw, res, err := c.client.PullRequests.GetRaw(ctx, c.owner, c.repo, prNumber,
		github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("fetch diff for PR #%d: %w", prNumber, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	return raw, nil
}

// HeadSHA returns the head commit SHA of a pull request, used to anchor
// review comments.
func (c *Client) HeadSHA(ctx context.Context, prNumber int) (string, error) {
	pull, res, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, prNumber)
	if err != nil {
		return "", fmt.Errorf("fetch PR #%d: %w", prNumber, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if pull.Head == nil || pull.Head.SHA == nil {
		return "", fmt.Errorf("PR #%d has no head commit", prNumber)
	}
	return pull.Head.GetSHA(), nil
}

// FetchFileAtCommit returns the content of a file at a specific commit.
// The second return is false when the file does not exist at that commit.
func (c *Client) FetchFileAtCommit(ctx context.Context, path, commitSHA string) (string, bool, error) {
	content, _, res, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: commitSHA})
	if err != nil {
		if res != nil && res.StatusCode == 404 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetch %s at %s: %w", path, commitSHA, err)
	}
	if content == nil {
		return "", false, fmt.Errorf("fetch %s at %s: path is a directory", path, commitSHA)
	}
	text, err := content.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("decode %s at %s: %w", path, commitSHA, err)
	}
	return text, true, nil
}

// PostResult reports what happened when feedback was posted to a pull
// request.
type PostResult struct {
	ReviewID int64
	Posted   int
	Failed   []domain.Feedback
}

// PostReview posts accepted feedback as a single pull request review with
// line-anchored comments. If the batch review is rejected it falls back to
// posting comments one at a time so a single bad anchor does not lose the
// whole batch.
func (c *Client) PostReview(ctx context.Context, prNumber int, commitSHA, summary string, items []domain.Feedback) (*PostResult, error) {
	comments := buildReviewComments(items)

	review := &github.PullRequestReviewRequest{
		CommitID: github.String(commitSHA),
		Body:     github.String(summary),
		Event:    github.String("COMMENT"),
		Comments: comments,
	}

	created, res, err := c.client.PullRequests.CreateReview(ctx, c.owner, c.repo, prNumber, review)
	if err == nil {
		defer func() {
			_ = res.Body.Close()
		}()
		return &PostResult{ReviewID: created.GetID(), Posted: len(comments)}, nil
	}

	return c.postIndividually(ctx, prNumber, commitSHA, items)
}

// postIndividually posts each comment on its own, collecting failures
// instead of aborting on the first one.
func (c *Client) postIndividually(ctx context.Context, prNumber int, commitSHA string, items []domain.Feedback) (*PostResult, error) {
	result := &PostResult{}
	for _, item := range items {
		comment := &github.PullRequestComment{
			CommitID: github.String(commitSHA),
			Path:     github.String(item.File),
			Line:     github.Int(item.Line),
			Side:     github.String("RIGHT"),
			Body:     github.String(item.Comment),
		}
		_, res, err := c.client.PullRequests.CreateComment(ctx, c.owner, c.repo, prNumber, comment)
		if err != nil {
			result.Failed = append(result.Failed, item)
			continue
		}
		_ = res.Body.Close()
		result.Posted++
	}
	if result.Posted == 0 && len(result.Failed) > 0 {
		return result, fmt.Errorf("all %d review comments failed to post", len(result.Failed))
	}
	return result, nil
}

// buildReviewComments maps feedback to GitHub draft review comments,
// anchored to new-file line numbers on the added side of the diff.
func buildReviewComments(items []domain.Feedback) []*github.DraftReviewComment {
	comments := make([]*github.DraftReviewComment, 0, len(items))
	for _, item := range items {
		comments = append(comments, &github.DraftReviewComment{
			Path: github.String(item.File),
			Line: github.Int(item.Line),
			Side: github.String("RIGHT"),
			Body: github.String(item.Comment),
		})
	}
	return comments
}
