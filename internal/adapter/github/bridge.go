package github

import (
	"context"

	"github.com/MrSatan/Code-Guardian/internal/domain"
	"github.com/MrSatan/Code-Guardian/internal/usecase/review"
)

// Bridge adapts Client to the review.GitHubGateway interface.
type Bridge struct {
	client *Client
}

// NewBridge creates a new gateway adapter around a Client.
func NewBridge(client *Client) *Bridge {
	return &Bridge{client: client}
}

// FetchDiff returns the unified diff text for a pull request.
func (b *Bridge) FetchDiff(ctx context.Context, prNumber int) (string, error) {
	return b.client.FetchDiff(ctx, prNumber)
}

// HeadSHA returns the head commit SHA of a pull request.
func (b *Bridge) HeadSHA(ctx context.Context, prNumber int) (string, error) {
	return b.client.HeadSHA(ctx, prNumber)
}

// PostReview posts accepted feedback as review comments.
func (b *Bridge) PostReview(ctx context.Context, prNumber int, commitSHA, summary string, items []domain.Feedback) (review.PostOutcome, error) {
	result, err := b.client.PostReview(ctx, prNumber, commitSHA, summary, items)
	if result == nil {
		return review.PostOutcome{}, err
	}
	return review.PostOutcome{
		ReviewID: result.ReviewID,
		Posted:   result.Posted,
		Failed:   result.Failed,
	}, err
}
