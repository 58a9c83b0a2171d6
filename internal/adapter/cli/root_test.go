package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/MrSatan/Code-Guardian/internal/adapter/cli"
	"github.com/MrSatan/Code-Guardian/internal/domain"
	"github.com/MrSatan/Code-Guardian/internal/usecase/review"
)

type reviewerStub struct {
	branchReq review.BranchRequest
	prReq     review.PullRequestRequest
	result    review.Result
	err       error
	current   string
}

func (s *reviewerStub) ReviewBranch(ctx context.Context, req review.BranchRequest) (review.Result, error) {
	s.branchReq = req
	return s.result, s.err
}

func (s *reviewerStub) ReviewPullRequest(ctx context.Context, req review.PullRequestRequest) (review.Result, error) {
	s.prReq = req
	return s.result, s.err
}

func (s *reviewerStub) CurrentBranch(ctx context.Context) (string, error) {
	if s.current == "" {
		return "", errors.New("no branch")
	}
	return s.current, nil
}

func TestReviewBranchCommandInvokesUseCase(t *testing.T) {
	stub := &reviewerStub{}
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: stub,
		Args:     cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
		Version:  "v1.2.3",
	})

	root.SetArgs([]string{"review", "branch", "feature", "--base", "master", "--include-uncommitted"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.branchReq.TargetRef != "feature" {
		t.Fatalf("expected target ref feature, got %s", stub.branchReq.TargetRef)
	}
	if stub.branchReq.BaseRef != "master" {
		t.Fatalf("expected base ref master, got %s", stub.branchReq.BaseRef)
	}
	if !stub.branchReq.IncludeUncommitted {
		t.Fatalf("expected include uncommitted to be true")
	}
}

func TestReviewBranchCommandDetectsTarget(t *testing.T) {
	stub := &reviewerStub{current: "detected"}
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: stub,
		Args:     cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "branch", "--base", "master"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.branchReq.TargetRef != "detected" {
		t.Fatalf("expected target ref detected, got %s", stub.branchReq.TargetRef)
	}
}

func TestReviewBranchCommandUsesConfiguredDefaultBase(t *testing.T) {
	stub := &reviewerStub{current: "feature"}
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer:    stub,
		Args:        cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
		DefaultBase: "develop",
	})

	root.SetArgs([]string{"review", "branch"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.branchReq.BaseRef != "develop" {
		t.Fatalf("expected base ref develop, got %s", stub.branchReq.BaseRef)
	}
}

func TestReviewBranchCommandRequiresTarget(t *testing.T) {
	stub := &reviewerStub{}
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: stub,
		Args:     cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "branch", "--detect-target=false"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error when target branch is missing")
	}
}

func TestReviewPRCommand(t *testing.T) {
	stub := &reviewerStub{
		result: review.Result{
			RunID:   "run-1",
			Summary: domain.RunSummary{ChunksTotal: 2},
			Accepted: []domain.Feedback{
				{File: "src/app.py", Line: 11, Comment: "check error handling"},
			},
			Posted: 1,
		},
	}
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: stub,
		Args:     cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "pr", "42", "--post"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.prReq.Number != 42 {
		t.Fatalf("expected PR number 42, got %d", stub.prReq.Number)
	}
	if !stub.prReq.Post {
		t.Fatal("expected post to be enabled")
	}
	if !strings.Contains(out.String(), "src/app.py:11") {
		t.Fatalf("expected feedback in output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Posted 1 comments to PR #42") {
		t.Fatalf("expected post confirmation, got %q", out.String())
	}
}

func TestReviewPRCommandRejectsBadNumber(t *testing.T) {
	stub := &reviewerStub{}
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: stub,
		Args:     cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "pr", "zero"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for non-numeric PR number")
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: &reviewerStub{},
		Args:     cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
		Version:  "v1.2.3",
	})

	root.SetArgs([]string{"--version"})
	err := root.Execute()
	if !errors.Is(err, cli.ErrVersionRequested) {
		t.Fatalf("expected ErrVersionRequested, got %v", err)
	}
	if !strings.Contains(out.String(), "v1.2.3") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}
