// Package review is the top-level use case: it turns a diff source into
// validated, reportable feedback by running the split, plan, analyze,
// and validate pipeline end to end.
package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/MrSatan/Code-Guardian/internal/diff"
	"github.com/MrSatan/Code-Guardian/internal/domain"
	"github.com/MrSatan/Code-Guardian/internal/usecase/analyze"
	"github.com/MrSatan/Code-Guardian/internal/usecase/chunk"
	"github.com/MrSatan/Code-Guardian/internal/usecase/validate"
)

// GitEngine abstracts the local diff source.
type GitEngine interface {
	// Diff returns unified diff text between two refs.
	Diff(ctx context.Context, baseRef, targetRef string, includeUncommitted bool) (string, error)

	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)
}

// PostOutcome reports what happened when feedback was posted to a pull
// request.
type PostOutcome struct {
	ReviewID int64
	Posted   int
	Failed   []domain.Feedback
}

// GitHubGateway abstracts the pull request host: diff retrieval and
// review posting.
type GitHubGateway interface {
	FetchDiff(ctx context.Context, prNumber int) (string, error)
	HeadSHA(ctx context.Context, prNumber int) (string, error)
	PostReview(ctx context.Context, prNumber int, commitSHA, summary string, items []domain.Feedback) (PostOutcome, error)
}

// StoreRun represents a review run for persistence.
type StoreRun struct {
	RunID       string
	Timestamp   time.Time
	Repository  string
	BaseRef     string
	TargetRef   string
	PRNumber    int
	Provider    string
	Model       string
	ChunksTotal int
}

// Store defines the outbound port for persisting run history.
type Store interface {
	CreateRun(ctx context.Context, run StoreRun) error
	UpdateRunCounts(ctx context.Context, runID string, accepted, rejected, failedChunks int) error
	SaveFeedback(ctx context.Context, runID string, items []domain.Feedback) error
	SaveRejections(ctx context.Context, runID string, items []domain.Rejection) error
}

// ReportArtifact encapsulates the report generation inputs.
type ReportArtifact struct {
	OutputDir  string
	Repository string
	BaseRef    string
	TargetRef  string
	Provider   string
	Model      string
	Summary    domain.RunSummary
	Accepted   []domain.Feedback
	Rejected   []domain.Rejection
	Failures   []domain.ChunkFailure
}

// MarkdownWriter persists run output to disk.
type MarkdownWriter interface {
	Write(ctx context.Context, artifact ReportArtifact) (string, error)
}

// Dependencies captures the collaborators for the review service. Git,
// GitHub, Store, and Markdown are optional; the service degrades to
// whatever is wired.
type Dependencies struct {
	Analyzer analyze.Analyzer
	Logger   analyze.Logger
	Git      GitEngine
	GitHub   GitHubGateway
	Store    Store
	Markdown MarkdownWriter

	Thresholds  chunk.Thresholds
	Merge       chunk.MergeConfig
	Concurrency int
	Validation  validate.Options

	Provider   string
	Model      string
	Repository string
	OutputDir  string

	Now func() time.Time
}

// Service runs reviews end to end.
type Service struct {
	deps Dependencies
}

// NewService constructs a review service.
func NewService(deps Dependencies) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// BranchRequest describes a local review of target against base.
type BranchRequest struct {
	BaseRef            string
	TargetRef          string
	IncludeUncommitted bool
}

// PullRequestRequest describes a review of a hosted pull request.
type PullRequestRequest struct {
	Number int
	// Post uploads accepted feedback back to the pull request.
	Post bool
}

// Result aggregates everything one run produced.
type Result struct {
	RunID      string
	Summary    domain.RunSummary
	Accepted   []domain.Feedback
	Rejected   []domain.Rejection
	Failures   []domain.ChunkFailure
	ReportPath string
	Posted     int
}

type runScope struct {
	BaseRef   string
	TargetRef string
	PRNumber  int
}

// CurrentBranch resolves the checked-out branch of the local repository.
func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	if s.deps.Git == nil {
		return "", fmt.Errorf("local git source not configured")
	}
	return s.deps.Git.CurrentBranch(ctx)
}

// ReviewBranch reviews a local branch against a base reference.
func (s *Service) ReviewBranch(ctx context.Context, req BranchRequest) (Result, error) {
	if s.deps.Git == nil {
		return Result{}, fmt.Errorf("local git source not configured")
	}

	diffText, err := s.deps.Git.Diff(ctx, req.BaseRef, req.TargetRef, req.IncludeUncommitted)
	if err != nil {
		return Result{}, fmt.Errorf("compute diff: %w", err)
	}

	return s.run(ctx, diffText, runScope{BaseRef: req.BaseRef, TargetRef: req.TargetRef})
}

// ReviewPullRequest reviews a hosted pull request and optionally posts
// the accepted feedback back as review comments.
func (s *Service) ReviewPullRequest(ctx context.Context, req PullRequestRequest) (Result, error) {
	if s.deps.GitHub == nil {
		return Result{}, fmt.Errorf("github gateway not configured")
	}

	diffText, err := s.deps.GitHub.FetchDiff(ctx, req.Number)
	if err != nil {
		return Result{}, fmt.Errorf("fetch pull request diff: %w", err)
	}

	scope := runScope{
		BaseRef:   fmt.Sprintf("pr-%d-base", req.Number),
		TargetRef: fmt.Sprintf("pr-%d", req.Number),
		PRNumber:  req.Number,
	}
	result, err := s.run(ctx, diffText, scope)
	if err != nil {
		return result, err
	}

	if !req.Post {
		return result, nil
	}
	if len(result.Accepted) == 0 {
		s.logInfo(ctx, "no accepted feedback; skipping review post", map[string]interface{}{
			"runID": result.RunID,
		})
		return result, nil
	}

	sha, err := s.deps.GitHub.HeadSHA(ctx, req.Number)
	if err != nil {
		return result, fmt.Errorf("resolve head commit: %w", err)
	}

	outcome, err := s.deps.GitHub.PostReview(ctx, req.Number, sha, buildPostSummary(result.Summary), result.Accepted)
	if err != nil {
		return result, fmt.Errorf("post review: %w", err)
	}
	result.Posted = outcome.Posted
	if len(outcome.Failed) > 0 {
		s.logWarning(ctx, "some review comments failed to post", map[string]interface{}{
			"runID":  result.RunID,
			"failed": len(outcome.Failed),
		})
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, diffText string, scope runScope) (Result, error) {
	now := s.deps.Now()
	runID := generateRunID(now, scope.BaseRef, scope.TargetRef)

	files := diff.Split(diffText)
	if len(files) == 0 {
		s.logInfo(ctx, "diff contains no file segments", map[string]interface{}{"runID": runID})
		return Result{
			RunID:   runID,
			Summary: domain.RunSummary{RunID: runID, Repository: s.deps.Repository, PRNumber: scope.PRNumber},
		}, nil
	}

	chunks := chunk.Plan(files, s.deps.Thresholds, s.deps.Merge)
	s.logInfo(ctx, "chunk plan ready", map[string]interface{}{
		"runID":  runID,
		"files":  len(files),
		"chunks": len(chunks),
	})

	orchestrator := analyze.NewOrchestrator(s.deps.Analyzer, s.deps.Logger, s.deps.Concurrency)
	feedback, failures := orchestrator.Analyze(ctx, chunks)

	index := diff.BuildValidationIndex(files)
	report := validate.Validate(feedback, index, s.deps.Validation)

	summary := domain.RunSummary{
		RunID:        runID,
		Repository:   s.deps.Repository,
		PRNumber:     scope.PRNumber,
		ChunksTotal:  len(chunks),
		ChunksFailed: len(failures),
		Accepted:     len(report.Accepted),
		Rejected:     len(report.Rejected),
	}

	s.persist(ctx, runID, now, scope, summary, report)

	result := Result{
		RunID:    runID,
		Summary:  summary,
		Accepted: report.Accepted,
		Rejected: report.Rejected,
		Failures: failures,
	}
	result.ReportPath = s.writeReport(ctx, scope, result)
	return result, nil
}

// persist saves the run. Persistence failures degrade to warnings; the
// review output is already in hand and must not be lost to a storage
// problem.
func (s *Service) persist(ctx context.Context, runID string, now time.Time, scope runScope, summary domain.RunSummary, report validate.Report) {
	if s.deps.Store == nil {
		return
	}

	run := StoreRun{
		RunID:       runID,
		Timestamp:   now,
		Repository:  s.deps.Repository,
		BaseRef:     scope.BaseRef,
		TargetRef:   scope.TargetRef,
		PRNumber:    scope.PRNumber,
		Provider:    s.deps.Provider,
		Model:       s.deps.Model,
		ChunksTotal: summary.ChunksTotal,
	}
	if err := s.deps.Store.CreateRun(ctx, run); err != nil {
		s.logWarning(ctx, "failed to save run", map[string]interface{}{"runID": runID, "error": err.Error()})
		return
	}
	if err := s.deps.Store.SaveFeedback(ctx, runID, report.Accepted); err != nil {
		s.logWarning(ctx, "failed to save feedback", map[string]interface{}{"runID": runID, "error": err.Error()})
	}
	if err := s.deps.Store.SaveRejections(ctx, runID, report.Rejected); err != nil {
		s.logWarning(ctx, "failed to save rejections", map[string]interface{}{"runID": runID, "error": err.Error()})
	}
	if err := s.deps.Store.UpdateRunCounts(ctx, runID, summary.Accepted, summary.Rejected, summary.ChunksFailed); err != nil {
		s.logWarning(ctx, "failed to update run counts", map[string]interface{}{"runID": runID, "error": err.Error()})
	}
}

func (s *Service) writeReport(ctx context.Context, scope runScope, result Result) string {
	if s.deps.Markdown == nil {
		return ""
	}

	path, err := s.deps.Markdown.Write(ctx, ReportArtifact{
		OutputDir:  s.deps.OutputDir,
		Repository: s.deps.Repository,
		BaseRef:    scope.BaseRef,
		TargetRef:  scope.TargetRef,
		Provider:   s.deps.Provider,
		Model:      s.deps.Model,
		Summary:    result.Summary,
		Accepted:   result.Accepted,
		Rejected:   result.Rejected,
		Failures:   result.Failures,
	})
	if err != nil {
		s.logWarning(ctx, "failed to write report", map[string]interface{}{
			"runID": result.RunID,
			"error": err.Error(),
		})
		return ""
	}
	return path
}

func (s *Service) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func (s *Service) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogWarning(ctx, message, fields)
	}
}

// generateRunID creates a unique, time-ordered run ID.
func generateRunID(timestamp time.Time, baseRef, targetRef string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%s|%d", baseRef, targetRef, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

func buildPostSummary(summary domain.RunSummary) string {
	return fmt.Sprintf("Automated review: %d comments across %d chunks (%d rejected by validation, %d chunks failed).",
		summary.Accepted, summary.ChunksTotal, summary.Rejected, summary.ChunksFailed)
}
