package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrSatan/Code-Guardian/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Reviewer defines the dependency required to run the review commands.
type Reviewer interface {
	ReviewBranch(ctx context.Context, req review.BranchRequest) (review.Result, error)
	ReviewPullRequest(ctx context.Context, req review.PullRequestRequest) (review.Result, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer    Reviewer
	Args        Arguments
	DefaultBase string
	Version     string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "guardian",
		Short: "Diff-aware LLM review CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Run a review",
	}
	reviewCmd.AddCommand(branchCommand(deps.Reviewer, deps.DefaultBase))
	reviewCmd.AddCommand(prCommand(deps.Reviewer))
	root.AddCommand(reviewCmd)

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func branchCommand(reviewer Reviewer, defaultBase string) *cobra.Command {
	var baseRef string
	var targetRef string
	var includeUncommitted bool
	var detectTarget bool

	cmd := &cobra.Command{
		Use:   "branch [target]",
		Short: "Review a branch against a base reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				targetRef = args[0]
			}
			ctx := cmd.Context()
			if targetRef == "" && detectTarget {
				resolved, err := reviewer.CurrentBranch(ctx)
				if err != nil {
					return fmt.Errorf("detect target branch: %w", err)
				}
				targetRef = resolved
			}
			if targetRef == "" {
				return fmt.Errorf("target branch not specified; pass as an argument, use --target, or disable --detect-target")
			}

			result, err := reviewer.ReviewBranch(ctx, review.BranchRequest{
				BaseRef:            baseRef,
				TargetRef:          targetRef,
				IncludeUncommitted: includeUncommitted,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	if defaultBase == "" {
		defaultBase = "main"
	}
	cmd.Flags().StringVar(&baseRef, "base", defaultBase, "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target branch to review (overrides positional)")
	cmd.Flags().BoolVar(&includeUncommitted, "include-uncommitted", false, "Include uncommitted changes on the target branch")
	cmd.Flags().BoolVar(&detectTarget, "detect-target", true, "Automatically detect the checked out branch when no target is provided")

	return cmd
}

func prCommand(reviewer Reviewer) *cobra.Command {
	var post bool

	cmd := &cobra.Command{
		Use:   "pr <number>",
		Short: "Review a pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number <= 0 {
				return fmt.Errorf("pull request number must be a positive integer, got %q", args[0])
			}

			result, err := reviewer.ReviewPullRequest(cmd.Context(), review.PullRequestRequest{
				Number: number,
				Post:   post,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			if post {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Posted %d comments to PR #%d\n", result.Posted, number)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "Post accepted feedback to the pull request as review comments")

	return cmd
}

func printResult(out io.Writer, result review.Result) {
	_, _ = fmt.Fprintf(out, "Run %s: %d chunks analyzed, %d failed\n",
		result.RunID, result.Summary.ChunksTotal, result.Summary.ChunksFailed)
	_, _ = fmt.Fprintf(out, "Feedback: %d accepted, %d rejected\n",
		len(result.Accepted), len(result.Rejected))
	for _, item := range result.Accepted {
		_, _ = fmt.Fprintf(out, "  %s:%d %s\n", item.File, item.Line, item.Comment)
	}
	if result.ReportPath != "" {
		_, _ = fmt.Fprintf(out, "Report: %s\n", result.ReportPath)
	}
}
