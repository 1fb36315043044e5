package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/mybitbucket/internal/adapter/driven/bitbucket"
	"github.com/ericfisherdev/mybitbucket/internal/application"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// ExitRecordErrors is the exit status of get when the record carries errors.
const ExitRecordErrors = 2

// getter runs one lookup and returns the record to print.
type getter func(ctx context.Context, svc *application.LookupService, args []string) (any, bool, error)

func newGetCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up one record and print it as JSON",
		Long: "Look up one record and print its flat JSON form. When Bitbucket reports errors " +
			"the record is still printed and the command exits with status 2.",
	}

	var tree bool

	add := func(use, short string, nargs int, fn getter) *cobra.Command {
		sub := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGet(cmd, opts, args, fn)
			},
		}
		cmd.AddCommand(sub)
		return sub
	}

	add("project KEY", "Get a project", 1, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		v, err := svc.Project(ctx, a[0])
		return v, v.HasErrors(), err
	})
	add("repo KEY SLUG", "Get a repository", 2, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		v, err := svc.Repository(ctx, a[0], a[1])
		return v, v.HasErrors(), err
	})
	add("branch KEY SLUG", "Get a repository's default branch", 2, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		v, err := svc.DefaultBranch(ctx, a[0], a[1])
		return v, v.HasErrors(), err
	})
	add("tag KEY SLUG NAME", "Get a tag", 3, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		v, err := svc.Tag(ctx, a[0], a[1], a[2])
		return v, v.HasErrors(), err
	})
	add("pr KEY SLUG ID", "Get a pull request", 3, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		id, err := parseID("pull request ID", a[2])
		if err != nil {
			return nil, false, err
		}
		v, err := svc.PullRequest(ctx, a[0], a[1], id)
		return v, v.HasErrors(), err
	})
	add("merge KEY SLUG ID", "Check whether a pull request can be merged", 3, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		id, err := parseID("pull request ID", a[2])
		if err != nil {
			return nil, false, err
		}
		v, err := svc.MergeStatus(ctx, a[0], a[1], id)
		return v, v.HasErrors(), err
	})
	comment := add("comment KEY SLUG ID COMMENT_ID", "Get a pull request comment", 4, func(ctx context.Context, svc *application.LookupService, a []string) (any, bool, error) {
		id, err := parseID("pull request ID", a[2])
		if err != nil {
			return nil, false, err
		}
		commentID, err := parseID("comment ID", a[3])
		if err != nil {
			return nil, false, err
		}
		v, err := svc.Comment(ctx, a[0], a[1], id, commentID)
		if err != nil || !tree || v.HasErrors() {
			return v, v.HasErrors(), err
		}
		return threadOutline(v), false, nil
	})
	comment.Flags().BoolVar(&tree, "tree", false, "Print the reply thread as an indented outline")

	return cmd
}

func runGet(cmd *cobra.Command, opts *options, args []string, fn getter) error {
	client, err := bitbucket.NewClient(bitbucket.Config{
		BaseURL: opts.cfg.Bitbucket.BaseURL,
		Token:   opts.cfg.Bitbucket.Token,
		Timeout: opts.cfg.Bitbucket.Timeout,
	})
	if err != nil {
		return err
	}

	svc := application.NewLookupService(client, nil, nil)

	record, hasErrors, err := fn(cmd.Context(), svc, args)
	if err != nil {
		return err
	}

	if err := printRecord(cmd.OutOrStdout(), record); err != nil {
		return err
	}

	if hasErrors {
		return &ExitError{Code: ExitRecordErrors, Err: fmt.Errorf("bitbucket reported errors for %s", cmd.Name())}
	}
	return nil
}

func printRecord(w io.Writer, record any) error {
	if s, ok := record.(string); ok {
		_, err := io.WriteString(w, s)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return nil
}

// threadOutline renders a comment and its replies one per line, indented by
// depth. Comments changed after they were posted are marked as edited.
func threadOutline(root model.PullRequestComment) string {
	var b strings.Builder
	application.WalkComments(root, func(c model.PullRequestComment, depth int) bool {
		author := "unknown"
		if c.Author != nil {
			author = c.Author.GetName()
		}
		edited := ""
		if c.UpdatedAt().After(c.CreatedAt()) {
			edited = " (edited)"
		}
		fmt.Fprintf(&b, "%s#%d %s%s: %s\n",
			strings.Repeat("  ", depth), c.GetID(), author, edited, firstLine(c.GetText()))
		return true
	})
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func parseID(what, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}
