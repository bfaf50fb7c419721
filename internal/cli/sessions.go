package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/creassist/internal/models"
)

var (
	sessionsFilter    string
	sessionsForce     bool
	sessionsExportDir string
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"history"},
	Short:   "Manage saved chat sessions",
	Long: `List and manage the chat sessions saved for the signed-in user.

Subcommands:
  list     List sessions (default)
  show     Print a session's messages
  new      Create an empty session
  rename   Change a session's title
  delete   Delete a session
  export   Save a session transcript as a text file

Examples:
  creassist sessions
  creassist sessions --filter broadway
  creassist sessions show 3f2a9c
  creassist sessions rename 3f2a9c "Broadway comps"
  creassist sessions delete 3f2a9c --force
  creassist sessions export 3f2a9c --dir ~/Downloads`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create an empty session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsNew,
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Change a session's title",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsRename,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Long: `Delete a saved session and its messages.

Requires confirmation unless --force is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsDelete,
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Save a session transcript as a text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsExport,
}

func init() {
	sessionsCmd.Flags().StringVarP(&sessionsFilter, "filter", "f", "", "only titles containing this text")
	sessionsListCmd.Flags().StringVarP(&sessionsFilter, "filter", "f", "", "only titles containing this text")
	sessionsDeleteCmd.Flags().BoolVar(&sessionsForce, "force", false, "skip confirmation")
	sessionsExportCmd.Flags().StringVarP(&sessionsExportDir, "dir", "d", ".", "directory to write the transcript to")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor, err := requireUser()
	if err != nil {
		return err
	}

	if _, err := sessions.Refresh(ctx, actor); err != nil {
		return err
	}
	printSessions(stdout, sessions.Filter(sessionsFilter), time.Now())
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor, err := requireUser()
	if err != nil {
		return err
	}

	s, err := sessions.Select(ctx, actor, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s (%s)\n", s.Title, s.ID)
	fmt.Fprintf(stdout, "Updated %s · %d messages\n\n", s.UpdatedAt.Format(time.DateTime), len(s.Messages))
	for _, msg := range s.Messages {
		fmt.Fprintf(stdout, "[%s] %s: %s\n", msg.Timestamp.Format(time.Kitchen), msg.Role, msg.Content)
	}
	return nil
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor, err := requireUser()
	if err != nil {
		return err
	}

	title := ""
	if len(args) == 1 {
		title = args[0]
	}
	created, err := sessions.Create(ctx, actor, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created: %s (%s)\n", created.Title, created.ID)
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor, err := requireUser()
	if err != nil {
		return err
	}

	// Rename works on sessions the manager knows about.
	if _, err := sessions.Refresh(ctx, actor); err != nil {
		return err
	}
	return sessions.Rename(ctx, args[0], args[1])
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor, err := requireUser()
	if err != nil {
		return err
	}

	if _, err := sessions.Refresh(ctx, actor); err != nil {
		return err
	}

	deleted, err := sessions.Delete(ctx, args[0], func(s models.SessionSummary) bool {
		if sessionsForce {
			return true
		}
		return confirm(fmt.Sprintf("About to delete: %s (%s)", s.Title, s.ID))
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(stdout, "Cancelled.")
	}
	return nil
}

func runSessionsExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	actor, err := requireUser()
	if err != nil {
		return err
	}

	if _, err := sessions.Select(ctx, actor, args[0]); err != nil {
		return err
	}
	if err := os.MkdirAll(sessionsExportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	path, err := sessions.Export(sessionsExportDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %s\n", path)
	return nil
}
