package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/creassist/internal/models"
)

var docsForce bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage knowledge base documents",
	Long: `List and manage the documents indexed in the knowledge base.

Subcommands:
  list    List indexed documents (default)
  add     Add text snippets as documents
  delete  Delete one document
  clear   Delete every document

Examples:
  creassist docs
  creassist docs add "Broadway vacancy rose to 12% in Q2"
  creassist docs delete 9b1e7d
  creassist docs clear --force`,
	RunE: runDocsList,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	RunE:  runDocsList,
}

var docsAddCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Add text snippets as documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := docSvc.AddText(context.Background(), args)
		if err != nil {
			return err
		}
		if msg != "" && verbose {
			fmt.Fprintln(stdout, msg)
		}
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return docSvc.Delete(context.Background(), args[0])
	},
}

var docsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document",
	Long: `Delete every document and chunk from the knowledge base.

Requires confirmation unless --force is used.`,
	RunE: runDocsClear,
}

func init() {
	docsClearCmd.Flags().BoolVarP(&docsForce, "force", "f", false, "skip confirmation")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsAddCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsClearCmd)
}

func runDocsList(cmd *cobra.Command, args []string) error {
	docs, err := docSvc.List(context.Background())
	if err != nil {
		return err
	}
	printDocuments(stdout, docs, time.Now())
	return nil
}

func runDocsClear(cmd *cobra.Command, args []string) error {
	if !docsForce && !confirm("About to delete every document in the knowledge base.") {
		fmt.Fprintln(stdout, "Cancelled.")
		return nil
	}
	return docSvc.Clear(context.Background())
}

// printDocuments renders the document list with totals.
func printDocuments(w io.Writer, docs []models.Document, now time.Time) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}

	var chunks int
	fmt.Fprintf(w, "Documents (%d):\n\n", len(docs))
	for _, d := range docs {
		chunks += d.ChunkCount
		uploaded := "unknown"
		if !d.UploadDate.IsZero() {
			uploaded = humanize.RelTime(d.UploadDate.Time, now, "ago", "from now")
		}
		fmt.Fprintf(w, "- %s [%s]\n", d.Filename, d.ID)
		fmt.Fprintf(w, "  %s · %s chunks · uploaded %s\n",
			humanize.Bytes(uint64(max(d.FileSize, 0))), humanize.Comma(int64(d.ChunkCount)), uploaded)
	}
	fmt.Fprintf(w, "\nTotal: %s documents, %s chunks\n", humanize.Comma(int64(len(docs))), humanize.Comma(int64(chunks)))
}
