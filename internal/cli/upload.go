package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/service"
	"github.com/raphaelgruber/creassist/internal/upload"
)

var uploadRecursive bool

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload documents to the knowledge base",
	Long: `Upload PDF, CSV, JSON and text files so the assistant can search them.

Directories are scanned for supported files; use -r to include subdirectories.
All files go up in one request and the backend reports aggregate counts.

Examples:
  creassist upload leases.pdf rent_roll.csv
  creassist upload ./market-reports -r`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "scan directories recursively")
}

func runUpload(cmd *cobra.Command, args []string) error {
	paths, err := expandPaths(args, uploadRecursive)
	if err != nil {
		return err
	}

	work := func(ctx context.Context) (*models.UploadResult, error) {
		return docSvc.Upload(ctx, paths)
	}

	if len(paths) > 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := RunUploadProgress(len(paths), work)
		return err
	}

	var result *models.UploadResult
	err = upload.Track(context.Background(), upload.NewRamp(), upload.TickInterval, nil, func(ctx context.Context) error {
		var err error
		result, err = work(ctx)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Files processed: %d\nChunks added:    %d\n", result.FilesProcessed, result.ChunksAdded)
	return nil
}

// expandPaths replaces directories with the supported files inside them.
func expandPaths(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := service.CollectFiles(arg, recursive)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}
