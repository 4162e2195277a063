package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

var (
	filesJSON   bool
	filesOutput string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Inspect and manage stored files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files",
	Args:  cobra.NoArgs,
	RunE:  runFilesList,
}

var filesGetCmd = &cobra.Command{
	Use:   "get [fileName]",
	Short: "Write a stored file to disk or stdout",
	Long: `Copies a stored file out of docgate. Use --output to choose the
destination; "-" writes to stdout. Defaults to the file name in the
current directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilesGet,
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete [fileName]",
	Short: "Delete a stored file and its text",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesDelete,
}

func init() {
	filesListCmd.Flags().BoolVar(&filesJSON, "json", false, "output as JSON")
	filesGetCmd.Flags().StringVarP(&filesOutput, "output", "o", "", "destination path, - for stdout")
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesGetCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		listing, err := a.files.List(ctx)
		if err != nil {
			return fmt.Errorf("listing files: %w", err)
		}

		if filesJSON {
			files := listing.Files
			if files == nil {
				files = []string{}
			}
			data, err := json.MarshalIndent(files, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal files: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}

		if len(listing.Files) == 0 {
			cmd.Println("No files stored.")
		}
		for _, name := range listing.Files {
			cmd.Printf("  %s\n", name)
		}
		printOrphans(cmd, listing.OrphanedBlobs, listing.OrphanedRecords)
		if !listing.MetadataChecked {
			cmd.Println("Warning: metadata store unavailable, consistency not checked.")
		}
		return nil
	})
}

func printOrphans(cmd *cobra.Command, blobs, records []string) {
	if len(blobs) > 0 {
		cmd.Println()
		cmd.Println("Files without extracted text:")
		for _, name := range blobs {
			cmd.Printf("  %s\n", name)
		}
	}
	if len(records) > 0 {
		cmd.Println()
		cmd.Println("Text records without a file:")
		for _, name := range records {
			cmd.Printf("  %s\n", name)
		}
	}
}

func runFilesGet(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		rc, err := a.files.Open(ctx, name)
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()

		dest := filesOutput
		if dest == "" {
			dest = name
		}
		if dest == "-" {
			_, err := io.Copy(cmd.OutOrStdout(), rc)
			return err
		}

		return writeFileAtomic(dest, rc)
	})
}

// writeFileAtomic copies r to path through a temp file in the same directory.
func writeFileAtomic(path string, r io.Reader) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docgate-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

func runFilesDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		outcome, err := a.deletion.Delete(ctx, name)
		switch {
		case err == nil:
			cmd.Printf("Deleted %s\n", name)
			return nil
		case errors.Is(err, domain.ErrNotFound) && outcome.BlobDeleted:
			cmd.Printf("Deleted %s (it had no text record)\n", name)
			return nil
		case errors.Is(err, domain.ErrPartialDelete):
			return fmt.Errorf("file removed but its text record is stale: %w", err)
		default:
			return fmt.Errorf("deleting %s: %w", name, err)
		}
	})
}
