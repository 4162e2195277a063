package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadName string

var uploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Store a file and extract its text",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "stored file name (default: base name of path)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	name := uploadName
	if name == "" {
		name = filepath.Base(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		record, err := a.ingest.Ingest(ctx, name, f)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		cmd.Printf("Uploaded %s (%d bytes, %d characters of text)\n", record.Filename, record.Size, len(record.Text))
		return nil
	})
}
