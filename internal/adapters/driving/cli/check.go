package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

var (
	checkVerify bool
	checkJSON   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report files and text records that are out of step",
	Long: `Compares the blob store with the metadata store and reports files
without a text record and records without a file. With --verify, every
file is re-hashed and compared with the digest stored on its record.

Nothing is repaired. The command exits non-zero when problems are found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// errInconsistent is returned when the check finds violations.
var errInconsistent = errors.New("stores are inconsistent")

func init() {
	checkCmd.Flags().BoolVar(&checkVerify, "verify", false, "re-hash files and compare with stored digests")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		report, err := a.audit.Audit(ctx, domain.AuditOptions{VerifyContent: checkVerify})
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		if checkJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			cmd.Println(string(data))
		} else {
			printReport(cmd, report)
		}

		if !report.Consistent() {
			return errInconsistent
		}
		return nil
	})
}

func printReport(cmd *cobra.Command, report *domain.AuditReport) {
	cmd.Printf("Files: %d, text records: %d\n", report.BlobCount, report.RecordCount)
	printOrphans(cmd, report.OrphanedBlobs, report.OrphanedRecords)
	if len(report.StaleRecords) > 0 {
		cmd.Println()
		cmd.Println("Text records that no longer match their file:")
		for _, name := range report.StaleRecords {
			cmd.Printf("  %s\n", name)
		}
	}
	if report.Consistent() {
		cmd.Println("OK")
	}
}
