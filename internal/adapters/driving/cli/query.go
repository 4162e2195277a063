package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question over all stored texts",
	Long: `Sends the question together with the text of every stored file to the
answering service and prints its answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	return withApp(cmd, func(ctx context.Context, a *appServices) error {
		answer, err := a.query.Query(ctx, question)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		cmd.Println(answer)
		return nil
	})
}
