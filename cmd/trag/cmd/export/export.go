package export

import (
	"fmt"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	"transcript-rag/internal/app"
	appexport "transcript-rag/internal/app/export"
)

var (
	outputFilePath string
	limit          int
)

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "episodes.xlsx", "output xlsx file")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 10000, "maximum number of episodes")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded episodes and their summaries to Excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		episodes, cleanup, err := app.OpenEpisodes(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		list, err := episodes.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if err := appexport.EpisodesToExcel(list, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d episodes to %s\n", len(list), outputFilePath)
		return nil
	},
}
