package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	"transcript-rag/cmd/trag/cmd/collection"
	"transcript-rag/cmd/trag/cmd/configcmd"
	"transcript-rag/cmd/trag/cmd/export"
	"transcript-rag/cmd/trag/cmd/ingest"
	"transcript-rag/cmd/trag/cmd/migrate"
	"transcript-rag/cmd/trag/cmd/search"
	"transcript-rag/cmd/trag/cmd/serve"
	"transcript-rag/cmd/trag/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trag",
	Short: "Index podcast transcripts for retrieval-augmented generation",
	Long: `Index podcast transcripts for retrieval-augmented generation.
- Fetch transcripts from URLs, episode pages, RSS feeds, S3 or local files
- Chunk, enrich and embed them into a vector collection
- Query by meaning, speaker, time range or episode`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(ingest.Cmd)
	rootCmd.AddCommand(search.Cmd)
	rootCmd.AddCommand(collection.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&cli.ConfigPath, "config", "c", "", "config file (default trag.yaml or $TRAG_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "V", false, "verbose output")
}
