package collection

import (
	"fmt"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	"transcript-rag/internal/app"
)

var (
	name      string
	dimension int
)

func init() {
	Cmd.PersistentFlags().StringVarP(&name, "name", "n", "", "collection name (default from config)")
	createCmd.Flags().IntVarP(&dimension, "dimension", "d", 0, "vector dimension (default: embedding.dimension)")

	Cmd.AddCommand(createCmd, deleteCmd)
}

// Cmd represents the collection command
var Cmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage vector collections",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a vector collection, a no-op when it already exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		store, cleanup, err := app.OpenVectorStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		target := orDefault(name, cfg.Vector.Collection)
		dim := dimension
		if dim <= 0 {
			dim = cfg.Embedding.Dimension
		}
		if err := store.CreateCollection(cmd.Context(), target, dim); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Collection %q ready (dimension %d)\n", target, dim)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a vector collection and all of its vectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		store, cleanup, err := app.OpenVectorStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		target := orDefault(name, cfg.Vector.Collection)
		if err := store.DeleteCollection(cmd.Context(), target); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Collection %q deleted\n", target)
		return nil
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
