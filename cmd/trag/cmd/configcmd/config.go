package configcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"transcript-rag/cmd/trag/cmd/cli"
	"transcript-rag/internal/config"
)

var force bool

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	Cmd.AddCommand(initCmd, showCmd)
}

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the trag configuration file",
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file populated with defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPaths[0]
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		masked := *cfg
		masked.S3.SecretKey = mask(masked.S3.SecretKey)
		masked.Redis.Password = mask(masked.Redis.Password)

		data, err := yaml.Marshal(&masked)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		fmt.Fprintf(out, "# api keys available: %v\n", cfg.APIKeys.Available())
		return nil
	},
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
