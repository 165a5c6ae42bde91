package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	epmigrate "transcript-rag/internal/app/repository/migrate"
	"transcript-rag/internal/app/repository/pg"
	"transcript-rag/internal/app/repository/sqlite"
)

var (
	from   string
	to     string
	limit  int
	asJSON bool
)

func init() {
	Cmd.Flags().StringVar(&from, "from", "", "source SQLite database (default: database.dsn)")
	Cmd.Flags().StringVar(&to, "to", "", "target PostgreSQL DSN (default: $DATABASE_URL)")
	Cmd.Flags().IntVar(&limit, "limit", epmigrate.DefaultLimit, "maximum number of episodes to read")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
}

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy episode records from SQLite to PostgreSQL",
	Long: `Copy episode records from SQLite to PostgreSQL

- Creates the episodes table on the target when missing
- Skips titles that already exist, so runs can be repeated`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := cli.NewLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		src := from
		if src == "" {
			src = cfg.Database.DSN
		}
		dst := to
		if dst == "" {
			dst = os.Getenv("DATABASE_URL")
		}
		if dst == "" {
			return fmt.Errorf("no target database: pass --to or set DATABASE_URL")
		}

		srcDB, err := sqlite.NewSQLiteDB(src)
		if err != nil {
			return err
		}
		defer srcDB.Close()

		dstDB, err := pg.NewPostgresDB(dst)
		if err != nil {
			return err
		}
		defer dstDB.Close()

		ctx := cmd.Context()
		if err := dstDB.Migrate(ctx); err != nil {
			return err
		}

		stats, err := epmigrate.Episodes(ctx, srcDB, dstDB, limit, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, stats)
		}
		fmt.Fprintf(out, "read=%d copied=%d skipped=%d failed=%d\n",
			stats.Read, stats.Copied, stats.Skipped, stats.Failed)
		return nil
	},
}
