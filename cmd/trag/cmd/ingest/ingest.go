package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	appingest "transcript-rag/internal/app/ingest"
	"transcript-rag/internal/app/util/files"
)

var (
	feeds    []string
	refsFile string
	dir      string
	asJSON   bool
)

func init() {
	Cmd.Flags().StringArrayVarP(&feeds, "feed", "f", nil,
		"RSS or Atom feed whose episode transcripts should be ingested, may be repeated")
	Cmd.Flags().StringVar(&refsFile, "file", "",
		"file listing one transcript reference per line, lines starting with # are ignored")
	Cmd.Flags().StringVarP(&dir, "dir", "d", "",
		"directory whose .json, .vtt, .srt and .txt transcripts should be ingested, oldest first")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
}

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest [refs...]",
	Short: "Ingest transcripts into the vector collection",
	Long: `Ingest transcripts into the vector collection

- References may be http(s) URLs, episode pages, s3:// objects or local files
- JSON transcripts, WebVTT and SRT captions are supported
- Each transcript is chunked, enriched, embedded and upserted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs := append([]string{}, args...)
		if refsFile != "" {
			f, err := os.Open(refsFile)
			if err != nil {
				return err
			}
			listed, err := readRefs(f)
			f.Close()
			if err != nil {
				return err
			}
			refs = append(refs, listed...)
		}
		if dir != "" {
			infos, err := files.GetAllTranscriptFiles(dir)
			if err != nil {
				return err
			}
			refs = append(refs, files.Paths(infos)...)
		}
		if len(refs) == 0 && len(feeds) == 0 {
			return fmt.Errorf("nothing to ingest: pass references, --file, --dir or --feed")
		}

		ctx := cmd.Context()
		a, logger, cleanup, err := cli.Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, feed := range feeds {
			resolved, err := a.Feeds.Resolve(ctx, feed)
			if err != nil {
				return err
			}
			logger.Info("resolved feed", "feed", feed, "episodes", len(resolved))
			refs = append(refs, resolved...)
		}

		if appingest.IsTTY(os.Stderr) && !asJSON {
			a.Coordinator.SetProgress(appingest.NewBarProgress(os.Stderr))
		}

		result, err := a.Coordinator.IngestBatch(ctx, refs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, result)
		}
		printResult(out, result, a.Coordinator.Collection())
		return nil
	},
}

// readRefs returns the non-blank, non-comment lines of r
func readRefs(r io.Reader) ([]string, error) {
	var refs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	return refs, scanner.Err()
}

func printResult(w io.Writer, result *appingest.Result, collection string) {
	fmt.Fprintf(w, "Ingested %d chunks into %q from %d transcript(s)\n",
		result.TotalChunks, collection, len(result.ProcessedURLs))
	for _, failed := range result.FailedURLs {
		fmt.Fprintf(w, "  failed: %s: %s\n", failed.URL, failed.Error)
	}
}
