package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"transcript-rag/cmd/trag/cmd/cli"
	"transcript-rag/internal/app/export"
	"transcript-rag/internal/app/query"
)

var (
	topK       int
	asJSON     bool
	exportPath string
)

func init() {
	Cmd.PersistentFlags().IntVarP(&topK, "top-k", "k", 0, "number of results, 0 uses the configured default")
	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
	Cmd.PersistentFlags().StringVarP(&exportPath, "export", "o", "", "also write chunk results to this xlsx file")

	Cmd.AddCommand(generalCmd, speakerCmd, timeCmd, episodesCmd, fulltextCmd)
}

// Cmd represents the search command
var Cmd = &cobra.Command{
	Use:   "search",
	Short: "Query the transcript collection",
}

var generalCmd = &cobra.Command{
	Use:   "general <query>",
	Short: "Semantic search across all episodes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *query.Service) error {
			results, err := svc.Search(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			return emitResults(cmd.OutOrStdout(), results)
		})
	},
}

var speakerCmd = &cobra.Command{
	Use:   "speaker <name> [query]",
	Short: "Search the chunks in which a speaker talks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *query.Service) error {
			results, err := svc.SearchBySpeaker(cmd.Context(), args[0], strings.Join(args[1:], " "), topK)
			if err != nil {
				return err
			}
			return emitResults(cmd.OutOrStdout(), results)
		})
	},
}

var (
	rangeStart   string
	rangeEnd     string
	rangeEpisode string
)

func init() {
	timeCmd.Flags().StringVar(&rangeStart, "start", "", "start timestamp, MM:SS or HH:MM:SS")
	timeCmd.Flags().StringVar(&rangeEnd, "end", "", "end timestamp, MM:SS or HH:MM:SS")
	timeCmd.Flags().StringVar(&rangeEpisode, "episode", "", "restrict to one episode title")
}

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "List chunks that overlap a time range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *query.Service) error {
			results, err := svc.SearchByTimeRange(cmd.Context(), query.TimeRange{
				Start:        rangeStart,
				End:          rangeEnd,
				EpisodeTitle: rangeEpisode,
			}, topK)
			if err != nil {
				return err
			}
			return emitResults(cmd.OutOrStdout(), results)
		})
	},
}

var episodeTitle string

func init() {
	episodesCmd.Flags().StringVar(&episodeTitle, "episode", "", "only summarize this episode title")
}

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "Summarize the indexed episodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *query.Service) error {
			summaries, err := svc.Episodes(cmd.Context(), episodeTitle)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return cli.PrintJSON(out, summaries)
			}
			printSummaries(out, summaries)
			return nil
		})
	},
}

var limit int

func init() {
	fulltextCmd.Flags().IntVar(&limit, "limit", 10, "maximum number of episodes")
}

var fulltextCmd = &cobra.Command{
	Use:   "fulltext <query>",
	Short: "Full-text search over episode titles and summaries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(svc *query.Service) error {
			matches, err := svc.SearchEpisodes(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return cli.PrintJSON(out, matches)
			}
			for _, m := range matches {
				fmt.Fprintf(out, "%.3f  %s\n", m.Rank, m.EpisodeTitle)
			}
			return nil
		})
	},
}

func withService(cmd *cobra.Command, fn func(*query.Service) error) error {
	a, _, cleanup, err := cli.Bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(a.Query)
}

func emitResults(w io.Writer, results []query.Result) error {
	if exportPath != "" {
		if err := export.ResultsToExcel(results, exportPath); err != nil {
			return err
		}
	}
	if asJSON {
		return cli.PrintJSON(w, results)
	}
	printResults(w, results)
	return nil
}

func printResults(w io.Writer, results []query.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s [%s-%s] %s (score %.3f)\n",
			i+1, r.EpisodeTitle, r.TimestampStart, r.TimestampEnd,
			strings.Join(r.SpeakersInChunk, ", "), r.Score)
		fmt.Fprintf(w, "   %s\n", snippet(r.Text, 240))
	}
}

func printSummaries(w io.Writer, summaries []query.EpisodeSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No episodes")
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  chunks=%d  speakers=%s  source=%s\n",
			s.EpisodeTitle, s.MatchedChunks, strings.Join(s.Speakers, ", "), s.Source)
	}
}

func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
