package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-trademark-similarity/api"
	"github.com/gcbaptista/go-trademark-similarity/internal/engine"
	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/internal/logging"
	"github.com/gcbaptista/go-trademark-similarity/internal/similarity"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

type scoreOptions struct {
	input  string
	format string
	top    int
}

// scoredFile is one input file and its report.
type scoredFile struct {
	File   string                `json:"file"`
	Result *services.ScoreResult `json:"result"`
}

func newScoreCommand(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score request files offline",
		Long: `Score one or more JSON request files without starting the server.
Each file holds a score request: {"candidates": [...], "queryContext": {...}}.

Examples:
  similarity score --input request.json
  similarity score --input "watch/**/*.json" --format json --top 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "request file or glob pattern (supports **)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: json or table")
	cmd.Flags().IntVarP(&opts.top, "top", "n", 0, "show only the top N results per file (0 shows all)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runScore(cmd *cobra.Command, root *rootOptions, opts *scoreOptions) error {
	if opts.format != formatJSON && opts.format != formatTable {
		return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatJSON, formatTable)
	}
	if opts.top < 0 {
		return fmt.Errorf("--top must not be negative")
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	files, err := doublestar.FilepathGlob(opts.input)
	if err != nil {
		return fmt.Errorf("invalid input pattern: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %s", opts.input)
	}
	sort.Strings(files)

	eng, err := engine.NewEngine(cfg.Weights, engine.Options{
		Similarity: similarity.Options{ParallelThreshold: cfg.ParallelThreshold},
		Logger:     logging.Discard(),
	})
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Scoring"),
			progressbar.OptionClearOnFinish(),
		)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scored := make([]scoredFile, 0, len(files))
	for _, file := range files {
		result, err := scoreFile(ctx, eng, file)
		if err != nil {
			return err
		}
		if opts.top > 0 && len(result.Results) > opts.top {
			result.Results = result.Results[:opts.top]
		}
		scored = append(scored, scoredFile{File: file, Result: result})

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	out := cmd.OutOrStdout()
	if opts.format == formatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(scored)
	}
	return writeTables(out, scored)
}

// scoreFile reads, validates and scores one request file.
func scoreFile(ctx context.Context, eng *engine.Engine, path string) (*services.ScoreResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var req services.ScoreRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if result := api.ValidateScoreRequest(&req); result.HasErrors() {
		first := result.Errors[0]
		return nil, fmt.Errorf("%s: %w", path, apperrors.NewValidationError(first.Field, first.Message))
	}

	return eng.Score(ctx, req)
}

func writeTables(out io.Writer, scored []scoredFile) error {
	for i, file := range scored {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d candidates, query %s)\n", file.File, file.Result.Total, file.Result.QueryId)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tIDENTIFIER\tNAME\tFINAL\tEMBED-A\tEMBED-B\tTEXT\tCOLOR\tFONT\tSHAPE\tWARNINGS")
		for _, r := range file.Result.Results {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Rank,
				r.Identifier,
				r.DisplayName,
				similarity.FormatScore(r.FinalScore),
				similarity.FormatComponent(r.EmbeddingScoreA),
				similarity.FormatComponent(r.EmbeddingScoreB),
				similarity.FormatTextComponent(r),
				similarity.FormatComponent(r.ColorScore),
				similarity.FormatComponent(r.FontScore),
				similarity.FormatComponent(r.ShapeScore),
				strconv.Itoa(len(r.Warnings)),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
