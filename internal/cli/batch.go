package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ecanvass/hypergeom"
	"github.com/ecanvass/hypergeom/internal/resultstore"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Input    string
	Database string
	Workers  int
}

// batchItem is one parsed input line. Err records a parse failure; the
// item still flows through the pipeline so the report keeps input
// order.
type batchItem struct {
	Line  int // 1-based input line number
	ID    string
	Query hypergeom.Query
	Err   error
}

// BatchResult is the scored outcome of one input line.
type BatchResult struct {
	ID        string           `json:"id"`
	Line      int              `json:"line"`
	K         int64            `json:"k"`
	M         int64            `json:"m"`
	Sample    int64            `json:"sample"`
	N         int64            `json:"n"`
	Score     string           `json:"score,omitempty"`
	Split     *hypergeom.Split `json:"split,omitempty"`
	Algorithm string           `json:"algorithm,omitempty"`
	Error     *CLIError        `json:"error,omitempty"`
}

// BatchSummary is the JSON payload for a whole batch run.
type BatchSummary struct {
	RunID    string        `json:"run_id,omitempty"`
	Database string        `json:"database,omitempty"`
	Lines    int           `json:"lines"`
	Failures int           `json:"failures"`
	Results  []BatchResult `json:"results"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score many queries from line-oriented input",
		Long: `Score every input line with the two-sided outlier score.

Each line carries an identifier and the four query integers:

  id k M sample N

Blank lines and lines starting with # are skipped. Results are printed
in input order; with --db they are also written to a SQLite score
store under a fresh run ID.

Example:
  hypergeom batch --input precincts.txt --db scores.db --workers 8`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "-", "input file, or - for stdin")
	cmd.Flags().StringVar(&opts.Database, "db", "", "write scores to this SQLite database")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "number of scoring workers")

	return cmd
}

func runBatch(opts *BatchOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Workers < 1 {
		return outputCommandError(formatter, ErrCodeInput,
			fmt.Sprintf("invalid worker count %d: must be at least 1", opts.Workers))
	}

	eng, err := newEngine(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err.Error())
	}

	input, closeInput, err := openInput(opts.Input, cmd)
	if err != nil {
		return outputCommandError(formatter, ErrCodeInput, err.Error())
	}
	defer closeInput()

	items, err := readBatch(input)
	if err != nil {
		return outputCommandError(formatter, ErrCodeInput, err.Error())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var st *resultstore.Store
	var runID string
	if opts.Database != "" {
		st, err = resultstore.Open(opts.Database)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing score database", "error", closeErr)
			}
		}()

		runID = uuid.New().String()
		cfgJSON, err := json.Marshal(eng.Config())
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		if err := st.BeginRun(ctx, runID, time.Now().UTC(), string(cfgJSON)); err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
	}

	slog.Debug("scoring batch", "lines", len(items), "workers", opts.Workers)
	results := scoreBatch(eng, items, opts.Workers)

	failures := 0
	for _, res := range results {
		if res.Error != nil {
			failures++
		}
	}

	if st != nil {
		for _, res := range results {
			if res.Error != nil {
				continue
			}
			row := resultstore.ScoreRow{
				RunID:  runID,
				LineID: res.ID,
				Query: hypergeom.Query{
					K: res.K, M: res.M, N: res.N, Sample: res.Sample,
				},
				Score:     res.Score,
				Split:     *res.Split,
				Algorithm: res.Algorithm,
			}
			if err := st.WriteScore(ctx, row); err != nil {
				return outputCommandError(formatter, ErrCodeStore, err.Error())
			}
		}
		if err := st.FinishRun(ctx, runID, time.Now().UTC(), int64(len(results)), int64(failures)); err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		slog.Debug("run recorded", "run_id", runID, "db", opts.Database)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(BatchSummary{
			RunID:    runID,
			Database: opts.Database,
			Lines:    len(results),
			Failures: failures,
			Results:  results,
		}); err != nil {
			return err
		}
	} else {
		renderBatchText(formatter, results, failures, runID, opts)
	}

	if failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d line(s) failed", failures, len(results)))
	}
	return nil
}

// openInput resolves --input to a reader: the command's stdin for "-",
// a file otherwise.
func openInput(path string, cmd *cobra.Command) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, f.Close, nil
}

// readBatch parses the whole input up front. Lines that do not parse
// still produce an item, with Err set, so they can be reported in
// place alongside the scored lines.
func readBatch(r io.Reader) ([]batchItem, error) {
	var items []batchItem
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, parseBatchLine(lineNo, line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return items, nil
}

// parseBatchLine parses one "id k M sample N" line.
func parseBatchLine(lineNo int, line string) batchItem {
	item := batchItem{Line: lineNo}
	fields := strings.Fields(line)
	if len(fields) > 0 {
		item.ID = fields[0]
	}
	if len(fields) != 5 {
		item.Err = fmt.Errorf("expected 5 fields (id k M sample N), got %d", len(fields))
		return item
	}
	q, err := parseQuery(fields[1:])
	if err != nil {
		item.Err = err
		return item
	}
	item.Query = q
	return item
}

// scoreBatch fans the items out over a fixed worker pool. The engine
// is safe for concurrent use; results land in a slice indexed by item
// so input order survives the fan-out.
func scoreBatch(eng *hypergeom.Engine, items []batchItem, workers int) []BatchResult {
	results := make([]BatchResult, len(items))
	if workers > len(items) {
		workers = max(len(items), 1)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = scoreItem(eng, items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func scoreItem(eng *hypergeom.Engine, item batchItem) BatchResult {
	res := BatchResult{
		ID:     item.ID,
		Line:   item.Line,
		K:      item.Query.K,
		M:      item.Query.M,
		Sample: item.Query.Sample,
		N:      item.Query.N,
	}
	if item.Err != nil {
		res.Error = &CLIError{Code: ErrCodeInput, Message: item.Err.Error()}
		return res
	}

	alg := eng.Choose(item.Query, hypergeom.OpScore)
	val, err := eng.Compute(item.Query, hypergeom.OpScore, true, alg)
	if err != nil {
		res.Error = toCLIError(err)
		return res
	}

	split := eng.Split(val)
	res.Score = val.String()
	res.Split = &split
	res.Algorithm = alg.String()
	return res
}

// toCLIError converts an engine error to the response error shape.
func toCLIError(err error) *CLIError {
	var ce *hypergeom.ComputeError
	if errors.As(err, &ce) {
		return &CLIError{Code: string(ce.Code), Message: ce.Message}
	}
	return &CLIError{Code: ErrCodeCompute, Message: err.Error()}
}

func renderBatchText(f *OutputFormatter, results []BatchResult, failures int, runID string, opts *BatchOptions) {
	for _, res := range results {
		switch {
		case res.Error != nil:
			fmt.Fprintf(f.Writer, "%s ERROR [%s] %s\n", res.ID, res.Error.Code, res.Error.Message)
		case opts.Split:
			fmt.Fprintf(f.Writer, "%s %v %d\n", res.ID, res.Split.Coefficient, res.Split.Exponent)
		default:
			fmt.Fprintf(f.Writer, "%s %s\n", res.ID, res.Score)
		}
	}
	if len(results) > 0 {
		fmt.Fprintln(f.Writer)
	}
	if failures == 0 {
		fmt.Fprintf(f.Writer, "✓ Scored %d line(s)\n", len(results))
	} else {
		fmt.Fprintf(f.Writer, "✗ Scored %d line(s): %d failed\n", len(results), failures)
	}
	if runID != "" {
		fmt.Fprintf(f.Writer, "Run %s written to %s\n", runID, opts.Database)
	}
}
