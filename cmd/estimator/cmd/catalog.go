package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"estimator/internal/catalog"
	"estimator/internal/domain"
	"estimator/internal/summarizer"
)

var loadBatch int

var loadCmd = &cobra.Command{
	Use:   "load <file.json | ->",
	Short: "Load rates with their resources into the catalog",
	Long: `Load upserts rate records read from a file, or from stdin when the
argument is "-". The input is a JSON array of {"rate": ..., "resources": [...]}
objects, or the same objects one per line. Each batch is written in one
transaction together with its search index entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <rate-code>...",
	Short: "Delete rates and their resources from the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the search index agrees with the rate table",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog row counts and its most common units and terms",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog into the configured vector store",
	Long: `Index rebuilds the semantic index with the configured embedder and
vector store, whatever the configured search strategy. With the openai
embedder and a bolt or qdrant store, later commands reuse these vectors
as long as the store holds one vector per catalog rate. The tfidf
embedder learns its vocabulary from the catalog, so it is rebuilt on
every run.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	loadCmd.Flags().IntVar(&loadBatch, "batch", 1000, "records per transaction (0 loads everything at once)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.close()

	total := 0
	batch := make([]domain.RateRecord, 0, max(loadBatch, 1))
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := a.store.BulkLoad(cmd.Context(), batch); err != nil {
			return fmt.Errorf("load records %d-%d: %w", total+1, total+len(batch), err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}
	err = decodeRecords(r, func(rec domain.RateRecord) error {
		batch = append(batch, rec)
		if loadBatch > 0 && len(batch) >= loadBatch {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return err
	}
	a.log.Info("load finished", zap.Int("rates", total))
	return writeJSON(cmd.OutOrStdout(), map[string]int{"loaded": total})
}

// decodeRecords streams records from a JSON array or from concatenated
// JSON objects.
func decodeRecords(r io.Reader, fn func(domain.RateRecord) error) error {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	dec := json.NewDecoder(br)
	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return err
		}
	}
	for n := 1; dec.More(); n++ {
		var rec domain.RateRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return err
		}
	}
	return nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(r) && r != '\uFEFF' {
			if err := br.UnreadRune(); err != nil {
				return 0, err
			}
			return byte(r), nil
		}
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.close()

	deleted := make([]string, 0, len(args))
	for _, code := range args {
		if err := a.store.DeleteRate(cmd.Context(), code); err != nil {
			return fmt.Errorf("delete %s: %w", code, err)
		}
		deleted = append(deleted, code)
	}
	return writeJSON(cmd.OutOrStdout(), map[string][]string{"deleted": deleted})
}

func runVerify(cmd *cobra.Command, _ []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.close()

	rep, err := a.store.VerifyIndex(cmd.Context())
	if werr := writeJSON(cmd.OutOrStdout(), rep); werr != nil {
		return werr
	}
	return err
}

type statsResponse struct {
	catalog.Stats
	JournalMode string             `json:"journal_mode"`
	Units       []summarizer.Count `json:"top_units"`
	Terms       []summarizer.Count `json:"top_terms"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	st, err := a.store.Stats(ctx)
	if err != nil {
		return err
	}
	mode, err := a.store.JournalMode()
	if err != nil {
		return err
	}
	sum, err := summarize(ctx, a)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), statsResponse{Stats: st, JournalMode: mode, Units: sum.Units, Terms: sum.Terms})
}

func summarize(ctx context.Context, a *app) (summarizer.Summary, error) {
	return summarizer.NewFrequencySummarizer(a.normalizer, 0).Summarize(ctx, a.store)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.close()

	_, n, err := a.buildSemantic(cmd.Context(), true)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"embedder":     a.cfg.Embedder.Type,
		"vector_store": a.cfg.VectorStore.Type,
		"indexed":      n,
	})
}
