package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"estimator/internal/domain"
	"estimator/internal/service"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// emit prints a result, or a boundary error in its {error, details} shape.
// The error is still returned so the process exits non-zero.
func emit(cmd *cobra.Command, v any, err error) error {
	if err != nil {
		var er *service.ErrorResponse
		if errors.As(err, &er) {
			_ = writeJSON(cmd.OutOrStdout(), er)
		}
		return err
	}
	return writeJSON(cmd.OutOrStdout(), v)
}

// parseQuantity accepts both "1.5" and "1,5".
func parseQuantity(s string) (float64, error) {
	q, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, domain.InvalidInput("quantity %q is not a number", s)
	}
	return q, nil
}
