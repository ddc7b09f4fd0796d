package cmd

import (
	"github.com/spf13/cobra"

	"estimator/internal/service"
)

var (
	compareQuantity string
	similarFlags    struct {
		max      int
		quantity string
		anyUnit  bool
	}
)

var compareCmd = &cobra.Command{
	Use:   "compare <rate-code> <rate-code>...",
	Short: "Compare rates side by side at one quantity",
	Long: `Compare prices every rate at the same quantity and lists them cheapest
first, with the difference from the cheapest in money and percent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

var similarCmd = &cobra.Command{
	Use:   "similar <rate-code>",
	Short: "List alternatives to a rate",
	Long: `Similar searches for rates whose names share keywords with the given rate
and compares them against it. The source rate is always the first row.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	compareCmd.Flags().StringVarP(&compareQuantity, "quantity", "q", "", "quantity of work (required)")
	_ = compareCmd.MarkFlagRequired("quantity")

	f := similarCmd.Flags()
	f.IntVarP(&similarFlags.max, "max", "n", 0, "maximum number of alternatives (default from config)")
	f.StringVarP(&similarFlags.quantity, "quantity", "q", "", "quantity of work (default: the rate's unit quantity)")
	f.BoolVar(&similarFlags.anyUnit, "any-unit", false, "include alternatives measured in other units")
}

func runCompare(cmd *cobra.Command, args []string) error {
	q, err := parseQuantity(compareQuantity)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.Compare(cmd.Context(), service.CompareRequest{RateCodes: args, Quantity: q})
	return emit(cmd, resp, err)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	var q float64
	if similarFlags.quantity != "" {
		var err error
		if q, err = parseQuantity(similarFlags.quantity); err != nil {
			return err
		}
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	limit := similarFlags.max
	if limit == 0 {
		limit = a.cfg.Similar.MaxResults
	}
	resp, err := a.service.FindSimilar(cmd.Context(), service.FindSimilarRequest{
		RateCode:   args[0],
		MaxResults: limit,
		Quantity:   q,
		AnyUnit:    similarFlags.anyUnit,
	})
	return emit(cmd, resp, err)
}
