package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"estimator/internal/service"
)

var searchFlags struct {
	unit     string
	category string
	minCost  float64
	maxCost  float64
	limit    int
}

var searchCmd = &cobra.Command{
	Use:   "search <description...>",
	Short: "Find rates by a free-text description of the work",
	Long: `Search ranks rates against a description such as "перегородки из гкл в 2 слоя".
Quoted fragments must match as a phrase. Filters narrow the results before
the limit is applied.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var codeCmd = &cobra.Command{
	Use:   "code <rate-code>",
	Short: "Look up rates by exact code or code prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runCode,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.unit, "unit", "u", "", "only rates measured in this unit type")
	f.StringVarP(&searchFlags.category, "category", "c", "", "only rates under this hierarchy code prefix")
	f.Float64Var(&searchFlags.minCost, "min-cost", 0, "minimum total cost")
	f.Float64Var(&searchFlags.maxCost, "max-cost", 0, "maximum total cost")
	f.IntVarP(&searchFlags.limit, "limit", "n", 0, "maximum number of results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	req := service.SearchRequest{
		Query:    strings.Join(args, " "),
		UnitType: searchFlags.unit,
		Category: searchFlags.category,
		Limit:    searchFlags.limit,
	}
	if req.Limit == 0 {
		req.Limit = a.cfg.Search.DefaultLimit
	}
	if cmd.Flags().Changed("min-cost") {
		req.MinCost = &searchFlags.minCost
	}
	if cmd.Flags().Changed("max-cost") {
		req.MaxCost = &searchFlags.maxCost
	}
	resp, err := a.service.Search(cmd.Context(), req)
	return emit(cmd, resp, err)
}

func runCode(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.SearchByCode(cmd.Context(), args[0])
	return emit(cmd, resp, err)
}
