package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"estimator/internal/service"
)

var detailsFlags struct {
	quantity   string
	sortByCost bool
}

var calcCmd = &cobra.Command{
	Use:   "calc <rate-code | description> <quantity>",
	Short: "Price a quantity of work",
	Long: `Calc scales a rate to the given quantity. The first argument is a rate
code, or a description resolved to the best matching rate; quote a
multi-word description.`,
	Example: `  estimator calc ГЭСН10-01-034-01 150
  estimator calc "перегородки из гкл" 150`,
	Args: cobra.ExactArgs(2),
	RunE: runCalc,
}

var detailsCmd = &cobra.Command{
	Use:   "details <rate-code>",
	Short: "Break a rate's cost down into resources",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetails,
}

func init() {
	f := detailsCmd.Flags()
	f.StringVarP(&detailsFlags.quantity, "quantity", "q", "1", "quantity of work in the rate's unit type")
	f.BoolVar(&detailsFlags.sortByCost, "sort-by-cost", false, "order resource lines by adjusted cost, highest first")
}

func runCalc(cmd *cobra.Command, args []string) error {
	q, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.Calculate(cmd.Context(), service.CalculateRequest{
		Identifier: strings.TrimSpace(args[0]),
		Quantity:   q,
	})
	return emit(cmd, resp, err)
}

func runDetails(cmd *cobra.Command, args []string) error {
	q, err := parseQuantity(detailsFlags.quantity)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.Details(cmd.Context(), service.DetailsRequest{
		RateCode:   args[0],
		Quantity:   q,
		SortByCost: detailsFlags.sortByCost,
	})
	return emit(cmd, resp, err)
}
