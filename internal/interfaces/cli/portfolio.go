package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/turtacn/casefolio/internal/domain/currency"
	"github.com/turtacn/casefolio/pkg/client"
	"github.com/turtacn/casefolio/pkg/errors"
)

// NewPortfolioCmd creates the portfolio command.
func NewPortfolioCmd() *cobra.Command {
	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show and edit the held items",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show holdings and their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortfolioShow(cmd)
		},
	}

	var (
		addQuantity int
		addPrice    string
	)
	addCmd := &cobra.Command{
		Use:   "add <item name>",
		Short: "Add an item, or replace its quantity if already held",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortfolioAdd(cmd, strings.Join(args, " "), addQuantity, addPrice)
		},
	}
	addCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "quantity held (values below 1 become 1)")
	addCmd.Flags().StringVarP(&addPrice, "price", "p", "", "unit price, e.g. 1.25 or $1.25 (default: keep the known price)")

	setCmd := &cobra.Command{
		Use:   "set <item name> <quantity>",
		Short: "Change the quantity of an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[len(args)-1])
			if err != nil {
				return errors.InvalidParam("quantity must be a whole number").WithDetail(args[len(args)-1])
			}
			return runPortfolioSet(cmd, strings.Join(args[:len(args)-1], " "), qty)
		},
	}

	removeCmd := &cobra.Command{
		Use:     "remove <item name>",
		Aliases: []string{"rm"},
		Short:   "Stop holding an item",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortfolioRemove(cmd, strings.Join(args, " "))
		},
	}

	portfolioCmd.AddCommand(showCmd, addCmd, setCmd, removeCmd, newReportCmd())
	return portfolioCmd
}

func runPortfolioShow(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	s, err := cliCtx.Client.Portfolio().Summary(ctx)
	if err != nil {
		return err
	}
	return PrintResult(cmd, summaryView{s})
}

func runPortfolioAdd(cmd *cobra.Command, name string, quantity int, price string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	req := &client.AddItemRequest{Name: name, Quantity: quantity}
	if price != "" {
		cents, err := parsePriceFlag(price)
		if err != nil {
			return err
		}
		req.Price = &cents
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	s, err := cliCtx.Client.Portfolio().Add(ctx, req)
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, s)
	}
	PrintSuccess(cmd, fmt.Sprintf("added %s, portfolio worth %s", name, s.Total))
	return nil
}

func runPortfolioSet(cmd *cobra.Command, name string, quantity int) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	s, err := cliCtx.Client.Portfolio().SetQuantity(ctx, name, quantity)
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, s)
	}
	PrintSuccess(cmd, fmt.Sprintf("%s quantity set, portfolio worth %s", name, s.Total))
	return nil
}

func runPortfolioRemove(cmd *cobra.Command, name string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	s, err := cliCtx.Client.Portfolio().Remove(ctx, name)
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, s)
	}
	PrintSuccess(cmd, fmt.Sprintf("removed %s, portfolio worth %s", name, s.Total))
	return nil
}

// parsePriceFlag reads a unit price typed by the user into cents.
func parsePriceFlag(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimLeft(strings.TrimSpace(s), "$"))
	if err != nil || d.IsNegative() {
		return 0, errors.InvalidParam("price must be a non-negative amount").WithDetail(s)
	}
	cents, ok := currency.FromDecimal(d)
	if !ok {
		return 0, errors.InvalidParam("price is too large").WithDetail(s)
	}
	return cents, nil
}

// summaryView renders a portfolio summary.
type summaryView struct {
	*client.Summary
}

func (v summaryView) TableHeaders() []string {
	return []string{"Item", "Type", "Qty", "Unit", "Value"}
}

func (v summaryView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Entries)+2)
	for _, e := range v.Entries {
		rows = append(rows, []string{
			e.DisplayName, orDash(e.Type), strconv.Itoa(e.Quantity), e.UnitPrice, e.LineValue,
		})
	}
	rows = append(rows,
		[]string{"Total", "", strconv.Itoa(v.TotalQuantity), "", v.Total},
		[]string{"After fee (" + v.TaxRate + ")", "", "", "", v.Net},
	)
	return rows
}

func (v summaryView) String() string {
	var sb strings.Builder
	if len(v.Entries) == 0 {
		sb.WriteString("No items held.\n")
	}
	for _, e := range v.Entries {
		fmt.Fprintf(&sb, "%-40s %4d x %-10s %s\n", e.DisplayName, e.Quantity, e.UnitPrice, e.LineValue)
	}
	fmt.Fprintf(&sb, "\nTotal value:   %s\n", color.GreenString(v.Total))
	fmt.Fprintf(&sb, "After fee:     %s (fee %s)\n", v.Net, v.TaxRate)
	fmt.Fprintf(&sb, "Items:         %d unique, %d total\n", v.UniqueItems, v.TotalQuantity)
	fmt.Fprintf(&sb, "Last updated:  %s\n", v.LastPriceUpdateText)
	return sb.String()
}

//Personal.AI order the ending
