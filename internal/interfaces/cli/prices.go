package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/casefolio/pkg/client"
	"github.com/turtacn/casefolio/pkg/errors"
)

// NewPricesCmd creates the prices command.
func NewPricesCmd() *cobra.Command {
	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Look up Steam market prices through the API",
	}

	getCmd := &cobra.Command{
		Use:   "get <item name>",
		Short: "Show the price overview of one item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPricesGet(cmd, strings.Join(args, " "))
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch <item name>...",
		Short: "Fetch several items in one request",
		Long:  "Fetch several items in one request. Quote names that contain spaces.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPricesBatch(cmd, args)
		},
	}

	pricesCmd.AddCommand(getCmd, batchCmd)
	return pricesCmd
}

func runPricesGet(cmd *cobra.Command, name string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	if cliCtx.OutputFormat == "json" {
		raw, err := cliCtx.Client.Prices().GetRaw(ctx, name)
		if err != nil {
			return err
		}
		return PrintResult(cmd, raw)
	}

	q, err := cliCtx.Client.Prices().Get(ctx, name)
	if err != nil {
		return err
	}
	if !q.Success {
		return errors.Newf(errors.ErrCodeUpstreamResponse, "no market data for %q", name)
	}
	return PrintResult(cmd, quoteTable{{Name: name, Quote: *q}})
}

func runPricesBatch(cmd *cobra.Command, names []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	results, err := cliCtx.Client.Prices().Batch(ctx, names)
	if err != nil {
		return err
	}
	cliCtx.Logger.Debug("Batch price lookup finished")
	return PrintResult(cmd, quoteTable(results))
}

// quoteTable renders price quotes; failed entries show as unavailable.
type quoteTable []client.BatchQuote

func (t quoteTable) TableHeaders() []string {
	return []string{"Item", "Lowest", "Median", "Volume"}
}

func (t quoteTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, q := range t {
		if !q.Success {
			rows = append(rows, []string{q.Name, "-", "-", color.YellowString("unavailable")})
			continue
		}
		rows = append(rows, []string{q.Name, orDash(q.LowestPrice), orDash(q.MedianPrice), orDash(q.Volume)})
	}
	return rows
}

func (t quoteTable) String() string {
	var sb strings.Builder
	for _, q := range t {
		if !q.Success {
			fmt.Fprintf(&sb, "%s: %s\n", q.Name, color.YellowString("unavailable"))
			continue
		}
		fmt.Fprintf(&sb, "%s: median %s, lowest %s, volume %s\n",
			q.Name, orDash(q.MedianPrice), orDash(q.LowestPrice), orDash(q.Volume))
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

//Personal.AI order the ending
