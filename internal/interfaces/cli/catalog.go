package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/casefolio/pkg/client"
)

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the tracked cases and capsules",
	}

	var opts client.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items with their last known price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(cmd, &opts)
		},
	}
	listCmd.Flags().StringVarP(&opts.Type, "type", "t", "", "filter by type (case, capsule)")
	listCmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive name filter")

	nameIDCmd := &cobra.Command{
		Use:   "nameid <item name>",
		Short: "Resolve the market item_nameid of an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogNameID(cmd, strings.Join(args, " "))
		},
	}

	catalogCmd.AddCommand(listCmd, nameIDCmd)
	return catalogCmd
}

func runCatalogList(cmd *cobra.Command, opts *client.ListOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	items, err := cliCtx.Client.Catalog().List(ctx, opts)
	if err != nil {
		return err
	}
	return PrintResult(cmd, catalogView(items))
}

func runCatalogNameID(cmd *cobra.Command, name string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	id, err := cliCtx.Client.Catalog().NameID(ctx, name)
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, map[string]interface{}{"name": name, "name_id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", name, id)
	return nil
}

type catalogView []client.CatalogItem

func (v catalogView) TableHeaders() []string {
	return []string{"Item", "Type", "Price", "Held"}
}

func (v catalogView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, it := range v {
		held := ""
		if it.Quantity > 0 {
			held = strconv.Itoa(it.Quantity)
		}
		rows = append(rows, []string{it.DisplayName, it.Type, priceOrDash(it), held})
	}
	return rows
}

func (v catalogView) String() string {
	var sb strings.Builder
	for _, it := range v {
		fmt.Fprintf(&sb, "%-8s %-45s %s", it.Type, it.DisplayName, priceOrDash(it))
		if it.Quantity > 0 {
			fmt.Fprintf(&sb, "  (held: %d)", it.Quantity)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d items\n", len(v))
	return sb.String()
}

func priceOrDash(it client.CatalogItem) string {
	if it.PriceCents == 0 {
		return "-"
	}
	return it.Price
}

//Personal.AI order the ending
