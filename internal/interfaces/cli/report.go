package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/turtacn/casefolio/pkg/client"
)

const defaultReportWidth = 100

func newReportCmd() *cobra.Command {
	var (
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a markdown valuation report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, raw, width)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source instead of rendering it")
	cmd.Flags().IntVar(&width, "width", defaultReportWidth, "word wrap width of the rendered report")
	return cmd
}

func runReport(cmd *cobra.Command, raw bool, width int) error {
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
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, s)
	}

	md := buildReportMarkdown(s, time.Now())
	if raw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	out, err := renderMarkdown(md, width, cliCtx.NoColor)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// buildReportMarkdown lays the summary out as a markdown document. Cases and
// capsules get their own sections; items outside the catalog go last.
func buildReportMarkdown(s *client.Summary, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# Portfolio report\n\n")
	fmt.Fprintf(&sb, "_Generated %s. Prices last updated: %s._\n\n", now.Format("2006-01-02 15:04"), s.LastPriceUpdateText)

	sb.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Total value | **%s** |\n", s.Total)
	fmt.Fprintf(&sb, "| After market fee (%s) | %s |\n", s.TaxRate, s.Net)
	fmt.Fprintf(&sb, "| Unique items | %d |\n", s.UniqueItems)
	fmt.Fprintf(&sb, "| Total quantity | %d |\n\n", s.TotalQuantity)

	if len(s.Entries) == 0 {
		sb.WriteString("No items held.\n")
		return sb.String()
	}

	sections := []struct {
		title string
		match func(string) bool
	}{
		{"Cases", func(t string) bool { return t == "case" }},
		{"Capsules", func(t string) bool { return t == "capsule" }},
		{"Other items", func(t string) bool { return t != "case" && t != "capsule" }},
	}
	for _, sec := range sections {
		var entries []client.SummaryEntry
		var subtotal int64
		for _, e := range s.Entries {
			if sec.match(e.Type) {
				entries = append(entries, e)
				subtotal += e.LineCents
			}
		}
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", sec.title)
		sb.WriteString("| Item | Qty | Unit | Value | Share |\n|---|---:|---:|---:|---:|\n")
		for _, e := range entries {
			fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n",
				escapeCell(e.DisplayName), e.Quantity, e.UnitPrice, e.LineValue, share(e.LineCents, s.TotalCents))
		}
		fmt.Fprintf(&sb, "\nSection share of total: %s\n\n", share(subtotal, s.TotalCents))
	}
	return sb.String()
}

func share(part, total int64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderMarkdown(md string, width int, noColor bool) (string, error) {
	if width <= 0 {
		width = defaultReportWidth
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if noColor {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

//Personal.AI order the ending
