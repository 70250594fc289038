package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/casefolio/pkg/client"
	"github.com/turtacn/casefolio/pkg/errors"
)

const defaultPollInterval = time.Second

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd() *cobra.Command {
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Start, watch and cancel server-side price refresh runs",
	}

	var (
		itemType string
		wait     bool
		poll     time.Duration
	)
	startCmd := &cobra.Command{
		Use:   "start [item name]...",
		Short: "Refresh prices of the catalog, one type, or the named items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefreshStart(cmd, &client.StartRequest{Items: args, Type: itemType}, wait, poll)
		},
	}
	startCmd.Flags().StringVarP(&itemType, "type", "t", "", "only refresh items of this type (case, capsule)")
	startCmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the run to finish, printing progress")
	startCmd.Flags().DurationVar(&poll, "poll", defaultPollInterval, "status poll interval with --wait")

	var statusWait bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running or last finished refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefreshStatus(cmd, statusWait, poll)
		},
	}
	statusCmd.Flags().BoolVarP(&statusWait, "wait", "w", false, "wait for a running refresh to finish")
	statusCmd.Flags().DurationVar(&poll, "poll", defaultPollInterval, "status poll interval with --wait")

	cancelCmd := &cobra.Command{
		Use:   "cancel",
		Short: "Stop the running refresh, keeping prices fetched so far",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefreshCancel(cmd)
		},
	}

	refreshCmd.AddCommand(startCmd, statusCmd, cancelCmd)
	return refreshCmd
}

func runRefreshStart(cmd *cobra.Command, req *client.StartRequest, wait bool, poll time.Duration) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	st, err := cliCtx.Client.Refresh().Start(ctx, req)
	cancel()
	if err != nil {
		return err
	}
	if !wait {
		return PrintResult(cmd, refreshView{st})
	}
	if cliCtx.OutputFormat != "json" {
		fmt.Fprintf(cmd.OutOrStdout(), "Refresh %s started for %d items\n", st.RunID, st.Total)
	}
	return waitRefresh(cmd, cliCtx, poll)
}

func runRefreshStatus(cmd *cobra.Command, wait bool, poll time.Duration) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if wait {
		return waitRefresh(cmd, cliCtx, poll)
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	st, err := cliCtx.Client.Refresh().Status(ctx)
	if err != nil {
		return err
	}
	return PrintResult(cmd, refreshView{st})
}

func runRefreshCancel(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	st, err := cliCtx.Client.Refresh().Cancel(ctx)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			PrintSuccess(cmd, "no refresh in progress")
			return nil
		}
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, st)
	}
	PrintSuccess(cmd, fmt.Sprintf("cancelling refresh %s after %d of %d items", st.RunID, st.Done, st.Total))
	return nil
}

// waitRefresh polls until no run is active. The --timeout flag does not
// apply; runs over the whole catalog take minutes.
func waitRefresh(cmd *cobra.Command, cliCtx *CLIContext, poll time.Duration) error {
	out := cmd.OutOrStdout()
	quiet := cliCtx.OutputFormat == "json"
	last := -1

	st, err := cliCtx.Client.Refresh().Wait(cmd.Context(), poll, func(s *client.RefreshStatus) {
		if quiet || !s.Running || s.Done == last {
			return
		}
		last = s.Done
		fmt.Fprintf(out, "  %3d%%  %d/%d  %s\n", s.Progress, s.Done, s.Total, s.Current)
	})
	if err != nil {
		return err
	}
	return PrintResult(cmd, refreshView{st})
}

// refreshView renders a refresh status.
type refreshView struct {
	*client.RefreshStatus
}

func (v refreshView) String() string {
	var sb strings.Builder
	if v.Running {
		fmt.Fprintf(&sb, "Refresh %s running: %d/%d (%d%%)", v.RunID, v.Done, v.Total, v.Progress)
		if v.Current != "" {
			fmt.Fprintf(&sb, ", fetching %s", v.Current)
		}
		sb.WriteString("\n")
		if v.Failed > 0 {
			fmt.Fprintf(&sb, "%s\n", color.YellowString("%d failed so far", v.Failed))
		}
		return sb.String()
	}
	if v.LastResult == nil {
		return "No refresh has run yet.\n"
	}
	r := v.LastResult
	state := color.GreenString("completed")
	if r.Cancelled {
		state = color.YellowString("cancelled")
	}
	fmt.Fprintf(&sb, "Last refresh %s %s at %s\n", r.RunID, state, r.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Items: %d/%d fetched, %d priced", r.Done, r.Total, len(r.Prices))
	if r.Failed > 0 {
		fmt.Fprintf(&sb, ", %s", color.RedString("%d failed", r.Failed))
	}
	fmt.Fprintf(&sb, "\nDuration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	return sb.String()
}

func (v refreshView) TableHeaders() []string {
	return []string{"Item", "Type", "Status"}
}

func (v refreshView) TableRows() [][]string {
	if v.LastResult == nil || v.Running {
		return [][]string{{orDash(v.Current), "", fmt.Sprintf("%d/%d", v.Done, v.Total)}}
	}
	rows := make([][]string, 0, len(v.LastResult.Items))
	for _, it := range v.LastResult.Items {
		status := "ok"
		switch {
		case it.Error != "":
			status = color.RedString(it.Error)
		case it.Quote == nil || !it.Quote.Success:
			status = color.YellowString("no data")
		}
		rows = append(rows, []string{it.Name, orDash(it.Type), status})
	}
	return rows
}

//Personal.AI order the ending
