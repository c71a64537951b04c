package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datapipeline/pipelinemanager/ctl/internal/client"
)

func newHealthCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, g, h, func(w io.Writer) {
				fmt.Fprintf(w, "status\t%s\n", h.Status)
				fmt.Fprintf(w, "database\t%s\n", h.Components.Database.Status)
				fmt.Fprintf(w, "redis\t%s\n", h.Components.Redis.Status)
				fmt.Fprintf(w, "diskSpace\t%s\n", h.Components.DiskSpace.Status)
			})
		},
	}
}

func newStatsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			s, err := c.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, g, s, func(w io.Writer) {
				fmt.Fprintf(w, "Total pipelines:\t%d\n", s.TotalPipelines)
				fmt.Fprintf(w, "Active:\t%d\n", s.ActivePipelines)
				fmt.Fprintf(w, "Failed:\t%d\n", s.FailedPipelines)
				fmt.Fprintf(w, "Pending:\t%d\n", s.PendingPipelines)
				fmt.Fprintf(w, "Success rate:\t%.1f%%\n", s.SuccessRate)
				fmt.Fprintf(w, "Avg execution time:\t%s\n", s.AvgExecutionTime)
			})
		},
	}
}

func newExecutionsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "executions",
		Short: "List recent executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ex, err := c.RecentExecutions(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, g, ex, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tPIPELINE\tSTATUS\tSTART\tEND\tRECORDS")
				for _, e := range ex {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
						e.ID, e.PipelineName, e.Status, e.StartTime, e.EndTime, e.RecordsProcessed)
				}
			})
		},
	}
}

func newAlertsCommand(g *globals) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			as, err := c.Alerts(cmd.Context())
			if err != nil {
				return err
			}
			if activeOnly {
				kept := as[:0]
				for _, a := range as {
					if a.Status == "active" {
						kept = append(kept, a)
					}
				}
				as = kept
			}
			return render(cmd, g, as, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tSEVERITY\tSTATUS\tTIME\tMESSAGE")
				for _, a := range as {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.Severity, a.Status, a.Timestamp, a.Message)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only show active alerts")
	return cmd
}

func newMetricsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Scrape the Prometheus endpoint and print each series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			mfs, err := c.FetchMetrics(cmd.Context())
			if err != nil {
				return err
			}
			samples := client.Flatten(mfs)
			return render(cmd, g, samples, func(w io.Writer) {
				fmt.Fprintln(w, "METRIC\tLABELS\tVALUE")
				for _, s := range samples {
					fmt.Fprintf(w, "%s\t%s\t%g\n", s.Name, formatLabels(s.Labels), s.Value)
				}
			})
		},
	}
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
