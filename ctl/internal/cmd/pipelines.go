package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

func newListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ps, err := c.Pipelines(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, g, ps, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSCHEDULE\tSUCCESS\tLAST RUN\tOWNER")
				for _, p := range ps {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
						p.ID, p.Name, p.Status, p.Schedule, p.SuccessRate, orDash(p.LastRun), p.Owner)
				}
			})
		},
	}
}

func newGetCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("pipeline id %q is not an integer", args[0])
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			p, err := c.Pipeline(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, g, p, func(w io.Writer) { pipelineTable(w, p) })
		},
	}
}

func newCreateCommand(g *globals) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Unset flags stay nil so the server applies its defaults.
			var d types.PipelineDraft
			if cmd.Flags().Changed("name") {
				d.Name = &name
			}
			if cmd.Flags().Changed("description") {
				d.Description = &description
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			p, err := c.CreatePipeline(cmd.Context(), d)
			if err != nil {
				return err
			}
			return render(cmd, g, p, func(w io.Writer) { pipelineTable(w, p) })
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "pipeline name (server default when omitted)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "pipeline description")
	return cmd
}

func pipelineTable(w io.Writer, p types.Pipeline) {
	fmt.Fprintf(w, "ID:\t%d\n", p.ID)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Description:\t%s\n", p.Description)
	fmt.Fprintf(w, "Status:\t%s\n", p.Status)
	fmt.Fprintf(w, "Schedule:\t%s\n", p.Schedule)
	fmt.Fprintf(w, "Success rate:\t%.1f%%\n", p.SuccessRate)
	fmt.Fprintf(w, "Avg duration:\t%s\n", p.AvgDuration)
	fmt.Fprintf(w, "Last run:\t%s\n", orDash(p.LastRun))
	fmt.Fprintf(w, "Next run:\t%s\n", orDash(p.NextRun))
	fmt.Fprintf(w, "Owner:\t%s\n", p.Owner)
	fmt.Fprintf(w, "Created:\t%s\n", p.CreatedAt)
}

func orDash(ts *types.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.String()
}
