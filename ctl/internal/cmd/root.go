// Package cmd holds the pipelinectl cobra commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/datapipeline/pipelinemanager/ctl/internal/client"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ServerEnv overrides the default --server value.
const ServerEnv = "PIPELINECTL_SERVER"

const defaultServer = "http://localhost:8080"

// globals are the persistent flags shared by every subcommand.
type globals struct {
	server  string
	timeout time.Duration
	output  string
}

// client builds an API client from the persistent flags.
func (g *globals) client() (*client.Client, error) {
	return client.New(g.server, g.timeout)
}

// NewRootCommand builds the pipelinectl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "pipelinectl",
		Short:         "Command-line client for the data pipeline management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch g.output {
			case "table", "json":
				return nil
			default:
				return fmt.Errorf("--output %q unknown: want table|json", g.output)
			}
		},
	}
	root.SetOut(out)

	server := defaultServer
	if v := os.Getenv(ServerEnv); v != "" {
		server = v
	}
	root.PersistentFlags().StringVar(&g.server, "server", server, "pipeline-server base URL (env "+ServerEnv+")")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	root.PersistentFlags().StringVarP(&g.output, "output", "o", "table", "output format: table|json")

	root.AddCommand(
		newHealthCommand(g),
		newListCommand(g),
		newGetCommand(g),
		newCreateCommand(g),
		newStatsCommand(g),
		newExecutionsCommand(g),
		newAlertsCommand(g),
		newMetricsCommand(g),
	)
	return root
}

// render writes v as indented JSON, or calls table with a tabwriter.
func render(cmd *cobra.Command, g *globals, v interface{}, table func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if g.output == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("format output: %w", err)
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}
