// Package cli implements jobsctl, the operator tool for background jobs.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/userhub/userhub/internal/app"
)

// Execute runs the CLI.
func Execute() int {
	if err := NewRootCmd(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree. A nil jobsCLI is created lazily from
// the --redis flag.
func NewRootCmd(jobsCLI *JobsCLI) *cobra.Command {
	var (
		redisAddr string
		output    string
	)

	rootCmd := &cobra.Command{
		Use:           "jobsctl",
		Short:         "Trigger and inspect userhub background jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
			}
			if jobsCLI != nil {
				return nil
			}
			opts, err := queueOptions(redisAddr, cmd.Flags().Changed("redis"))
			if err != nil {
				return err
			}
			jobsCLI = NewJobsCLI(opts)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if jobsCLI == nil {
				return nil
			}
			return jobsCLI.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "127.0.0.1:6379", "Redis address of the job queue (overrides REDIS_ADDR)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	cli := func() *JobsCLI { return jobsCLI }
	format := func() string { return output }
	rootCmd.AddCommand(newTriggerCmd(cli))
	rootCmd.AddCommand(newStatsCmd(cli, format))
	rootCmd.AddCommand(newScheduledCmd(cli, format))
	return rootCmd
}

// queueOptions reads REDIS_ADDR, REDIS_PASSWORD and REDIS_DB; an explicit
// --redis flag overrides the address.
func queueOptions(flagAddr string, flagSet bool) (asynq.RedisClientOpt, error) {
	rc, err := app.LoadRedisConfig()
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	if flagSet {
		rc.RedisAddr = flagAddr
	}
	return rc.Asynq(), nil
}

func newTriggerCmd(cli func() *JobsCLI) *cobra.Command {
	var opts TriggerOptions
	cmd := &cobra.Command{
		Use:   "trigger <job>",
		Short: "Enqueue a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := cli().Trigger(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
	cmd.Flags().DurationVar(&opts.Grace, "grace", 0, "Keep records that expired less than this long ago")
	return cmd
}

func newStatsCmd(cli func() *JobsCLI, format func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show default queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := cli().InspectQueue()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format() == "json" {
				return printJSON(out, stats)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tFAILED")
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
			return tw.Flush()
		},
	}
}

func newScheduledCmd(cli func() *JobsCLI, format func() string) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := cli().ListScheduled(size)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format() == "json" {
				rows := make([]map[string]any, 0, len(tasks))
				for _, t := range tasks {
					rows = append(rows, map[string]any{"id": t.ID, "type": t.Type, "next_process_at": t.NextProcessAt})
				}
				return printJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tNEXT RUN")
			for _, t := range tasks {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&size, "size", 10, "Maximum number of tasks to list")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
