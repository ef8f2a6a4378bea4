package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagJSON   bool
)

const timeLayout = "2006-01-02 15:04:05"

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse archived test runs on an agentctl server",
	}

	cmd.PersistentFlags().StringVar(&flagServer, "server", "", "server URL (default client.server_url)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	cmd.AddCommand(newRunsListCmd())
	cmd.AddCommand(newRunsGetCmd())
	cmd.AddCommand(newRunsLogsCmd())
	return cmd
}

func init() {
	rootCmd.AddCommand(newRunsCmd())
}

func getClient() (*Client, error) {
	if flagServer != "" {
		return NewClient(flagServer), nil
	}
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewClient(cfg.Client.ServerURL), nil
}

func newRunsListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			list, err := client.ListRuns(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, list)
			}

			var rows [][]string
			for _, r := range list.Items {
				rows = append(rows, []string{
					r.ID.String(),
					string(r.Status),
					fmt.Sprintf("%d/%d", r.Passed, r.Total),
					strconv.Itoa(r.Failed),
					strconv.Itoa(r.Skipped),
					r.StartedAt.Local().Format(timeLayout),
					(time.Duration(r.DurationMs) * time.Millisecond).String(),
				})
			}
			printTable(out, []string{"ID", "STATUS", "PASSED", "FAILED", "SKIPPED", "STARTED AT", "DURATION"}, rows)
			fmt.Fprintf(out, "\nShowing %d of %d runs\n", len(list.Items), list.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	return cmd
}

func newRunsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get RUN_ID",
		Short: "Show a run and its agent results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			run, err := client.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, run)
			}

			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "Status:   %s\n", run.Status)
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(timeLayout))
			fmt.Fprintf(out, "Duration: %s\n", time.Duration(run.DurationMs)*time.Millisecond)
			fmt.Fprintf(out, "Passed:   %d/%d\n\n", run.Passed, run.Total)

			var rows [][]string
			for _, res := range run.Results {
				exit := "-"
				if res.Outcome != "skipped" && res.Outcome != "timeout" {
					exit = strconv.Itoa(res.ExitCode)
				}
				rows = append(rows, []string{
					res.Agent,
					res.Outcome,
					exit,
					(time.Duration(res.DurationMs) * time.Millisecond).String(),
				})
			}
			printTable(out, []string{"AGENT", "OUTCOME", "EXIT CODE", "DURATION"}, rows)
			return nil
		},
	}
}

func newRunsLogsCmd() *cobra.Command {
	var stream string

	cmd := &cobra.Command{
		Use:   "logs RUN_ID AGENT",
		Short: "Print the captured output of one agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			data, err := client.Artifact(cmd.Context(), args[0], args[1], stream)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&stream, "stream", "stdout", "stdout or stderr")
	return cmd
}
