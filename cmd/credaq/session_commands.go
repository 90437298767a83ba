package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"credaq/internal/ipc"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var sample string
	var exposureMillis int
	var frames int
	var autoStop bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a collection session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				req := ipc.StartRequest{
					Sample:         sample,
					ExposureMillis: exposureMillis,
					FrameCapacity:  frames,
				}
				if cmd.Flags().Changed("auto-stop") {
					req.AutoStop = &autoStop
				}

				resp, err := client.Start(req)
				if err != nil {
					return err
				}
				if !resp.Started {
					return fmt.Errorf("start session: %s", resp.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s started\n", resp.SessionID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sample, "sample", "", "Sample name (defaults to the configured name)")
	cmd.Flags().IntVar(&exposureMillis, "exposure", 0, "Exposure time per frame in milliseconds")
	cmd.Flags().IntVar(&frames, "frames", 0, "Frame buffer capacity")
	cmd.Flags().BoolVar(&autoStop, "auto-stop", false, "Stop automatically when rotation ends")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if !resp.Stopped {
					return fmt.Errorf("stop session: %s", resp.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stop requested; the session finalizes at its next frame boundary")
				return nil
			})
		},
	}
}

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect archived sessions",
	}
	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionList(limit)
				if err != nil {
					return err
				}
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No archived sessions")
					return nil
				}

				rows := make([][]string, 0, len(resp.Sessions))
				for _, rec := range resp.Sessions {
					rows = append(rows, []string{
						rec.ID,
						rec.Sample,
						rec.State,
						strconv.Itoa(rec.FramesCollected),
						fmt.Sprintf("%.2f°", rec.RotationRange),
						rec.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Sample", "State", "Frames", "Range", "Finished"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list (0 for all)")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDescribe(args[0])
				if err != nil {
					return err
				}
				rec := resp.Session

				rows := [][]string{
					{"ID", rec.ID},
					{"Sample", rec.Sample},
					{"State", rec.State},
					{"Directory", rec.ExperimentDir},
					{"Frames", strconv.Itoa(rec.FramesCollected)},
					{"Start angle", fmt.Sprintf("%.4f°", rec.StartAngle)},
					{"End angle", fmt.Sprintf("%.4f°", rec.EndAngle)},
					{"Rotation range", fmt.Sprintf("%.4f°", rec.RotationRange)},
					{"Oscillation angle", fmt.Sprintf("%.4f°", rec.OscillationAngle)},
					{"Rotation speed", fmt.Sprintf("%.4f°/s", rec.RotationSpeed)},
					{"Exposure", (time.Duration(rec.ExposureMillis) * time.Millisecond).String()},
					{"Total time", (time.Duration(rec.TotalMillis) * time.Millisecond).String()},
					{"Finished", rec.FinishedAt.Local().Format("2006-01-02 15:04:05")},
				}
				if rec.AbortReason != "" {
					rows = append(rows, []string{"Abort reason", rec.AbortReason})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}
