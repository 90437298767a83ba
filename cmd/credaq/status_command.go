package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"credaq/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Running", yesNo(status.Running)},
					{"PID", strconv.Itoa(status.PID)},
					{"State", status.State},
				}
				if status.SessionID != "" {
					rows = append(rows,
						[]string{"Session", status.SessionID},
						[]string{"Sample", status.Sample},
						[]string{"Frames", fmt.Sprintf("%d / %d", status.FramesCollected, status.FrameCapacity)},
						[]string{"Stage angle", fmt.Sprintf("%.4f°", status.LastAngle)},
					)
				}
				rows = append(rows, []string{"Sessions DB", status.SessionsPath})

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
