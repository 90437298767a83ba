package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"credaq/internal/ipc"
)

func newSpeedCommand(ctx *commandContext) *cobra.Command {
	speedCmd := &cobra.Command{
		Use:   "speed",
		Short: "Goniometer rotation speed setting",
	}

	speedCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the current speed setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SpeedGet()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rotation speed setting: %d\n", resp.Speed)
				return nil
			})
		},
	})

	speedCmd.AddCommand(&cobra.Command{
		Use:   "set <value>",
		Short: "Change the speed setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("speed must be an integer: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SpeedSet(value)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rotation speed setting: %d\n", resp.Speed)
				return nil
			})
		},
	})

	return speedCmd
}
