package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/groupwm/internal/ipc"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <command> [args...]",
	Short: "Run a window manager command",
	Long: "Run one command in the daemon, as a key binding would.\n" +
		"Run 'groupwm commands' for the list of command names.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		err = client.Dispatch(args[0], args[1:]...)
		if errors.Is(err, ipc.ErrNotFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "ignored: %v\n", err)
			return nil
		}
		return err
	},
}

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List key bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		data, err := client.Bindings()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, b := range data.Bindings {
			fmt.Fprintf(tw, "%s\t%s\n", b.Trigger, strings.Join(b.Actions, "; "))
		}
		return tw.Flush()
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the commands dispatch accepts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		data, err := client.Commands()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, c := range data.Commands {
			fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Description)
		}
		return tw.Flush()
	},
}
