package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/groupwm/internal/ipc"
	"github.com/1broseidon/groupwm/internal/runtimepath"
)

var rootCmd = &cobra.Command{
	Use:           "groupwm",
	Short:         "A tiling window manager built around named groups",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("display", "", "X display (default: $DISPLAY)")
	rootCmd.AddCommand(daemonCmd, statusCmd, dispatchCmd, bindingsCmd, commandsCmd, configCmd, mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// displayFlag returns --display, falling back to $DISPLAY.
func displayFlag(cmd *cobra.Command) string {
	display, _ := cmd.Flags().GetString("display")
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	return display
}

// newClient connects to the daemon serving the selected display.
func newClient(cmd *cobra.Command) (*ipc.Client, error) {
	socket, err := runtimepath.SocketPath(displayFlag(cmd))
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(socket), nil
}
