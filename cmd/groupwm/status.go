package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/groupwm/internal/wm"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show groups, screens and the focused window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		snap, err := client.Status()
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		// Piped output is for bars and scripts.
		if asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		return printStatus(cmd.OutOrStdout(), snap)
	},
}

func init() {
	statusCmd.Flags().Bool("json", false, "Print the raw status snapshot as JSON")
}

func printStatus(w io.Writer, s *wm.Snapshot) error {
	fmt.Fprintf(w, "group:   %s (%s)\n", s.Group, s.Layout)
	fmt.Fprintf(w, "screen:  %d\n", s.FocusedScreen)
	fmt.Fprintf(w, "focused: %s\n\n", s.FocusedTitle)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tLAYOUT\tSCREEN\tWINDOWS\tFLAGS")
	for _, g := range s.Groups {
		screen := "-"
		if g.Screen >= 0 {
			screen = fmt.Sprint(g.Screen)
		}
		var flags []string
		if g.Name == s.Group {
			flags = append(flags, "current")
		}
		if g.Urgent {
			flags = append(flags, "urgent")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", g.Name, g.Layout, screen, g.Windows, strings.Join(flags, ","))
	}
	return tw.Flush()
}
