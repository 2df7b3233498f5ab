package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Ping(); err != nil {
			return err
		}

		// stdout carries the protocol; logs go to stderr only when asked.
		var out io.Writer = io.Discard
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			out = os.Stderr
		}
		log, err := logger.New(logger.WithWriter(out))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return mcp.NewServer(client, log).Run(ctx)
	},
}

func init() {
	mcpServeCmd.Flags().BoolP("verbose", "v", false, "Log tool calls to stderr")
	mcpCmd.AddCommand(mcpServeCmd)
}
