// Command sessiond serves a small demo API backed by sealed cookie sessions.
// Login state uses the typed accessor; counters, preferences and the cart
// use the mutation tracked store.
//
// Besides serve, it ships operator helpers: keygen prints a fresh sealing
// password and inspect opens a session cookie with the configured passwords.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessiond",
		Short: "Sealed cookie session demo server and tools",
		Long: `sessiond runs an HTTP API whose state lives entirely in an encrypted,
authenticated session cookie. Configuration is read from the environment
(and an optional .env file):

  SESSION_PASSWORD             sealing password, at least 32 characters
  SESSION_PREVIOUS_PASSWORDS   comma separated passwords still accepted
  SESSION_TTL                  session lifetime, e.g. 336h
  HTTP_ADDR                    listen address`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		keygenCmd(),
		inspectCmd(),
		versionCmd(),
	)

	return rootCmd
}
