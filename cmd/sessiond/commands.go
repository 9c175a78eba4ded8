package main

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sealedsession/pkg/config"
	"github.com/dmitrymomot/sealedsession/pkg/seal"
	"github.com/dmitrymomot/sealedsession/pkg/session"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
}

func keygenCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random password suitable for SESSION_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := generatePassword(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), password)
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", 48, "Password length in characters")

	return cmd
}

func inspectCmd() *cobra.Command {
	var (
		passwords []string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Unseal a session cookie value and print its JSON payload",
		Long: `Unseal a session cookie value and print its JSON payload.

Passwords default to SESSION_PASSWORD followed by SESSION_PREVIOUS_PASSWORDS.
Expired or tampered tokens are reported as errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(passwords) == 0 {
				var cfg session.Config
				if err := config.Load(&cfg); err != nil {
					return err
				}
				passwords = append([]string{cfg.Password}, cfg.PreviousPasswords...)
			}

			payload, err := unsealPayload(args[0], passwords, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&passwords, "password", "p", nil, "Password to try, may be repeated")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Reject tokens minted with a longer lifetime")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sessiond %s (%s) %s\n", version, commit, runtime.Version())
		},
	}
}

var errPasswordLength = errors.New("sessiond.password_length")

// generatePassword returns length base64url characters drawn from crypto/rand.
func generatePassword(length int) (string, error) {
	if length < seal.MinPasswordLength {
		return "", fmt.Errorf("%w: need at least %d characters, got %d", errPasswordLength, seal.MinPasswordLength, length)
	}

	buf := make([]byte, base64.RawURLEncoding.DecodedLen(length)+1)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}

func unsealPayload(token string, passwords []string, ttl time.Duration) (string, error) {
	passwords = slices.DeleteFunc(passwords, func(p string) bool { return p == "" })

	s, err := seal.New(passwords, seal.WithTTL(ttl))
	if err != nil {
		return "", err
	}

	raw, err := s.UnsealBytes(token)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", errors.Join(seal.ErrDeserialize, err)
	}
	return out.String(), nil
}
