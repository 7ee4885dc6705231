package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/app"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/config"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
)

// Version is set at build time
var Version = "0.1.0"

type cli struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "kioskctl",
		Short: "Administrative CLI for the kiosk service",
		Long: `kioskctl manages the kiosk service database directly.

It uses the same configuration as the API server: defaults, then the YAML
file given by --config (or $KIOSK_CONFIG), then environment variables.`,
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to YAML config (defaults to $KIOSK_CONFIG)")

	root.AddCommand(c.initDBCmd(), c.userCmd(), c.sessionsCmd())
	return root
}

// open loads the configuration and wires services on a fresh connection.
// The returned func closes the connection.
func (c *cli) open() (*app.Container, func(), error) {
	cfg, err := config.Load(config.ResolvePath(c.configPath))
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	ct, err := app.New(cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return ct, func() { db.Close() }, nil
}

func (c *cli) initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create missing tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, closeDB, err := c.open()
			if err != nil {
				return err
			}
			defer closeDB()
			if err := ct.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}

func (c *cli) sessionsCmd() *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	sessions.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every expired session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, closeDB, err := c.open()
			if err != nil {
				return err
			}
			defer closeDB()
			n, err := ct.Sessions.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", n)
			return nil
		},
	})
	sessions.AddCommand(&cobra.Command{
		Use:   "revoke <token>",
		Short: "Delete the session for a token, expired or not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, closeDB, err := c.open()
			if err != nil {
				return err
			}
			defer closeDB()
			if err := ct.Sessions.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session revoked")
			return nil
		},
	})
	return sessions
}
