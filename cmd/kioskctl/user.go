package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user"
)

func (c *cli) userCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	users.AddCommand(c.userCreateCmd(), c.userSetPasswordCmd(), userHashPasswordCmd())
	return users
}

func (c *cli) userCreateCmd() *cobra.Command {
	var email, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create a user with a bcrypt-hashed password.

If --password is omitted the first line of stdin is used.

Examples:
  kioskctl user create --email ops@example.com --role Admin --password s3cret
  echo s3cret | kioskctl user create --email ops@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrStdin(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ct, closeDB, err := c.open()
			if err != nil {
				return err
			}
			defer closeDB()
			u, err := ct.Users.SignupUser(cmd.Context(), email, pw, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s, role %s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	cmd.Flags().StringVar(&role, "role", "", "role (defaults to KioskUser)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) userSetPasswordCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrStdin(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ct, closeDB, err := c.open()
			if err != nil {
				return err
			}
			defer closeDB()
			if err := ct.Users.SetPassword(cmd.Context(), email, pw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func userHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			pw, err := passwordOrStdin(arg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := user.BcryptHasher{Cost: cost}.Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}

func passwordOrStdin(pw string, in io.Reader) (string, error) {
	if pw != "" {
		return pw, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}
