// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/scan"
	"golang.org/x/term"
)

// readPassword reads a line from the terminal without echo. Tests replace it.
var readPassword = func() (string, error) {
	fmt.Fprint(os.Stderr, i18n.T("settings.ask_pass"))
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return string(b), nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the SSH credentials and the address range",
	}

	var showPass bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				s := p.Settings()
				pass := strings.Repeat("*", len(s.Pass))
				if showPass {
					pass = s.Pass
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, i18n.T("settings.header"))
				fmt.Fprintf(out, "  %-14s %s\n", i18n.T("settings.user")+":", s.User)
				fmt.Fprintf(out, "  %-14s %s\n", i18n.T("settings.pass")+":", pass)
				fmt.Fprintf(out, "  %-14s %s\n", i18n.T("settings.range")+":", s.IPRange)
				return nil
			})
		},
	}
	showCmd.Flags().BoolVar(&showPass, "show-password", false, "Print the password in clear text")

	var user, pass, ipRange string
	var askPass bool
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Example: `  boardlock settings set --user etapadmin --ask-pass
  boardlock settings set --range 10.46.198.0/24`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if !f.Changed("user") && !f.Changed("pass") && !f.Changed("range") && !askPass {
				return errors.New("nothing to change; use --user, --pass, --ask-pass or --range")
			}
			if f.Changed("range") {
				if _, ok := scan.ParseRange(ipRange); !ok {
					return errors.New(i18n.T("scan.invalid_range", ipRange))
				}
			}
			if askPass {
				p, err := readPassword()
				if err != nil {
					return err
				}
				pass = p
			}
			return withPanel(func(p *core.Panel) error {
				s := p.Settings()
				if f.Changed("user") {
					s.User = user
				}
				if f.Changed("pass") || askPass {
					s.Pass = pass
				}
				if f.Changed("range") {
					s.IPRange = ipRange
				}
				if err := p.UpdateSettings(s); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("settings.saved"))
				return nil
			})
		},
	}
	setCmd.Flags().StringVar(&user, "user", "", "SSH user name")
	setCmd.Flags().StringVar(&pass, "pass", "", "SSH password (visible in the process list, prefer --ask-pass)")
	setCmd.Flags().BoolVar(&askPass, "ask-pass", false, "Prompt for the SSH password")
	setCmd.Flags().StringVar(&ipRange, "range", "", "Address range, e.g. 10.46.197.0/24")
	setCmd.MarkFlagsMutuallyExclusive("pass", "ask-pass")

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}
