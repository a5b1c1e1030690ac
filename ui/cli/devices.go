// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/model"
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

func newDevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"boards"},
		Short:   "Show or clear the known board list",
	}

	var copyList bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the boards found by the last scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				out := cmd.OutOrStdout()
				addrs := model.Addresses(p.Devices())
				if len(addrs) == 0 {
					fmt.Fprintln(out, i18n.T("devices.empty"))
					return nil
				}
				fmt.Fprintln(out, i18n.T("devices.header"))
				for _, a := range addrs {
					fmt.Fprintln(out, "  "+a)
				}
				if copyList {
					if err := clipboardWrite(strings.Join(addrs, "\n")); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("devices.copy_failed", err))
					} else {
						fmt.Fprintln(out, i18n.T("devices.copied", len(addrs)))
					}
				}
				return nil
			})
		},
	}
	listCmd.Flags().BoolVarP(&copyList, "copy", "c", false, "Copy the addresses to the clipboard")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every known board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				p.ClearDevices()
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("devices.cleared"))
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}
