// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/scan"
)

func newScanCmd() *cobra.Command {
	var rangeText string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find boards with a reachable SSH port",
		Long: `Probes every host address of the configured /24 range on the SSH port and
replaces the known board list with the boards that answered.

With --range the given range is scanned and stored as the new setting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				out := cmd.OutOrStdout()
				if cmd.Flags().Changed("range") {
					if _, ok := scan.ParseRange(rangeText); !ok {
						return errors.New(i18n.T("scan.invalid_range", rangeText))
					}
					s := p.Settings()
					s.IPRange = rangeText
					if err := p.UpdateSettings(s); err != nil {
						return err
					}
				}

				ipRange := p.Settings().IPRange
				if _, ok := scan.ParseRange(ipRange); !ok {
					return errors.New(i18n.T("scan.invalid_range", ipRange))
				}

				fmt.Fprintln(out, i18n.T("scan.started", ipRange))
				unsubscribe := p.Subscribe(events.Callbacks{
					OnDeviceFound: func(addr string) {
						fmt.Fprintln(out, i18n.T("scan.found", addr))
					},
				})
				res := p.Scan(cmd.Context())
				unsubscribe()

				if res.Cancelled {
					fmt.Fprintln(out, i18n.T("scan.cancelled"))
					return nil
				}
				fmt.Fprintln(out, i18n.T("scan.finished", len(res.Devices), res.Probed, res.Total))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rangeText, "range", "", "Address range to scan, e.g. 10.46.197.0/24")
	return cmd
}
