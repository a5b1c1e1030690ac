// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/dispatch"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/model"
)

// newActionCmd builds the "lock" or "unlock" command.
func newActionCmd(name string) *cobra.Command {
	action, err := model.ParseAction(name)
	if err != nil {
		panic(err)
	}
	short := map[model.ActionKind]string{
		model.ActionLock:   "Lock the screens of the given boards",
		model.ActionUnlock: "Unlock the screens of the given boards",
	}
	var all bool
	cmd := &cobra.Command{
		Use:   name + " [address...]",
		Short: short[action],
		Example: fmt.Sprintf(`  boardlock %[1]s 10.46.197.21 10.46.197.22
  boardlock %[1]s --all`, name),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New(i18n.T("dispatch.no_devices"))
			}
			return withPanel(func(p *core.Panel) error {
				out := cmd.OutOrStdout()
				var res dispatch.BatchResult
				if all {
					if len(p.Devices()) == 0 {
						return errors.New(i18n.T("devices.empty"))
					}
					fmt.Fprintln(out, i18n.T("dispatch.started", actionLabel(action), len(p.Devices())))
					res = p.ApplyAll(cmd.Context(), action)
				} else {
					fmt.Fprintln(out, i18n.T("dispatch.started", actionLabel(action), len(args)))
					res = p.Apply(cmd.Context(), action, args)
				}
				printBatch(out, res)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Target every known board")
	return cmd
}

func printBatch(out io.Writer, res dispatch.BatchResult) {
	if len(res.Results) == 0 {
		fmt.Fprintln(out, i18n.T("dispatch.no_devices"))
		return
	}
	for _, r := range res.Results {
		if !r.OK() {
			fmt.Fprintln(out, i18n.T("dispatch.failed", r.Address, r.Err))
		}
	}
	fmt.Fprintln(out, i18n.T("dispatch.finished", actionLabel(res.Action), res.Succeeded(), res.Failed()))
}

func actionLabel(a model.ActionKind) string {
	switch a {
	case model.ActionLock:
		return i18n.T("action.lock")
	case model.ActionUnlock:
		return i18n.T("action.unlock")
	}
	return a.String()
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Evaluate the schedule once and apply the active slot",
		Long: `Looks up the slot active right now and sends its action to every known
board. Useful from cron when the headless service is not running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				now := time.Now()
				slot, ok := p.Tick(cmd.Context(), now)
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.now_idle", model.WeekdayOf(now), model.Clock(now)))
					return nil
				}
				p.Wait()
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.tick_fired", actionLabel(slot.Action), slot))
				return nil
			})
		},
	}
}
