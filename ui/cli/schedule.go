// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/model"
	"github.com/toeirei/boardlock/internal/schedule"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show and edit the weekly bell schedule",
		Long: `The schedule holds, for every weekday, a list of time slots. Each slot
either unlocks the boards (lessons) or locks them (breaks). While a slot is
active its action is re-applied on every check.`,
	}
	cmd.AddCommand(
		newScheduleShowCmd(),
		newScheduleGenerateCmd(),
		newScheduleAddCmd(),
		newScheduleRemoveCmd(),
		newScheduleCopyCmd(),
		newScheduleClearCmd(),
		newScheduleNowCmd(),
	)
	return cmd
}

func printDay(out io.Writer, day model.Weekday, slots []model.Slot) {
	fmt.Fprintln(out, i18n.T("schedule.header", day))
	if len(slots) == 0 {
		fmt.Fprintln(out, "  "+i18n.T("schedule.empty"))
		return
	}
	for i, s := range slots {
		fmt.Fprintf(out, "  %2d  %s-%s  %s\n", i+1, s.Start, s.End, actionLabel(s.Action))
	}
}

func newScheduleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [day]",
		Short: "Print the schedule of one day or of the whole week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := model.Weekdays()
			if len(args) == 1 {
				d, err := model.ParseWeekday(args[0])
				if err != nil {
					return err
				}
				days = []model.Weekday{d}
			}
			return withPanel(func(p *core.Panel) error {
				for _, d := range days {
					printDay(cmd.OutOrStdout(), d, p.Schedule().Day(d))
				}
				return nil
			})
		},
	}
}

func newScheduleGenerateCmd() *cobra.Command {
	plan := schedule.DefaultDayPlan()
	var dayName string
	var allDays bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a day of lessons and breaks",
		Long: `Generates alternating slots for one day: every lesson unlocks the boards
and every break between two lessons locks them. The break after lesson
--lunch-after lasts --lunch minutes instead of --break.`,
		Example: `  boardlock schedule generate --day monday
  boardlock schedule generate --start 08:30 --lesson 45 --count 7 --all-days`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dayName == "" && !allDays {
				return errors.New("either --day or --all-days is required")
			}
			if !model.ValidClock(plan.Start) {
				return fmt.Errorf("invalid --start %q, expected HH:MM", plan.Start)
			}
			slots := schedule.GenerateDailySlots(plan)
			if len(slots) == 0 {
				return errors.New("the plan produces no slots")
			}

			var day model.Weekday
			if !allDays {
				d, err := model.ParseWeekday(dayName)
				if err != nil {
					return err
				}
				day = d
			}

			return withPanel(func(p *core.Panel) error {
				out := cmd.OutOrStdout()
				label := i18n.T("all")
				if allDays {
					p.Schedule().CopyToAllDays(slots)
				} else {
					p.Schedule().SetDay(day, slots)
					label = string(day)
				}
				if err := p.SaveSchedule(); err != nil {
					return err
				}
				fmt.Fprintln(out, i18n.T("schedule.generated", len(slots), label))
				if !allDays {
					printDay(out, day, slots)
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&dayName, "day", "d", "", "Day to fill (monday..sunday)")
	f.BoolVar(&allDays, "all-days", false, "Fill every day of the week")
	f.StringVar(&plan.Start, "start", plan.Start, "Start of the first lesson (HH:MM)")
	f.IntVar(&plan.LessonMinutes, "lesson", plan.LessonMinutes, "Lesson length in minutes")
	f.IntVar(&plan.BreakMinutes, "break", plan.BreakMinutes, "Break length in minutes")
	f.IntVar(&plan.LunchAfterLesson, "lunch-after", plan.LunchAfterLesson, "Lesson after which the lunch break starts (0 = none)")
	f.IntVar(&plan.LunchMinutes, "lunch", plan.LunchMinutes, "Lunch break length in minutes")
	f.IntVar(&plan.LessonCount, "count", plan.LessonCount, "Number of lessons")
	return cmd
}

// completeSlotArgs offers day names for the first argument and action names
// for the last.
func completeSlotArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	var out []string
	switch len(args) {
	case 0:
		for _, d := range model.Weekdays() {
			out = append(out, string(d))
		}
	case 3:
		for _, a := range model.Actions() {
			out = append(out, a.String())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newScheduleAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "add <day> <start> <end> <lock|unlock>",
		Short:             "Append a slot to a day",
		Example:           `  boardlock schedule add friday 12:00 13:00 lock`,
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: completeSlotArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := model.ParseWeekday(args[0])
			if err != nil {
				return err
			}
			action, err := model.ParseAction(args[3])
			if err != nil {
				return err
			}
			slot := model.Slot{Start: args[1], End: args[2], Action: action}
			if !slot.Valid() {
				return fmt.Errorf("invalid slot %s-%s, expected HH:MM", args[1], args[2])
			}
			if slot.Start > slot.End {
				return fmt.Errorf("slot %s ends before it starts", slot)
			}
			return withPanel(func(p *core.Panel) error {
				p.Schedule().SetDay(day, append(p.Schedule().Day(day), slot))
				if err := p.SaveSchedule(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.saved"))
				return nil
			})
		},
	}
}

func newScheduleRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <day> <number>",
		Short: "Remove a slot by its number as printed by show",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := model.ParseWeekday(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid slot number %q: %w", args[1], err)
			}
			return withPanel(func(p *core.Panel) error {
				slots := p.Schedule().Day(day)
				if n < 1 || n > len(slots) {
					return fmt.Errorf("%s has no slot %d", day, n)
				}
				p.Schedule().SetDay(day, slices.Delete(slots, n-1, n))
				if err := p.SaveSchedule(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.saved"))
				return nil
			})
		},
	}
}

func newScheduleCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <day>",
		Short: "Copy one day's slots to every day of the week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := model.ParseWeekday(args[0])
			if err != nil {
				return err
			}
			return withPanel(func(p *core.Panel) error {
				p.Schedule().CopyToAllDays(p.Schedule().Day(day))
				if err := p.SaveSchedule(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.copied", day))
				return nil
			})
		},
	}
}

func newScheduleClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <day|all>",
		Short: "Remove every slot of a day, or of the whole week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var days []model.Weekday
			var label string
			if strings.EqualFold(args[0], "all") {
				days = model.Weekdays()
				label = i18n.T("all")
			} else {
				d, err := model.ParseWeekday(args[0])
				if err != nil {
					return err
				}
				days = []model.Weekday{d}
				label = string(d)
			}
			return withPanel(func(p *core.Panel) error {
				for _, d := range days {
					p.Schedule().ClearDay(d)
				}
				if err := p.SaveSchedule(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.cleared", label))
				return nil
			})
		},
	}
}

func newScheduleNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Show the slot active right now without applying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				now := time.Now()
				day, clock := model.WeekdayOf(now), model.Clock(now)
				if slot, ok := p.ActiveSlot(now); ok {
					fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.now_active", day, clock, slot))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), i18n.T("schedule.now_idle", day, clock))
				}
				return nil
			})
		},
	}
}
