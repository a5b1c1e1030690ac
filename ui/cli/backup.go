// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/backup"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/i18n"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore settings, boards and schedule",
		Long: `Backups are zstd-compressed JSON documents holding the settings, the
known boards and the weekly schedule. Importing a backup replaces all three.`,
	}
	cmd.AddCommand(newBackupExportCmd(), newBackupImportCmd())
	return cmd
}

func newBackupExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup (default: boardlock-backup-<date>.json.zst)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := backup.DefaultFilename(time.Now())
			if len(args) == 1 {
				filename = backup.Filename(args[0])
			}
			return withPanel(func(p *core.Panel) error {
				data := backup.New(p.Settings(), p.Devices(), p.Schedule().Snapshot())
				if err := backup.WriteFile(filename, data); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.exported", filename))
				return nil
			})
		},
	}
}

func newBackupImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup, replacing the current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withPanel(func(p *core.Panel) error {
				if err := p.Restore(data.Settings, data.Devices, data.Schedule); err != nil {
					return fmt.Errorf("restore failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.imported", args[0]))
				return nil
			})
		},
	}
}
