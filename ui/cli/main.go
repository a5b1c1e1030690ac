// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Boardlock using the Cobra
// library. It defines the root command, the persistent flags, the config
// bootstrap shared by every subcommand and the main entry point.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/boardlock/buildvars"
	"github.com/toeirei/boardlock/internal/config"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/dispatch"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/scan"
	"github.com/toeirei/boardlock/internal/store"
	"github.com/toeirei/boardlock/internal/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)
var cfgFile string
var verbose bool
var showVersionFlag bool

var appConfig config.Config

// onPanelOpen, when set, is called with every freshly loaded panel.
var onPanelOpen func(*core.Panel)

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		logging.Warnf("%v", err)
	}

	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), optionalConfigPath)
	firstRun := errors.As(err, &viper.ConfigFileNotFoundError{})
	if err != nil && !firstRun {
		return fmt.Errorf("error loading config: %w", err)
	}

	defaults := config.Defaults()
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}
	if appConfig.Store.Type == "" {
		appConfig.Store.Type = defaults["store.type"].(string)
	}

	logging.SetLevel(appConfig.Log.Level)
	if verbose {
		logging.SetDebug(true)
	}
	i18n.Init(appConfig.Language)

	if firstRun {
		// Persist the defaults so the operator has a file to edit.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else if path, pathErr := config.GetConfigPath(false); pathErr == nil {
			logging.Infof("%s", i18n.T("config.written", path))
		}
	}
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// openPanel builds a panel from the loaded config and reads the persisted
// state. The caller must Close it.
func openPanel() (*core.Panel, error) {
	st, err := store.Open(appConfig.Store)
	if err != nil {
		return nil, fmt.Errorf("could not open store: %w", err)
	}
	p := core.New(core.Options{
		Store: st,
		Scan: scan.Config{
			Port:    appConfig.Scan.Port,
			Timeout: appConfig.Scan.Timeout,
			Workers: appConfig.Scan.Workers,
		},
		Dispatch: dispatch.ConnectionConfig{
			ConnectionTimeout: appConfig.Dispatch.ConnectTimeout,
			CommandTimeout:    appConfig.Dispatch.CommandTimeout,
			Port:              appConfig.Dispatch.Port,
			Workers:           appConfig.Dispatch.Workers,
		},
		Commands: dispatch.Commands(appConfig.Dispatch.Commands),
	})
	p.Load()
	if onPanelOpen != nil {
		onPanelOpen(p)
	}
	return p, nil
}

// withPanel runs fn with an open panel and closes it afterwards.
func withPanel(fn func(p *core.Panel) error) error {
	p, err := openPanel()
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logging.Warnf("closing store: %v", err)
		}
	}()
	return fn(p)
}

// runDashboard shows the interactive dashboard. Tests replace it.
var runDashboard = func(ctx context.Context, p *core.Panel) error { return tui.Run(ctx, p) }

// dashboard follows the bell schedule while the operator works in the
// dashboard. The loop and every firing have ended when it returns.
func dashboard(ctx context.Context, p *core.Panel) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.RunSchedule(ctx, appConfig.Schedule.Interval)
	}()

	err := runDashboard(ctx, p)
	cancel()
	wg.Wait()
	p.Wait()
	return err
}

// Execute runs the CLI entrypoint. main should call this and handle the
// process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and configures a new root cobra command. Tests call it
// for fresh, isolated command trees.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardlock",
		Short: "Lock and unlock classroom display boards over SSH.",
		Long: `Boardlock finds the display boards of a classroom network, locks or
unlocks their screens over SSH and follows a weekly bell schedule that
unlocks the boards during lessons and locks them during breaks.

Running without a subcommand will launch the interactive dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), compositeVersion(nil))
				os.Exit(0)
			}
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(func(p *core.Panel) error {
				// Keep log lines from tearing the alt screen.
				logging.SetOutput(io.Discard)
				defer logging.SetOutput(os.Stderr)
				return dashboard(cmd.Context(), p)
			})
		},
	}
	cmd.Version = compositeVersion(nil)

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Language ("en", "tr")`)

	cmd.AddCommand(
		newScanCmd(),
		newActionCmd("lock"),
		newActionCmd("unlock"),
		newDevicesCmd(),
		newScheduleCmd(),
		newSettingsCmd(),
		newServeCmd(),
		newTickCmd(),
		newBackupCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// Printing the version needs neither config nor store.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// compositeVersion renders the one-line version shown by --version.
func compositeVersion(info *debug.BuildInfo) string {
	v, c, d := resolveBuildVersion(info)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/boardlock" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// Without any discovered version, a commit set via ldflags still helps support.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
