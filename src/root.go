package main

import (
	"fmt"
	"strings"

	"github.com/contre95/dispatch/src/features/config"
	"github.com/contre95/dispatch/src/music"
	"github.com/spf13/cobra"
)

// runFlags are the command line overrides of the configuration file.
type runFlags struct {
	configPath  string
	format      string
	verbose     bool
	move        bool
	dryRun      bool
	workers     int
	watch       bool
	asciify     bool
	strict      bool
	prune       bool
	historyPath string
	metricsPort uint32
}

func newRootCommand() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "dispatch [flags] SOURCE DEST",
		Short: "Sort media files into a directory tree built from their tags",
		Long: fmt.Sprintf(`dispatch walks SOURCE, reads the tags of every media file (%s)
and copies (or moves, with -m) it to DEST/<format>.<ext>.

Format codes: %%a artist, %%A album, %%t track number (two digits), %%T title, %%y year.`,
			strings.Join(music.SupportedExtensions(), ", ")),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runDispatch(cmd.Context(), cmd.OutOrStdout(), cfg, flags.verbose, args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (YAML, or TOML with a .toml extension)")
	rootCmd.PersistentFlags().StringVar(&flags.historyPath, "history", "", "Record results in the SQLite journal at this path")

	f := rootCmd.Flags()
	f.StringVarP(&flags.format, "format", "f", config.Default().Format, "Destination path format")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Log every file, including skipped ones")
	f.BoolVarP(&flags.move, "move", "m", false, "Move files instead of copying them")
	f.BoolVarP(&flags.dryRun, "dry-run", "n", false, "Print where files would go without touching anything")
	f.IntVarP(&flags.workers, "workers", "j", 1, "Number of files dispatched concurrently")
	f.BoolVar(&flags.watch, "watch", false, "Keep running and dispatch files added to SOURCE")
	f.BoolVar(&flags.asciify, "asciify", false, "Transliterate tag values to ASCII")
	f.BoolVar(&flags.strict, "strict", false, "Reject unknown format codes instead of dropping them")
	f.BoolVar(&flags.prune, "prune", false, "Remove source directories left empty by a move")
	f.Uint32Var(&flags.metricsPort, "metrics-port", 0, "Serve /health, /metrics and /stats on this port")

	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newHistoryCommand(flags))
	return rootCmd
}

// loadConfig reads the configuration file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("move") {
		cfg.Move = flags.move
	}
	if changed("dry-run") {
		cfg.DryRun = flags.dryRun
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("watch") {
		cfg.Watch.Enabled = flags.watch
	}
	if changed("asciify") {
		cfg.Asciify = flags.asciify
	}
	if changed("strict") {
		cfg.StrictTemplate = flags.strict
	}
	if changed("prune") {
		cfg.PruneEmptyDirs = flags.prune
	}
	if changed("history") {
		cfg.History.Enabled = true
		cfg.History.Path = flags.historyPath
	}
	if changed("metrics-port") {
		cfg.Server.Enabled = true
		cfg.Server.Port = flags.metricsPort
	}
	if flags.verbose {
		cfg.Logger.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newConfigCommand(flags *runFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "dispatch.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	})

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			var out string
			if asJSON {
				out, err = cfg.JSON()
			} else {
				out, err = cfg.YAML()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	configCmd.AddCommand(show)

	return configCmd
}
