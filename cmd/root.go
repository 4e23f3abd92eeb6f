// Package cmd is the redstring command line: the two boards and a few
// maintenance commands that work on the same store.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstring/internal/config"
	"redstring/internal/kv"
	"redstring/internal/logging"
	"redstring/internal/tui"
)

var version = "0.3.0"

var (
	brand  = color.New(color.FgHiRed, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
)

// globals holds the persistent flags.
type globals struct {
	configPath string
	storePath  string
}

// session is what every command runs against.
type session struct {
	cfg    *config.Config
	store  kv.Store
	logger *zap.Logger
	closer func()
}

func (s *session) Close() {
	if s.closer != nil {
		s.closer()
	}
	s.logger.Sync()
}

// open loads the config, the logger and the store. With fallback set an
// unusable store file is replaced by an in-memory one so the board still
// opens; nothing is persisted then.
func (g *globals) open(fallback bool) (*session, error) {
	cfg := config.Load()
	if g.configPath != "" {
		cfg = config.LoadFile(g.configPath)
	}
	if g.storePath != "" {
		cfg.StorePath = g.storePath
	}

	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		warn.Fprintf(os.Stderr, "redstring: %v, logging disabled\n", err)
		logger = zap.NewNop()
	}

	s := &session{cfg: cfg, logger: logger}
	db, err := kv.OpenSQLite(cfg.StorePath)
	if err != nil {
		if !fallback {
			logger.Sync()
			return nil, err
		}
		logger.Warn("store unavailable, using memory", zap.String("path", cfg.StorePath), zap.Error(err))
		warn.Fprintf(os.Stderr, "redstring: %v\nChanges will not be saved.\n", err)
		s.store = kv.NewMemory()
		return s, nil
	}
	s.store = db
	s.closer = func() {
		if err := db.Close(); err != nil {
			logger.Debug("closing store", zap.Error(err))
		}
	}
	logger.Debug("store opened", zap.String("path", cfg.StorePath))
	return s, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "redstring",
		Short: "redstring, a corkboard of movies, shows, music and books",
		Long: brand.Sprint("redstring") + " pins what you watch, hear and read to a board\n" +
			subtle.Sprint("and ties the notes together with red string."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(true)
			if err != nil {
				return err
			}
			defer s.Close()
			return tui.RunEditor(s.store, s.cfg, s.logger)
		},
	}
	root.SetVersionTemplate("redstring {{ .Version }}\n")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&g.storePath, "store", "", "store file, overrides store_path")

	root.AddCommand(
		publicCmd(g),
		publishCmd(g),
		exportCmd(g),
		suggestionsCmd(g),
		configCmd(g),
	)
	return root
}

func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "redstring: %v\n", err)
		return err
	}
	return nil
}

func publicCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "public",
		Short: "Open the published board read-only, with the suggestion form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(true)
			if err != nil {
				return err
			}
			defer s.Close()
			return tui.RunPublic(s.store, s.cfg, s.logger)
		},
	}
}

func configCmd(g *globals) *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration redstring runs with.

  redstring config          # print it
  redstring config --init   # write the defaults to the config file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				path = config.Path()
			}
			cfg := config.LoadFile(path)
			out := cmd.OutOrStdout()

			if initFile {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists", path)
				}
				if err := config.Save(config.Default(), path); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
				fmt.Fprintf(out, "%s wrote %s\n", good.Sprint("✓"), path)
				return nil
			}

			fmt.Fprintln(out, subtle.Sprint("# "+path))
			fmt.Fprintf(out, "save_directory = %q\n", cfg.SaveDirectory)
			fmt.Fprintf(out, "store_path     = %q\n", cfg.StorePath)
			fmt.Fprintf(out, "log_file       = %q\n", cfg.LogFile)
			fmt.Fprintf(out, "confirmations  = %t\n", cfg.Confirmations)
			fmt.Fprintf(out, "cell size      = %gx%g, hit width %g\n", cfg.Surface.CellWidth, cfg.Surface.CellHeight, cfg.Surface.HitWidth)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write the default config file")
	return cmd
}
