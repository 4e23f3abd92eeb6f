package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstring/internal/app"
	"redstring/internal/board"
	"redstring/internal/render"
	"redstring/internal/scene"
)

func publishCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Copy the saved board to the public board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, found, err := app.LoadDocument(s.store, app.EditorDataKey)
			if err != nil {
				return err
			}
			if !found {
				return errors.New("nothing to publish, save the board first")
			}
			if err := app.SaveDocument(s.store, app.PublicDataKey, doc); err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
			s.logger.Info("board published", zap.Int("nodes", len(doc.Nodes)))
			fmt.Fprintf(cmd.OutOrStdout(), "%s published %d notes and %d strings\n",
				good.Sprint("✓"), len(doc.Nodes), len(doc.Links))
			return nil
		},
	}
}

// boardHost is what the export commands need from an editor or public
// board.
type boardHost interface {
	Document() *board.Document
	Scene() *scene.Scene
}

func exportCmd(g *globals) *cobra.Command {
	var (
		public  bool
		cols    int
		rows    int
		scale   float64
		padding float64
		reasons bool
	)

	cmd := &cobra.Command{
		Use:       "export png|txt FILE",
		Short:     "Export the saved board as a PNG image or a text snapshot",
		ValidArgs: []string{"png", "txt"},
		Long: `Export the board without opening it.

png draws the whole board; txt draws what a terminal of --cols by --rows
cells shows through the saved camera.

  redstring export png board.png
  redstring export txt board.txt --cols 120 --rows 40
  redstring export png --public site.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, filename := strings.ToLower(args[0]), args[1]
			if format != "png" && format != "txt" {
				return fmt.Errorf("unknown format %q, want png or txt", args[0])
			}
			if cols < 1 || rows < 1 {
				return errors.New("--cols and --rows must be positive")
			}
			if scale <= 0 {
				return errors.New("--scale must be positive")
			}
			if filepath.Ext(filename) == "" {
				filename += "." + format
			}

			s, err := g.open(false)
			if err != nil {
				return err
			}
			defer s.Close()
			path, err := s.cfg.SavePath(filename)
			if err != nil {
				return err
			}

			vp := &render.Viewport{Cols: cols, Rows: rows, CellW: s.cfg.Surface.CellWidth, CellH: s.cfg.Surface.CellHeight}
			var host boardHost
			if public {
				host = app.NewPublic(s.store, vp, app.Options{CameraKey: s.cfg.Camera.PublicKey, HitWidth: s.cfg.Surface.HitWidth}, s.logger)
			} else {
				host = app.NewEditor(s.store, vp, app.Options{CameraKey: s.cfg.Camera.EditorKey, HitWidth: s.cfg.Surface.HitWidth}, s.logger)
			}

			switch format {
			case "png":
				opts := render.DefaultPNGOptions()
				opts.Scale, opts.Padding, opts.Reasons = scale, padding, reasons
				err = render.ExportPNG(host.Document(), path, opts)
			case "txt":
				err = render.ExportTXT(host.Scene(), path)
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			abs, _ := filepath.Abs(path)
			s.logger.Info("board exported", zap.String("path", abs))
			fmt.Fprintf(cmd.OutOrStdout(), "%s exported to %s\n", good.Sprint("✓"), abs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "export the public board instead of the saved one")
	cmd.Flags().IntVar(&cols, "cols", 80, "txt: terminal width in cells")
	cmd.Flags().IntVar(&rows, "rows", 24, "txt: terminal height in cells")
	cmd.Flags().Float64Var(&scale, "scale", 1, "png: pixels per board unit")
	cmd.Flags().Float64Var(&padding, "padding", 60, "png: margin around the notes, in board units")
	cmd.Flags().BoolVar(&reasons, "reasons", true, "png: print the reason of every string")
	return cmd
}

func suggestionsCmd(g *globals) *cobra.Command {
	var (
		last int
		kind string
	)

	cmd := &cobra.Command{
		Use:     "suggestions",
		Aliases: []string{"inbox"},
		Short:   "List what visitors suggested from the public board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var only board.Kind
			if kind != "" {
				k, err := board.ParseKind(kind)
				if err != nil {
					return err
				}
				only = k
			}

			s, err := g.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			subs, err := app.LoadSubmissions(s.store)
			if err != nil {
				return err
			}
			if only != "" {
				kept := subs[:0]
				for _, sub := range subs {
					if sub.Kind == only {
						kept = append(kept, sub)
					}
				}
				subs = kept
			}
			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, subtle.Sprint("No suggestions yet."))
				return nil
			}
			if last > 0 && len(subs) > last {
				subs = subs[len(subs)-last:]
			}

			for i := len(subs) - 1; i >= 0; i-- {
				sub := subs[i]
				fmt.Fprintf(out, "%s  %-5s  %s\n",
					subtle.Sprint(sub.CreatedAt.Local().Format("2006-01-02 15:04")),
					sub.Kind.Label(), brand.Sprint(sub.Title))
				fmt.Fprintf(out, "    %s\n", sub.Description)
				if sub.Email != "" {
					fmt.Fprintf(out, "    %s\n", subtle.Sprint(sub.Email))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 0, "only show the newest n")
	cmd.Flags().StringVar(&kind, "kind", "", "only show one kind: movie, tv, music or book")
	return cmd
}
