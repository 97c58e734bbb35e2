package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"heritage_tree/internal/layout"
	"heritage_tree/internal/render"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		format string
		out    string
		width  float64
		height float64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the family tree to SVG or PNG",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if format != "svg" && format != "png" {
				return fmt.Errorf("unsupported format: %s", format)
			}

			people, closeStore, err := a.openPeople(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			tree := people.Tree(format)
			if out == "" {
				if format == "png" {
					out = render.ExportFilename(time.Now())
				} else {
					out = "family_tree.svg"
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("failed to close %s: %w", out, cerr)
				}
			}()

			if format == "png" {
				err = render.WritePNG(f, tree.Scene)
			} else {
				view := layout.InitialTransform(width, a.cfg.ViewConfig())
				err = render.WriteSVG(f, tree.Scene, view, width, height)
			}
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", format, err)
			}
			a.logger.Info("Rendered %d people to %s", len(tree.Layout.Nodes), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "svg", "output format: svg or png")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().Float64Var(&width, "width", 1200, "svg viewport width")
	cmd.Flags().Float64Var(&height, "height", 800, "svg viewport height")
	return cmd
}
