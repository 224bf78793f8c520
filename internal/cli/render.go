package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/render"
	"osonaiAPI/internal/types/canvas"
)

func newRenderCmd(app *App) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <scene.json|->",
		Short: "Flatten a scene document into a PNG or JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return writeErr(cmd, err)
			}
			view, err := readScene(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sc, err := canvas.ToScene(view)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid scene: %w", err))
			}

			r := render.NewRenderer(imagesource.NewFetcher(app.RelayURL, app.FetchTimeout, 0), nil)
			data, warnings, err := r.Export(cmd.Context(), sc, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}

			if output == "" {
				output = f.FileName()
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return writeErr(cmd, err)
			}

			width, height := sc.AspectRatio.ExportSize()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"output":  output,
					"format":  f,
					"width":   width,
					"height":  height,
					"bytes":   len(data),
					"skipped": len(warnings),
				},
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default post.<format>)")
	cmd.Flags().StringVar(&format, "format", "png", "Output format (png|jpeg)")
	return cmd
}

func readScene(cmd *cobra.Command, path string) (canvas.SceneView, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return canvas.SceneView{}, err
		}
		defer f.Close()
		r = f
	}

	var view canvas.SceneView
	if err := json.NewDecoder(r).Decode(&view); err != nil {
		return canvas.SceneView{}, fmt.Errorf("failed to parse scene: %w", err)
	}
	return view, nil
}
