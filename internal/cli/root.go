// Package cli is the offline postctl command: it renders saved scene
// documents and prints sample content without running the server.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type App struct {
	RelayURL     string
	FetchTimeout time.Duration
	PrettyJSON   bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "postctl",
		Short:        "Render and inspect social post scenes offline",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Flatten a saved scene to a PNG
  postctl render scene.json -o post.png

  # Same scene as JPEG, fetching remote images through a relay
  postctl render scene.json --format jpeg --relay http://localhost:3000/api/proxy-image

  # Print the sample content used when generation is unavailable
  postctl mock "a peaceful walk in the forest"
`),
	}

	cmd.PersistentFlags().StringVar(&app.RelayURL, "relay", envOr("IMAGE_RELAY_URL", ""), "Fetch remote images through this relay (?url=)")
	cmd.PersistentFlags().DurationVar(&app.FetchTimeout, "fetch-timeout", 15*time.Second, "Timeout for each remote image fetch")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newMockCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
