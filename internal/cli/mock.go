package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"osonaiAPI/internal/generation"
	"osonaiAPI/utils"
)

func newMockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mock <prompt>",
		Short: "Print the sample post content for a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := generation.MockContent(strings.Join(args, " "))
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"title":     content.Title,
					"subtitle":  content.Subtitle,
					"caption":   content.Caption,
					"hashtags":  content.Hashtags,
					"clipboard": utils.ClipboardText(content.Caption, content.Hashtags),
				},
			})
		},
	}
}
