package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/blacktop/mcp-speak/internal/voicevox"
)

var (
	engineHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleIDStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	offlineStyle      = lipgloss.NewStyle().Faint(true).Italic(true)
)

// speakersCmd queries each engine live, unlike the server which snapshots
// catalogs once at startup. Handy for checking what an engine reports
// before restarting the server.
var speakersCmd = &cobra.Command{
	Use:   "speakers",
	Short: "List the speakers and styles each local engine currently reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		engines := []struct {
			name string
			port int
		}{
			{"VOICEVOX", voicevoxPort},
			{"AivisSpeech", aivisPort},
		}

		for _, engine := range engines {
			fmt.Printf("%s\n", engineHeaderStyle.Render(fmt.Sprintf("%s (port %d)", engine.name, engine.port)))

			client := voicevox.NewClient(fmt.Sprintf("http://localhost:%d", engine.port), engineTimeout)
			speakers, err := client.Speakers(cmd.Context())
			if err != nil {
				fmt.Printf("  %s\n\n", offlineStyle.Render("engine offline"))
				continue
			}

			for _, speaker := range speakers {
				for _, style := range speaker.Styles {
					fmt.Printf("  %s %s\n",
						styleIDStyle.Render(fmt.Sprintf("%6d", style.ID)),
						voicevox.StyleLabel(speaker, style))
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speakersCmd)
}
