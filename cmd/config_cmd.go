package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/blacktop/mcp-speak/internal/config"
)

var configKeyStyle = lipgloss.NewStyle().Bold(true)

// configCmd shows the persisted per-engine defaults.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the persisted default speakers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		path, err := config.Path()
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", configKeyStyle.Render("config:"), path)
		fmt.Printf("%s %s\n", configKeyStyle.Render("voicevox default speaker:"), formatSpeaker(cfg.VoicevoxDefaultSpeaker))
		fmt.Printf("%s %s\n", configKeyStyle.Render("aivis default speaker:"), formatSpeaker(cfg.AivisDefaultSpeaker))
		native := cfg.NativeDefaultVoice
		if native == "" {
			native = "(system default)"
		}
		fmt.Printf("%s %s\n", configKeyStyle.Render("say default voice:"), native)
		return nil
	},
}

// configSetCmd updates one default. Running servers pick the change up on
// their next dispatch since config is re-read at the point of use.
var configSetCmd = &cobra.Command{
	Use:   "set <voicevox-speaker|aivis-speaker|say-voice> <value>",
	Short: "Set a persisted default speaker or voice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		switch args[0] {
		case "voicevox-speaker":
			id, err := parseSpeakerID(args[1])
			if err != nil {
				return err
			}
			cfg.VoicevoxDefaultSpeaker = id
		case "aivis-speaker":
			id, err := parseSpeakerID(args[1])
			if err != nil {
				return err
			}
			cfg.AivisDefaultSpeaker = id
		case "say-voice":
			cfg.NativeDefaultVoice = args[1]
		default:
			return fmt.Errorf("unknown config key %q (want voicevox-speaker, aivis-speaker, or say-voice)", args[0])
		}

		return config.Save(cfg)
	},
}

func formatSpeaker(id *uint32) string {
	if id == nil {
		return "(unset, falls back to 1)"
	}
	return strconv.FormatUint(uint64(*id), 10)
}

// parseSpeakerID parses a speaker id; an empty string clears the default.
func parseSpeakerID(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid speaker id %q: %w", s, err)
	}
	id := uint32(v)
	return &id, nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
