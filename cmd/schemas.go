package cmd

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/blacktop/mcp-speak/internal/voicevox"
)

// Schemas are built by hand rather than inferred so the speaker field
// can reflect whatever catalog the engine reported at startup.

func rawJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func constVal(v any) *any {
	return &v
}

// buildSpeakerChoiceSchema builds the input schema for a VOICEVOX-compatible
// engine tool. With a catalog, the speaker field enumerates one choice per
// (speaker, style) pair; without one it falls back to a plain integer so
// the tool stays callable while the engine is offline.
//
// The default is the configured id if set, else 1, and is emitted even
// when the catalog does not list it: an administrator may rely on a style
// id the probe didn't surface this run, so it is never remapped or dropped.
func buildSpeakerChoiceSchema(speakers []voicevox.Speaker, defaultID *uint32) *jsonschema.Schema {
	defaultVal := uint32(1)
	if defaultID != nil {
		defaultVal = *defaultID
	}

	speakerSchema := &jsonschema.Schema{
		Type:        "integer",
		Description: "Speaker style id",
		Default:     rawJSON(defaultVal),
	}
	if len(speakers) > 0 {
		var choices []*jsonschema.Schema
		for _, speaker := range speakers {
			for _, style := range speaker.Styles {
				choices = append(choices, &jsonschema.Schema{
					Const: constVal(style.ID),
					Title: voicevox.StyleLabel(speaker, style),
				})
			}
		}
		speakerSchema = &jsonschema.Schema{
			OneOf:       choices,
			Description: "Speaker style id",
			Default:     rawJSON(defaultVal),
		}
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "The text to speak aloud",
			},
			"speaker": speakerSchema,
			"speed": {
				Type:        "number",
				Description: "Speed scale (default: 1.0)",
				Default:     rawJSON(1.0),
			},
		},
		Required:             []string{"text"},
		AdditionalProperties: nil,
	}
}

func buildSaySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "The text to speak aloud",
			},
			"voice": {
				Type:        "string",
				Description: "Voice to use for speech synthesis (e.g. 'Alex', 'Samantha', 'Kyoko')",
			},
			"speed": {
				Type:        "integer",
				Description: "Speech rate in words per minute (50-500)",
				Minimum:     &[]float64{50}[0],
				Maximum:     &[]float64{500}[0],
			},
		},
		Required:             []string{"text"},
		AdditionalProperties: nil,
	}
}

func buildOpenAITTSSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "The text to convert to speech using OpenAI TTS",
			},
			"voice": {
				Type:        "string",
				Description: "Voice to use (alloy, ash, ballad, coral, echo, fable, nova, onyx, sage, shimmer, verse; default: 'alloy')",
				Enum:        []any{"alloy", "ash", "ballad", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer", "verse"},
			},
			"model": {
				Type:        "string",
				Description: "TTS model to use (default: 'gpt-4o-mini-tts')",
				Enum:        []any{"gpt-4o-mini-tts", "tts-1", "tts-1-hd"},
			},
			"speed": {
				Type:        "number",
				Description: "Speech speed (0.25-4.0, default: 1.0)",
				Minimum:     &[]float64{0.25}[0],
				Maximum:     &[]float64{4.0}[0],
			},
		},
		Required:             []string{"text"},
		AdditionalProperties: nil,
	}
}

func buildGoogleTTSSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "The text to convert to speech using Google TTS",
			},
			"voice": {
				Type:        "string",
				Description: "Voice name to use (e.g. 'Kore', 'Aoede', 'Fenrir', default: 'Kore')",
			},
			"model": {
				Type:        "string",
				Description: "TTS model to use (default: 'gemini-2.5-flash-preview-tts')",
			},
		},
		Required:             []string{"text"},
		AdditionalProperties: nil,
	}
}
