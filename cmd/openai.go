package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/blacktop/mcp-speak/internal/audio"
)

// OpenAITTSArgs are the arguments for the openai_tts tool.
type OpenAITTSArgs struct {
	Text  string   `json:"text"`
	Voice *string  `json:"voice,omitempty"`
	Model *string  `json:"model,omitempty"`
	Speed *float64 `json:"speed,omitempty"`
}

// playWAV is a seam so tests can intercept playback for the cloud tools.
var playWAV = audio.PlayWAV

// handleOpenAITTS synthesizes WAV audio through the OpenAI speech API
// and plays it through the playback sink.
func handleOpenAITTS(ctx context.Context, req *mcp.CallToolRequest, args OpenAITTSArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Text) == "" {
		return errorResult("Empty text provided"), nil, nil
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return errorResult("OPENAI_API_KEY is not set"), nil, nil
	}

	voice := "alloy"
	if args.Voice != nil && *args.Voice != "" {
		voice = *args.Voice
	}
	model := string(openai.SpeechModelGPT4oMiniTTS)
	if args.Model != nil && *args.Model != "" {
		model = *args.Model
	}
	speed := 1.0
	if args.Speed != nil {
		speed = *args.Speed
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	log.Debug("Requesting OpenAI speech", "voice", voice, "model", model, "speed", speed)
	resp, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          args.Text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
		Speed:          openai.Float(speed),
	})
	if err != nil {
		log.Error("OpenAI TTS request failed", "error", err)
		return errorResult("OpenAI TTS request failed: %v", err), nil, nil
	}
	defer resp.Body.Close()

	wavData, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult("Failed to read OpenAI TTS response: %v", err), nil, nil
	}

	release, err := acquirePlaybackLock(ctx)
	if err != nil {
		return errorResult("Failed to acquire playback lock: %v", err), nil, nil
	}
	defer release()

	if err := playWAV(ctx, wavData); err != nil {
		return errorResult("Audio playback failed: %v", err), nil, nil
	}

	return textResult("Speaking: %s (via OpenAI TTS with voice %s using model %s)", args.Text, voice, model), nil, nil
}
