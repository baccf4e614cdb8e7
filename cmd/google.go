package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genai"

	"github.com/blacktop/mcp-speak/internal/audio"
)

// Gemini TTS returns raw 16-bit mono PCM at this rate.
const googleTTSSampleRate = 24000

// GoogleTTSArgs are the arguments for the google_tts tool.
type GoogleTTSArgs struct {
	Text  string  `json:"text"`
	Voice *string `json:"voice,omitempty"`
	Model *string `json:"model,omitempty"`
}

// playPCM is a seam so tests can intercept playback.
var playPCM = audio.PlayPCM

// handleGoogleTTS synthesizes speech through the Gemini API's audio
// response modality and plays the returned PCM buffer.
func handleGoogleTTS(ctx context.Context, req *mcp.CallToolRequest, args GoogleTTSArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Text) == "" {
		return errorResult("Empty text provided"), nil, nil
	}

	apiKey := os.Getenv("GOOGLE_AI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return errorResult("GOOGLE_AI_API_KEY or GEMINI_API_KEY is not set"), nil, nil
	}

	voice := "Kore"
	if args.Voice != nil && *args.Voice != "" {
		voice = *args.Voice
	}
	model := "gemini-2.5-flash-preview-tts"
	if args.Model != nil && *args.Model != "" {
		model = *args.Model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return errorResult("Failed to create Google AI client: %v", err), nil, nil
	}

	log.Debug("Requesting Gemini speech", "voice", voice, "model", model)
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(args.Text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: voice,
				},
			},
		},
	})
	if err != nil {
		log.Error("Google TTS request failed", "error", err)
		return errorResult("Google TTS request failed: %v", err), nil, nil
	}

	pcm := extractInlineAudio(resp)
	if len(pcm) == 0 {
		return errorResult("Google TTS response contained no audio"), nil, nil
	}

	release, err := acquirePlaybackLock(ctx)
	if err != nil {
		return errorResult("Failed to acquire playback lock: %v", err), nil, nil
	}
	defer release()

	if err := playPCM(pcm, googleTTSSampleRate); err != nil {
		return errorResult("Audio playback failed: %v", err), nil, nil
	}

	return textResult("Speaking: %s (via Google TTS with voice %s using model %s)", args.Text, voice, model), nil, nil
}

func extractInlineAudio(resp *genai.GenerateContentResponse) []byte {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
