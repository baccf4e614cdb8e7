/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/ctrlc"
	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blacktop/mcp-speak/internal/audio"
	"github.com/blacktop/mcp-speak/internal/config"
	"github.com/blacktop/mcp-speak/internal/voicevox"
)

const (
	voicevoxPort = 50021
	aivisPort    = 10101
)

var (
	verbose       bool
	sequentialTTS bool
	engineTimeout time.Duration
)

// rootCmd runs the MCP server on stdio.
var rootCmd = &cobra.Command{
	Use:   "mcp-speak",
	Short: "Multi-engine TTS (text-to-speech) MCP Server",
	Long: `mcp-speak is a TTS (text-to-speech) MCP Server.

It exposes one tool per speech engine: the local VOICEVOX and AivisSpeech
engines, the macOS 'say' command, and (when API keys are set) OpenAI and
Google Gemini TTS.

Engine catalogs are probed once at startup to build each tool's speaker
schema; an offline engine degrades its schema to a plain integer field
and the server starts regardless.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.SetOutput(os.Stderr) // stdout belongs to the MCP transport
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		ctx := cmd.Context()
		cfg := config.Load()

		vvClient := voicevox.NewClient(fmt.Sprintf("http://localhost:%d", voicevoxPort), engineTimeout)
		aivisClient := voicevox.NewClient(fmt.Sprintf("http://localhost:%d", aivisPort), engineTimeout)

		// The probes are independent; run them concurrently and tolerate
		// failure so the server starts even with every engine down.
		var vvSpeakers, aivisSpeakers []voicevox.Speaker
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			vvSpeakers = probeCatalog(gctx, "voicevox", vvClient)
			return nil
		})
		g.Go(func() error {
			aivisSpeakers = probeCatalog(gctx, "aivis", aivisClient)
			return nil
		})
		_ = g.Wait() // probes never return an error, offline engines just log

		server := mcp.NewServer(&mcp.Implementation{
			Name:    "mcp-speak",
			Version: "1.0.0",
		}, nil)

		registerEngineTool(server, &voiceEngine{
			tool:        "speak_voicevox",
			description: fmt.Sprintf("Speak text aloud using the local VOICEVOX engine (port %d)", voicevoxPort),
			synthesize:  vvClient.Synthesize,
			play:        audio.PlayWAV,
			defaultID:   func() *uint32 { return config.Load().VoicevoxDefaultSpeaker },
		}, vvSpeakers, cfg.VoicevoxDefaultSpeaker)

		registerEngineTool(server, &voiceEngine{
			tool:        "speak_aivis",
			description: fmt.Sprintf("Speak text aloud using the local AivisSpeech engine (port %d)", aivisPort),
			synthesize:  aivisClient.Synthesize,
			play:        audio.PlayWAV,
			defaultID:   func() *uint32 { return config.Load().AivisDefaultSpeaker },
		}, aivisSpeakers, cfg.AivisDefaultSpeaker)

		if runtime.GOOS == "darwin" {
			mcp.AddTool(server, &mcp.Tool{
				Name:        "speak",
				Description: "Speak text aloud using the macOS 'say' command",
				InputSchema: buildSaySchema(),
			}, handleSay)
		}

		if hasOpenAIKey() {
			mcp.AddTool(server, &mcp.Tool{
				Name:        "openai_tts",
				Description: "Speak text aloud using the OpenAI TTS API",
				InputSchema: buildOpenAITTSSchema(),
			}, handleOpenAITTS)
		}

		if hasGoogleKey() {
			mcp.AddTool(server, &mcp.Tool{
				Name:        "google_tts",
				Description: "Speak text aloud using the Google Gemini TTS API",
				InputSchema: buildGoogleTTSSchema(),
			}, handleGoogleTTS)
		}

		log.Info("Starting MCP server", "transport", "stdio", "sequential", sequentialTTS)
		return ctrlc.Default.Run(ctx, func() error {
			return server.Run(ctx, &mcp.StdioTransport{})
		})
	},
}

// probeCatalog fetches an engine's speaker catalog at startup. Any
// failure is treated as "engine offline": the tool keeps a permissive
// schema and the server starts normally.
func probeCatalog(ctx context.Context, engine string, client *voicevox.Client) []voicevox.Speaker {
	speakers, err := client.Speakers(ctx)
	if err != nil {
		log.Warn("Engine catalog unavailable, using permissive schema", "engine", engine, "url", client.BaseURL(), "error", err)
		return nil
	}
	log.Debug("Fetched engine catalog", "engine", engine, "url", client.BaseURL(), "speakers", len(speakers))
	return speakers
}

func hasOpenAIKey() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}

func hasGoogleKey() bool {
	return os.Getenv("GOOGLE_AI_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != ""
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose debug logging")
	rootCmd.PersistentFlags().DurationVar(&engineTimeout, "timeout", voicevox.DefaultTimeout, "Timeout for engine HTTP requests")
	rootCmd.Flags().BoolVar(&sequentialTTS, "sequential", false, "Serialize playback across concurrently running instances")
}
