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
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blacktop/mcp-speak/internal/config"
	"github.com/blacktop/mcp-speak/internal/voicevox"
)

// EngineSpeakArgs are the arguments for the VOICEVOX-compatible engine tools.
type EngineSpeakArgs struct {
	Text    string   `json:"text"`
	Speaker *uint32  `json:"speaker,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
}

// SayArgs are the arguments for the macOS say tool.
type SayArgs struct {
	Text  string  `json:"text"`
	Voice *string `json:"voice,omitempty"`
	Speed *uint32 `json:"speed,omitempty"`
}

// voiceEngine binds one HTTP engine tool to its synthesis pipeline. The
// synthesize and play functions are fields so tests can substitute doubles.
type voiceEngine struct {
	tool        string
	description string
	synthesize  func(ctx context.Context, text string, speaker uint32, speed float64) ([]byte, error)
	play        func(ctx context.Context, data []byte) error
	defaultID   func() *uint32
}

func registerEngineTool(server *mcp.Server, engine *voiceEngine, speakers []voicevox.Speaker, defaultID *uint32) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        engine.tool,
		Description: engine.description,
		InputSchema: buildSpeakerChoiceSchema(speakers, defaultID),
	}, engine.handle)
}

// handle runs one dispatch end to end: resolve the effective speaker and
// speed, synthesize, then play. Every failure becomes a structured error
// result; nothing from a single call can take the server down.
func (e *voiceEngine) handle(ctx context.Context, req *mcp.CallToolRequest, args EngineSpeakArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Text) == "" {
		return errorResult("Empty text provided"), nil, nil
	}

	speakerID := resolveSpeakerID(args.Speaker, e.defaultID())
	speed := 1.0
	if args.Speed != nil {
		speed = *args.Speed
	}

	log.Debug("Dispatching synthesis", "tool", e.tool, "speaker", speakerID, "speed", speed)
	wavData, err := e.synthesize(ctx, args.Text, speakerID, speed)
	if err != nil {
		log.Error("Synthesis failed", "tool", e.tool, "error", err)
		return errorResult("Engine request failed: %v", err), nil, nil
	}

	release, err := acquirePlaybackLock(ctx)
	if err != nil {
		return errorResult("Failed to acquire playback lock: %v", err), nil, nil
	}
	defer release()

	if err := e.play(ctx, wavData); err != nil {
		log.Error("Playback failed", "tool", e.tool, "error", err)
		return errorResult("Audio playback failed: %v", err), nil, nil
	}

	return textResult("Speaking: %s (speaker %d)", args.Text, speakerID), nil, nil
}

// resolveSpeakerID applies strict precedence: explicit argument, then the
// configured default, then the hard fallback of 1.
func resolveSpeakerID(arg, configured *uint32) uint32 {
	if arg != nil {
		return *arg
	}
	if configured != nil {
		return *configured
	}
	return 1
}

// Seams for the say handler so tests can intercept the command and config.
var (
	loadConfig     = config.Load
	voiceInstalled = sayVoiceInstalled
	runSay         = func(ctx context.Context, args []string) error {
		return exec.CommandContext(ctx, "/usr/bin/say", args...).Run()
	}
)

// handleSay speaks through the macOS say command, which plays directly
// rather than going through the playback sink. Config is re-read on each
// call so edits via the config subcommand apply without a restart.
func handleSay(ctx context.Context, req *mcp.CallToolRequest, args SayArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Text) == "" {
		return errorResult("Empty text provided"), nil, nil
	}

	cfg := loadConfig()

	voice := cfg.NativeDefaultVoice
	if args.Voice != nil && *args.Voice != "" {
		voice = *args.Voice
	}

	var sayArgs []string
	if voice != "" {
		if installed, err := voiceInstalled(voice); err == nil && !installed {
			return errorResult("%s", voiceNotInstalledHint(voice)), nil, nil
		}
		sayArgs = append(sayArgs, "-v", voice)
	}
	if args.Speed != nil {
		sayArgs = append(sayArgs, "-r", strconv.FormatUint(uint64(*args.Speed), 10))
	}
	sayArgs = append(sayArgs, args.Text)

	release, err := acquirePlaybackLock(ctx)
	if err != nil {
		return errorResult("Failed to acquire playback lock: %v", err), nil, nil
	}
	defer release()

	log.Debug("Running say", "voice", voice, "args", len(sayArgs))
	if err := runSay(ctx, sayArgs); err != nil {
		log.Error("say command failed", "error", err)
		return errorResult("say command failed: %v", err), nil, nil
	}

	return textResult("Speaking: %s", args.Text), nil, nil
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	result := textResult("Error: "+format, args...)
	result.IsError = true
	return result
}
