// Copyright (c) Microsoft. All rights reserved.

// Command pizzabot is an interactive pizza-ordering assistant backed by a
// hosted agent service, with optional voice input/output and a remote MCP
// tool server for store operations.
//
// Usage:
//
//	export FOUNDRY_PROJECT_ENDPOINT=https://<project>.services.ai.azure.com/api/projects/<name>
//	export FOUNDRY_API_KEY=<key>            # optional, falls back to az login etc.
//	export PIZZA_MCP_URL=https://<server>/mcp   # optional tool server
//	export SPEECH_KEY=<key> SPEECH_REGION=<region>   # optional, enables --speech
//	go run ./cmd/pizzabot
//
// Type your order and press enter; "exit" quits.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/fatih/color"

	"github.com/contoso/pizzabot/config"
	"github.com/contoso/pizzabot/estimator"
	"github.com/contoso/pizzabot/foundry"
	"github.com/contoso/pizzabot/mcptool"
	"github.com/contoso/pizzabot/speech"
)

const instructions = `You are a friendly assistant for Contoso Pizza.
Help customers decide what to order and how much.
When asked how many pizzas a group needs, always use the estimate_pizzas tool.
Use the pizza store tools for menu, prices, and placing orders when they are available.
Keep responses short and conversational.`

// retryPrompt is shown when speech recognition matched nothing.
const retryPrompt = "Sorry, I didn't catch that. Please try again."

func main() {
	useSpeech := flag.Bool("speech", false, "speak input and output through the speech service")
	keepAgent := flag.Bool("keep-agent", false, "do not delete the agent on exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx := context.Background()

	client := newFoundryClient(cfg)

	def := foundry.AgentDefinition{
		Model:        cfg.Foundry.Model,
		Name:         "pizza-bot",
		Instructions: instructions,
		Tools:        []foundry.ToolDefinition{foundry.FunctionToolDefinition(estimator.Tool())},
	}
	if cfg.MCP.URL != "" {
		// Caller identity rides the attachment headers, not the prompt.
		def.Tools = append(def.Tools, mcptool.Definition(cfg.MCP.Label, cfg.MCP.URL, cfg.UserID))
		fmt.Printf("Attaching tool server %q at %s\n", cfg.MCP.Label, cfg.MCP.URL)
	}

	agent, err := client.CreateAgent(ctx, def)
	if err != nil {
		log.Fatalf("create agent: %v", err)
	}
	if !*keepAgent {
		defer func() {
			if err := client.DeleteAgent(context.Background(), agent.ID); err != nil {
				slog.Warn("failed to delete agent", "agent_id", agent.ID, "error", err)
			}
		}()
	}

	thread, err := client.CreateThread(ctx)
	if err != nil {
		log.Fatalf("create thread: %v", err)
	}

	var voice *voiceIO
	if *useSpeech {
		if !cfg.SpeechEnabled() {
			log.Fatal("--speech requires SPEECH_KEY and SPEECH_REGION")
		}
		voice = newVoiceIO(cfg)
	}

	fmt.Printf("Ordering as %s (agent %s). Type 'exit' to quit.\n\n", cfg.UserID, agent.ID)

	userPrompt := color.New(color.FgCyan).Sprint("You: ")
	botPrompt := color.New(color.FgGreen).Sprint("Pizza Bot: ")

	var mic listener
	if voice != nil {
		mic = voice
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(userPrompt)

		raw, ok := readInput(ctx, scanner, mic)
		if !ok {
			break
		}
		input, action := handleLine(raw)
		if action == actionQuit {
			break
		}
		if action == actionSkip {
			continue
		}

		reply, err := converse(ctx, client, thread.ID, agent.ID, input)
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}

		fmt.Printf("%s%s\n\n", botPrompt, reply)
		if voice != nil {
			voice.speak(ctx, reply)
		}
	}
}

// converse posts one user message, runs the agent, and returns the reply.
func converse(ctx context.Context, client *foundry.Client, threadID, agentID, input string) (string, error) {
	if _, err := client.CreateMessage(ctx, threadID, foundry.MessageRoleUser, input); err != nil {
		return "", fmt.Errorf("post message: %w", err)
	}

	if _, err := client.RunAndWait(ctx, threadID, agentID,
		foundry.WithTools(estimator.Tool()),
	); err != nil {
		return "", fmt.Errorf("run: %w", err)
	}

	msgs, err := client.ListMessages(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	reply, ok := foundry.LatestAssistantText(msgs)
	if !ok {
		return "(no reply)", nil
	}
	return reply, nil
}

// lineAction tells the input loop what to do with one line of input.
type lineAction int

const (
	actionSend lineAction = iota
	actionSkip
	actionQuit
)

// handleLine normalizes one line of user input. Blank lines are skipped and
// "exit" in any casing ends the session.
func handleLine(raw string) (string, lineAction) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", actionSkip
	}
	if strings.EqualFold(line, "exit") {
		return "", actionQuit
	}
	return line, actionSend
}

// listener captures one utterance of user speech.
type listener interface {
	listen(ctx context.Context) (string, error)
}

// readInput reads one turn of user input, from the microphone when voice is
// enabled and from stdin otherwise. ok is false when input is exhausted or
// the context ends. Speech failures and unrecognized audio prompt a retry
// rather than ending the session.
func readInput(ctx context.Context, scanner *bufio.Scanner, voice listener) (string, bool) {
	if voice == nil {
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}

	for {
		text, err := voice.listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", false
			}
			log.Printf("Speech error: %v", err)
			fmt.Println(retryPrompt)
			continue
		}
		if text == "" {
			fmt.Println(retryPrompt)
			continue
		}
		fmt.Println(text)
		return text, true
	}
}

// newFoundryClient builds the agent service client, preferring an API key
// and falling back to Azure AD authentication.
func newFoundryClient(cfg config.Config) *foundry.Client {
	opts := []foundry.Option{foundry.WithAPIVersion(cfg.Foundry.APIVersion)}

	if cfg.Foundry.APIKey != "" {
		fmt.Println("Using API key authentication")
		opts = append(opts, foundry.WithAPIKey(cfg.Foundry.APIKey))
		return foundry.New(cfg.Foundry.Endpoint, opts...)
	}

	fmt.Println("Using Azure AD authentication (DefaultAzureCredential)")
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		log.Fatalf("Failed to create Azure credential: %v", err)
	}
	opts = append(opts, foundry.WithCredential(cred))
	return foundry.New(cfg.Foundry.Endpoint, opts...)
}

// voiceIO bundles the speech client with capture and playback.
type voiceIO struct {
	client   *speech.Client
	recorder *speech.Recorder
	player   *speech.Player
}

var _ listener = (*voiceIO)(nil)

func newVoiceIO(cfg config.Config) *voiceIO {
	return &voiceIO{
		client: speech.New(cfg.Speech.Region,
			speech.WithSubscriptionKey(cfg.Speech.Key),
			speech.WithVoice(cfg.Speech.Voice),
			speech.WithLanguage(cfg.Speech.Language),
		),
		recorder: speech.NewRecorder(cfg.Speech.RecordCmd),
		player:   speech.NewPlayer(cfg.Speech.PlayCmd),
	}
}

// listen records one utterance and returns its transcript. An empty string
// means the service matched no speech and the caller should retry.
func (v *voiceIO) listen(ctx context.Context) (string, error) {
	wav, err := v.recorder.Record(ctx)
	if err != nil {
		return "", err
	}

	rec, err := v.client.RecognizeOnce(ctx, bytes.NewReader(wav))
	if err != nil {
		return "", err
	}
	if rec.Reason == speech.ReasonNoMatch {
		return "", nil
	}
	return rec.Text, nil
}

// speak synthesizes the reply and starts playback without waiting for it.
func (v *voiceIO) speak(ctx context.Context, text string) {
	audio, err := v.client.Synthesize(ctx, text)
	if err != nil {
		log.Printf("Synthesis error: %v", err)
		return
	}
	if err := v.player.Play(ctx, audio); err != nil {
		log.Printf("Playback error: %v", err)
	}
}
