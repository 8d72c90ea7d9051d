// Copyright (c) Microsoft. All rights reserved.

// Package speech is a client for the hosted speech service: single-utterance
// recognition (speech to text) and synthesis (text to speech).
//
// Create a client with [New] and a region plus a subscription key or Azure
// credential:
//
//	sp := speech.New("westeurope", speech.WithSubscriptionKey(key))
//	rec, err := sp.RecognizeOnce(ctx, wavReader)
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const (
	defaultVoice        = "en-US-AriaNeural"
	defaultLanguage     = "en-US"
	defaultOutputFormat = "riff-16khz-16bit-mono-pcm"

	// tokenScope is the Azure AD scope for the speech service.
	tokenScope = "https://cognitiveservices.azure.com/.default"
)

// ErrSpeech is the base error for speech service failures.
var ErrSpeech = errors.New("speech service error")

// ResultReason classifies the outcome of a recognition attempt.
type ResultReason string

const (
	// ReasonRecognized means speech was recognized into text.
	ReasonRecognized ResultReason = "recognized"

	// ReasonNoMatch means the service heard audio but matched no speech.
	ReasonNoMatch ResultReason = "no_match"

	// ReasonError means the service reported a recognition failure.
	ReasonError ResultReason = "error"
)

// Recognition is the outcome of a single recognition attempt. Text is only
// populated when Reason is [ReasonRecognized].
type Recognition struct {
	Reason ResultReason
	Text   string
}

// clientConfig holds resolved configuration for the speech client.
type clientConfig struct {
	key          string
	credential   azcore.TokenCredential
	voice        string
	language     string
	outputFormat string
	httpClient   *http.Client
	sttEndpoint  string
	ttsEndpoint  string
}

// Option configures a speech [Client].
type Option func(*clientConfig)

// WithSubscriptionKey authenticates with a speech resource key.
func WithSubscriptionKey(key string) Option {
	return func(c *clientConfig) { c.key = key }
}

// WithCredential enables Azure AD token authentication using the provided
// credential. Takes precedence over a subscription key when both are set.
func WithCredential(cred azcore.TokenCredential) Option {
	return func(c *clientConfig) { c.credential = cred }
}

// WithVoice sets the synthesis voice name.
func WithVoice(voice string) Option {
	return func(c *clientConfig) { c.voice = voice }
}

// WithLanguage sets the recognition language.
func WithLanguage(lang string) Option {
	return func(c *clientConfig) { c.language = lang }
}

// WithOutputFormat sets the synthesis audio output format.
func WithOutputFormat(format string) Option {
	return func(c *clientConfig) { c.outputFormat = format }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithEndpoints overrides the recognition and synthesis base URLs
// (e.g., for sovereign clouds or tests).
func WithEndpoints(stt, tts string) Option {
	return func(c *clientConfig) {
		c.sttEndpoint = stt
		c.ttsEndpoint = tts
	}
}

// Client talks to the speech service. Use [New] to create one.
type Client struct {
	cfg clientConfig
}

// New creates a speech [Client] for the given service region.
func New(region string, opts ...Option) *Client {
	cfg := clientConfig{
		voice:        defaultVoice,
		language:     defaultLanguage,
		outputFormat: defaultOutputFormat,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = http.DefaultClient
	}
	if cfg.sttEndpoint == "" {
		cfg.sttEndpoint = fmt.Sprintf("https://%s.stt.speech.microsoft.com", region)
	}
	if cfg.ttsEndpoint == "" {
		cfg.ttsEndpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com", region)
	}
	return &Client{cfg: cfg}
}

// RecognizeOnce submits a single WAV utterance and returns the transcript.
// A service-side no-match is not an error; callers inspect the Reason.
func (c *Client) RecognizeOnce(ctx context.Context, wav io.Reader) (Recognition, error) {
	u := c.cfg.sttEndpoint + "/speech/recognition/conversation/cognitiveservices/v1" +
		"?language=" + url.QueryEscape(c.cfg.language) + "&format=simple"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, wav)
	if err != nil {
		return Recognition{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return Recognition{}, err
	}

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return Recognition{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Recognition{}, serviceError(resp)
	}

	var result struct {
		RecognitionStatus string `json:"RecognitionStatus"`
		DisplayText       string `json:"DisplayText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Recognition{}, fmt.Errorf("%w: parse response: %v", ErrSpeech, err)
	}

	switch result.RecognitionStatus {
	case "Success":
		return Recognition{Reason: ReasonRecognized, Text: result.DisplayText}, nil
	case "NoMatch", "InitialSilenceTimeout", "BabbleTimeout":
		return Recognition{Reason: ReasonNoMatch}, nil
	default:
		return Recognition{Reason: ReasonError},
			fmt.Errorf("%w: recognition status %q", ErrSpeech, result.RecognitionStatus)
	}
}

// Synthesize renders text to audio in the configured voice and format.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body := buildSSML(c.cfg.language, c.cfg.voice, text)

	u := c.cfg.ttsEndpoint + "/cognitiveservices/v1"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.cfg.outputFormat)
	req.Header.Set("User-Agent", "pizzabot")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, serviceError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrSpeech, err)
	}
	return audio, nil
}

// authorize attaches either a bearer token or the subscription key.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.cfg.credential != nil {
		token, err := c.cfg.credential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{tokenScope},
		})
		if err != nil {
			return fmt.Errorf("get azure token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.Token)
		return nil
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.key)
	return nil
}

// buildSSML renders the minimal SSML document the synthesis endpoint expects.
func buildSSML(language, voice, text string) []byte {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	var b bytes.Buffer
	fmt.Fprintf(&b, `<speak version='1.0' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		language, voice, escaped.String())
	return b.Bytes()
}

func serviceError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: status %d: %s", ErrSpeech, resp.StatusCode, bytes.TrimSpace(body))
}
