// Copyright (c) Microsoft. All rights reserved.

// Package foundry is a client for an Azure AI Foundry style agent service.
// It covers the slice of the service this demo needs: agents, threads,
// messages, and runs, plus a polling runner that resolves requested tool
// calls against local [tools.Tool] implementations.
//
// Create a client with [New] and either an API key or an Azure credential:
//
//	client := foundry.New(endpoint, foundry.WithAPIKey(key))
//	agent, err := client.CreateAgent(ctx, foundry.AgentDefinition{
//	    Model:        "gpt-4o",
//	    Name:         "pizza-bot",
//	    Instructions: "You take pizza orders.",
//	})
package foundry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

const defaultAPIVersion = "2025-05-01"

// clientConfig holds resolved configuration for the service client.
type clientConfig struct {
	apiKey     string
	credential azcore.TokenCredential
	apiVersion string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*clientConfig)

// WithAPIKey authenticates requests with the given service API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithCredential enables Azure AD token authentication using the provided
// credential. Takes precedence over an API key when both are set.
func WithCredential(cred azcore.TokenCredential) Option {
	return func(c *clientConfig) { c.credential = cred }
}

// WithAPIVersion overrides the service api-version query parameter.
func WithAPIVersion(v string) Option {
	return func(c *clientConfig) { c.apiVersion = v }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// Client talks to the hosted agent service. Use [New] to create one.
type Client struct {
	tp transport
}

// New creates a service [Client] for the given project endpoint.
func New(endpoint string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return &Client{tp: newHTTPTransport(endpoint, cfg)}
}

// newWithTransport creates a Client with a custom transport (for testing).
func newWithTransport(tp transport) *Client {
	return &Client{tp: tp}
}

// CreateAgent registers an agent with the service and returns its handle.
func (c *Client) CreateAgent(ctx context.Context, def AgentDefinition) (*Agent, error) {
	var agent Agent
	if err := c.call(ctx, http.MethodPost, "/assistants", def, &agent); err != nil {
		return nil, err
	}
	if agent.ID == "" {
		return nil, fmt.Errorf("%w: agent response missing id", ErrInvalidResponse)
	}
	return &agent, nil
}

// DeleteAgent removes an agent from the service.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	return c.call(ctx, http.MethodDelete, "/assistants/"+url.PathEscape(agentID), nil, nil)
}

// CreateThread creates an empty conversation thread.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var thread Thread
	if err := c.call(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return nil, err
	}
	if thread.ID == "" {
		return nil, fmt.Errorf("%w: thread response missing id", ErrInvalidResponse)
	}
	return &thread, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID string, role MessageRole, text string) (*ThreadMessage, error) {
	req := struct {
		Role    MessageRole `json:"role"`
		Content string      `json:"content"`
	}{Role: role, Content: text}

	var msg ThreadMessage
	if err := c.call(ctx, http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/messages", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateRun starts processing a thread with the given agent.
func (c *Client) CreateRun(ctx context.Context, threadID, agentID string) (*Run, error) {
	req := struct {
		AgentID string `json:"assistant_id"`
	}{AgentID: agentID}

	var run Run
	if err := c.call(ctx, http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/runs", req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID)
	if err := c.call(ctx, http.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// SubmitToolOutputs sends local tool results back to a run awaiting action.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	req := struct {
		ToolOutputs []ToolOutput `json:"tool_outputs"`
	}{ToolOutputs: outputs}

	var run Run
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID) + "/submit_tool_outputs"
	if err := c.call(ctx, http.MethodPost, path, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListMessages returns the thread's messages in chronological order.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	var list struct {
		Data []ThreadMessage `json:"data"`
	}
	path := "/threads/" + url.PathEscape(threadID) + "/messages?order=asc"
	if err := c.call(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// call performs a request and decodes the JSON response into out (when non-nil).
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.tp.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", ErrService, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: parse response: %v", ErrInvalidResponse, err)
	}
	return nil
}
