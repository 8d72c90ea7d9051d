// Copyright (c) Microsoft. All rights reserved.

// Package mcptool connects to a remote Model Context Protocol tool server
// and adapts its tools to the local [tools.Tool] interface.
//
// Caller identity is passed as an explicit HTTP header on every request
// rather than being embedded in agent instruction text, so the tool server
// can rely on it regardless of what the model does.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contoso/pizzabot/foundry"
	"github.com/contoso/pizzabot/tools"
)

// IdentityHeader is the header carrying the caller's identity to the tool
// server, both on direct connections and on service-side attachments.
const IdentityHeader = "X-Caller-Identity"

// clientConfig holds resolved configuration for a connection.
type clientConfig struct {
	identity   string
	httpClient *http.Client
}

// Option configures [Connect].
type Option func(*clientConfig)

// WithIdentity sets the caller identity sent in [IdentityHeader].
func WithIdentity(id string) Option {
	return func(c *clientConfig) { c.identity = id }
}

// WithHTTPClient provides a custom http.Client for the connection.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// Session is an open connection to a remote tool server.
type Session struct {
	cs       *mcp.ClientSession
	identity string
}

// Connect opens a streamable HTTP session with the tool server at serverURL.
// Callers must Close the session when done.
func Connect(ctx context.Context, serverURL string, opts ...Option) (*Session, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = http.DefaultClient
	}
	if cfg.identity != "" {
		hc = withIdentity(hc, cfg.identity)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "pizzabot", Version: "0.1.0"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   serverURL,
		HTTPClient: hc,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to tool server %s: %w", serverURL, err)
	}

	return &Session{cs: cs, identity: cfg.identity}, nil
}

// Close terminates the session.
func (s *Session) Close() error { return s.cs.Close() }

// Tools lists the server's tools adapted to the local tool interface.
func (s *Session) Tools(ctx context.Context) ([]tools.Tool, error) {
	res, err := s.cs.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("list remote tools: %w", err)
	}

	adapted := make([]tools.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		adapted = append(adapted, &remoteTool{session: s, tool: t})
	}
	return adapted, nil
}

// Definition builds the service-side attachment descriptor for the same
// server, carrying the identity header so tool calls issued by the hosted
// agent authenticate the same way direct calls do.
func Definition(label, serverURL, identity string, allowed ...string) foundry.ToolDefinition {
	var headers map[string]string
	if identity != "" {
		headers = map[string]string{IdentityHeader: identity}
	}
	return foundry.MCPToolDefinition(label, serverURL, headers, allowed...)
}

// remoteTool proxies a single server-side tool through the session.
type remoteTool struct {
	session *Session
	tool    *mcp.Tool
}

var _ tools.Tool = (*remoteTool)(nil)

func (t *remoteTool) Name() string        { return t.tool.Name }
func (t *remoteTool) Description() string { return t.tool.Description }

func (t *remoteTool) Parameters() json.RawMessage {
	if t.tool.InputSchema == nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	b, err := json.Marshal(t.tool.InputSchema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return b
}

func (t *remoteTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	res, err := t.session.cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.tool.Name,
		Arguments: args,
	})
	if err != nil {
		return nil, &tools.ToolError{
			ToolName: t.tool.Name,
			Message:  "remote call failed: " + err.Error(),
			Err:      tools.ErrToolExecution,
		}
	}

	text := contentText(res.Content)
	if res.IsError {
		return nil, &tools.ToolError{
			ToolName: t.tool.Name,
			Message:  text,
			Err:      tools.ErrToolExecution,
		}
	}
	return text, nil
}

// contentText concatenates the text parts of a tool result.
func contentText(content []mcp.Content) string {
	var b strings.Builder
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// withIdentity wraps hc so every request carries the identity header.
func withIdentity(hc *http.Client, identity string) *http.Client {
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *hc
	wrapped.Transport = &identityTransport{base: base, identity: identity}
	return &wrapped
}

// identityTransport injects the caller identity header on every request.
type identityTransport struct {
	base     http.RoundTripper
	identity string
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(IdentityHeader, t.identity)
	return t.base.RoundTrip(clone)
}
