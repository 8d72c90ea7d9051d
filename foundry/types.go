// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"encoding/json"
	"strings"

	"github.com/contoso/pizzabot/tools"
)

// MessageRole identifies the author of a thread message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// RunStatus is the lifecycle state of a run as reported by the service.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// AgentDefinition describes the agent to create on the service.
type AgentDefinition struct {
	Model        string           `json:"model"`
	Name         string           `json:"name,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Agent is the service handle for a created agent.
type Agent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

// Thread is the service handle for a conversation thread.
type Thread struct {
	ID string `json:"id"`
}

// ToolDefinition is a tool descriptor sent to the service when creating an
// agent. Exactly one shape is populated, selected by Type: "function" carries
// a local function declaration, "mcp" attaches a remote tool server.
type ToolDefinition struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`

	// MCP attachment fields. Headers travel with every tool call the
	// service issues, so caller identity rides the transport rather than
	// the instruction text.
	ServerLabel  string            `json:"server_label,omitempty"`
	ServerURL    string            `json:"server_url,omitempty"`
	AllowedTools []string          `json:"allowed_tools,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// FunctionDefinition declares a callable function to the service.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// FunctionToolDefinition builds a "function" descriptor from a local tool.
func FunctionToolDefinition(t tools.Tool) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: &FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

// MCPToolDefinition builds an "mcp" descriptor attaching a remote tool server.
func MCPToolDefinition(label, serverURL string, headers map[string]string, allowed ...string) ToolDefinition {
	return ToolDefinition{
		Type:         "mcp",
		ServerLabel:  label,
		ServerURL:    serverURL,
		AllowedTools: allowed,
		Headers:      headers,
	}
}

// ThreadMessage is a role-tagged message in a thread.
type ThreadMessage struct {
	ID      string           `json:"id"`
	Role    MessageRole      `json:"role"`
	Content []messageContent `json:"content"`
}

type messageContent struct {
	Type string       `json:"type"`
	Text *messageText `json:"text,omitempty"`
}

type messageText struct {
	Value string `json:"value"`
}

// Text returns the concatenated text of all text parts in this message.
func (m *ThreadMessage) Text() string {
	var b strings.Builder
	for _, c := range m.Content {
		if c.Type == "text" && c.Text != nil {
			b.WriteString(c.Text.Value)
		}
	}
	return b.String()
}

// LatestAssistantText returns the text of the last assistant message in msgs,
// which must be in chronological order. ok is false when no assistant message
// is present; callers decide the placeholder to show.
func LatestAssistantText(msgs []ThreadMessage) (text string, ok bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == MessageRoleAssistant {
			return msgs[i].Text(), true
		}
	}
	return "", false
}

// Run is the service handle for a single agent run over a thread.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	AgentID        string          `json:"assistant_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
}

// RequiredAction describes what the service needs before the run can proceed.
type RequiredAction struct {
	Type              string             `json:"type"`
	SubmitToolOutputs *SubmitToolOutputs `json:"submit_tool_outputs,omitempty"`
}

// SubmitToolOutputs lists the tool calls awaiting local results.
type SubmitToolOutputs struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// ToolCall is a single function call requested by the service.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput is a local tool result submitted back to the service.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// RunError is the failure detail attached to a failed run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
