// Package tools holds the actions the model may request: each executor
// wraps one downstream Google API call. The registry maps a declared tool
// name to its executor so new actions plug in without touching dispatch.
package tools

import (
	"context"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
	"github.com/planora/agent-gateway/internal/model"
)

const authRequiredError = "auth required: no Google account connected. Please connect your Google account first."

// Executor is one callable action with its model-facing declaration.
type Executor interface {
	Name() string
	Declaration() openai.Tool
	Execute(ctx context.Context, args json.RawMessage, accessToken string) model.ToolResult
}

type Registry struct {
	order  []string
	byName map[string]Executor
}

func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{byName: make(map[string]Executor, len(executors))}
	for _, e := range executors {
		r.order = append(r.order, e.Name())
		r.byName[e.Name()] = e
	}
	return r
}

// DefaultRegistry declares the full action set.
func DefaultRegistry(opts Options) *Registry {
	return NewRegistry(
		NewScheduleEvent(opts),
		NewFindFreeSlots(opts),
		NewSendEmail(opts),
		NewCreateDraft(opts),
		NewListEmails(opts),
	)
}

// Declarations returns the tool declarations in registration order.
func (r *Registry) Declarations() []openai.Tool {
	decls := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.byName[name].Declaration())
	}
	return decls
}

// Execute routes one invocation by tool name. Without an access token every
// invocation fails uniformly with an auth-required result and no provider
// is contacted.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage, accessToken string) model.ToolResult {
	executor, ok := r.byName[name]
	if !ok {
		return model.ToolResult{Tool: name, Error: "unknown tool: " + name}
	}
	if accessToken == "" {
		return model.ToolResult{Tool: name, Error: authRequiredError}
	}
	return executor.Execute(ctx, args, accessToken)
}
