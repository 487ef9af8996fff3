package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/planora/agent-gateway/internal/model"
)

const (
	completionTimeout = 60 * time.Second
	toolCallTimeout   = 30 * time.Second

	fallbackAnswer       = "I couldn't process that request."
	fallbackConfirmation = "I've executed the requested actions."
)

const systemPromptFormat = `You are a powerful assistant. The current date is %s. ` +
	`When asked to schedule a meeting, your primary goal is to get it on the calendar with all correct details. ` +
	`Follow this logic: ` +
	`1. **Analyze the Request:** Does the user provide a specific time (e.g., 'at 11 am')? ` +
	`2. **If a time IS provided:** Do NOT use the find_free_time_slots tool. Directly use the schedule_calendar_event tool. Make sure to include the title, time, and any attendees mentioned. ` +
	`3. **If a time IS NOT provided:** THEN use the find_free_time_slots tool to find available slots and propose them to the user. ` +
	`4. **Memory:** Remember all details from the user's original request (like attendee names and emails) throughout the conversation, even if you have to ask for clarification on the time. ` +
	`5. **Confirmation:** After scheduling, confirm with the user that the event has been created and that invitations have been sent.`

// ChatCompleter is the chat-completion surface the dispatcher depends on.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ToolRunner exposes the declared tool set and executes one invocation.
type ToolRunner interface {
	Declarations() []openai.Tool
	Execute(ctx context.Context, name string, args json.RawMessage, accessToken string) model.ToolResult
}

// Dispatcher sends one user message plus the declared tools to the model,
// executes whatever tool calls come back, and aggregates the results.
// Single round: tool results are not fed back into a second completion.
type Dispatcher struct {
	llm   ChatCompleter
	tools ToolRunner

	now func() time.Time
}

func NewDispatcher(llm ChatCompleter, tools ToolRunner) *Dispatcher {
	return &Dispatcher{llm: llm, tools: tools, now: time.Now}
}

// Dispatch runs one request. accessToken may be empty; tool invocations then
// fail uniformly with an auth-required result and NeedsAuth is set.
func (d *Dispatcher) Dispatch(ctx context.Context, message, accessToken string) (*model.ChatOutcome, error) {
	req := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPromptFormat, d.now().Format("January 2, 2006"))},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Tools: d.tools.Declarations(),
		// Tool selection must be reproducible. The field is omitempty, so a
		// literal 0 would be dropped from the wire request.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   1000,
	}

	llmCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := d.llm.CreateChatCompletion(llmCtx, req)
	if err != nil {
		return nil, upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &UpstreamError{Status: 502, Body: "chat completion returned no choices"}
	}

	choice := resp.Choices[0]
	outcome := &model.ChatOutcome{NeedsAuth: accessToken == ""}

	if len(choice.Message.ToolCalls) == 0 {
		outcome.Message = choice.Message.Content
		if outcome.Message == "" {
			outcome.Message = fallbackAnswer
		}
		return outcome, nil
	}

	// Execute sequentially, in the order returned. Calendar writes and email
	// sends are not idempotent; one failure never aborts the siblings.
	for _, call := range choice.Message.ToolCalls {
		log.Printf("[dispatch] tool call: %s", call.Function.Name)
		toolCtx, cancelTool := context.WithTimeout(ctx, toolCallTimeout)
		result := d.tools.Execute(toolCtx, call.Function.Name, json.RawMessage(call.Function.Arguments), accessToken)
		cancelTool()
		outcome.ToolResults = append(outcome.ToolResults, result)
	}

	outcome.Message = choice.Message.Content
	if outcome.Message == "" {
		outcome.Message = fallbackConfirmation
	}
	return outcome, nil
}

// upstreamError normalizes a chat-completion failure into an UpstreamError,
// keeping the raw upstream message for operators.
func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if raw, marshalErr := json.Marshal(apiErr); marshalErr == nil {
			body = string(raw)
		}
		status := apiErr.HTTPStatusCode
		if status == 0 {
			status = 502
		}
		return &UpstreamError{Status: status, Body: body}
	}
	return &UpstreamError{Status: 502, Body: err.Error()}
}
