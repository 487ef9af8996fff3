package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/planora/agent-gateway/internal/model"
	gmail "google.golang.org/api/gmail/v1"
)

type emailArgs struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func emailParams() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"to":      {Type: jsonschema.String, Description: "Recipient email address."},
			"subject": {Type: jsonschema.String, Description: "Email subject line."},
			"body":    {Type: jsonschema.String, Description: "Plain-text email body."},
		},
		Required: []string{"to", "subject", "body"},
	}
}

// rawMessage builds a minimal RFC 822 message, base64url-encoded the way the
// Gmail API expects raw payloads.
func rawMessage(to, subject, body string) string {
	msg := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body)
	return base64.URLEncoding.EncodeToString([]byte(msg))
}

func parseEmailArgs(raw json.RawMessage) (emailArgs, error) {
	var args emailArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %v", err)
	}
	if args.To == "" || args.Subject == "" {
		return args, fmt.Errorf("to and subject are required")
	}
	return args, nil
}

// SendEmail submits a raw outbound message through the caller's Gmail.
type SendEmail struct {
	opts Options
}

func NewSendEmail(opts Options) *SendEmail { return &SendEmail{opts: opts} }

func (s *SendEmail) Name() string { return "send_email" }

func (s *SendEmail) Declaration() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        s.Name(),
			Description: "Sends an email to a recipient.",
			Parameters:  emailParams(),
		},
	}
}

func (s *SendEmail) Execute(ctx context.Context, raw json.RawMessage, accessToken string) model.ToolResult {
	result := model.ToolResult{Tool: s.Name()}

	args, err := parseEmailArgs(raw)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	svc, err := s.opts.gmailService(ctx, accessToken)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	sent, err := svc.Users.Messages.Send("me", &gmail.Message{
		Raw: rawMessage(args.To, args.Subject, args.Body),
	}).Context(ctx).Do()
	if err != nil {
		result.Error = providerError(err)
		return result
	}

	result.Success = true
	result.MessageID = sent.Id
	result.Message = fmt.Sprintf("Email sent successfully! Message ID: %s", sent.Id)
	return result
}

// CreateDraft stores the message as a Gmail draft instead of sending it.
type CreateDraft struct {
	opts Options
}

func NewCreateDraft(opts Options) *CreateDraft { return &CreateDraft{opts: opts} }

func (c *CreateDraft) Name() string { return "create_email_draft" }

func (c *CreateDraft) Declaration() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        c.Name(),
			Description: "Creates a draft email in your Gmail account.",
			Parameters:  emailParams(),
		},
	}
}

func (c *CreateDraft) Execute(ctx context.Context, raw json.RawMessage, accessToken string) model.ToolResult {
	result := model.ToolResult{Tool: c.Name()}

	args, err := parseEmailArgs(raw)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	svc, err := c.opts.gmailService(ctx, accessToken)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	draft, err := svc.Users.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: rawMessage(args.To, args.Subject, args.Body)},
	}).Context(ctx).Do()
	if err != nil {
		result.Error = providerError(err)
		return result
	}

	result.Success = true
	result.DraftID = draft.Id
	result.Message = fmt.Sprintf("Draft created successfully! Draft ID: %s", draft.Id)
	return result
}

// ListEmails summarizes inbox messages matching a Gmail search query.
type ListEmails struct {
	opts Options
}

func NewListEmails(opts Options) *ListEmails { return &ListEmails{opts: opts} }

func (l *ListEmails) Name() string { return "list_emails" }

func (l *ListEmails) Declaration() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        l.Name(),
			Description: "Lists emails from your Gmail inbox based on a search query.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query": {
						Type:        jsonschema.String,
						Description: "Gmail search query. Defaults to 'is:unread in:inbox'.",
					},
					"max_results": {
						Type:        jsonschema.Integer,
						Description: "Maximum number of emails to list. Defaults to 5.",
					},
				},
			},
		},
	}
}

type listEmailsArgs struct {
	Query      string `json:"query"`
	MaxResults int64  `json:"max_results"`
}

func (l *ListEmails) Execute(ctx context.Context, raw json.RawMessage, accessToken string) model.ToolResult {
	result := model.ToolResult{Tool: l.Name()}

	var args listEmailsArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			result.Error = fmt.Sprintf("invalid arguments: %v", err)
			return result
		}
	}
	if args.Query == "" {
		args.Query = "is:unread in:inbox"
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 5
	}

	svc, err := l.opts.gmailService(ctx, accessToken)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	listed, err := svc.Users.Messages.List("me").Q(args.Query).MaxResults(args.MaxResults).Context(ctx).Do()
	if err != nil {
		result.Error = providerError(err)
		return result
	}
	if len(listed.Messages) == 0 {
		result.Success = true
		result.Message = "No emails found matching the query."
		return result
	}

	summaries := make([]string, 0, len(listed.Messages))
	for _, ref := range listed.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).Context(ctx).Do()
		if err != nil {
			result.Error = providerError(err)
			return result
		}
		var from, subject string
		if msg.Payload != nil {
			for _, header := range msg.Payload.Headers {
				switch header.Name {
				case "From":
					from = header.Value
				case "Subject":
					subject = header.Value
				}
			}
		}
		summaries = append(summaries, fmt.Sprintf("ID: %s, From: %s, Subject: '%s', Snippet: %s", ref.Id, from, subject, msg.Snippet))
	}

	result.Success = true
	result.Message = strings.Join(summaries, "\n")
	return result
}
