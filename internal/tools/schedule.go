package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/planora/agent-gateway/internal/model"
	calendar "google.golang.org/api/calendar/v3"
)

// eventTimeZone matches the calendar this assistant schedules into.
const eventTimeZone = "Asia/Kolkata"

// ScheduleEvent creates a calendar event on the primary calendar, always
// requesting a generated conferencing link and notifying all attendees.
type ScheduleEvent struct {
	opts Options
}

func NewScheduleEvent(opts Options) *ScheduleEvent {
	return &ScheduleEvent{opts: opts}
}

func (s *ScheduleEvent) Name() string { return "schedule_calendar_event" }

func (s *ScheduleEvent) Declaration() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        s.Name(),
			Description: "Schedules an event on Google Calendar and optionally invites attendees.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"title": {
						Type:        jsonschema.String,
						Description: "The title of the event.",
					},
					"start_time": {
						Type:        jsonschema.String,
						Description: "The start time in ISO 8601 format (e.g., '2025-07-27T10:00:00').",
					},
					"end_time": {
						Type:        jsonschema.String,
						Description: "The end time in ISO 8601 format (e.g., '2025-07-27T11:00:00').",
					},
					"attendees": {
						Type:        jsonschema.Array,
						Description: "A list of attendee email addresses.",
						Items:       &jsonschema.Definition{Type: jsonschema.String},
					},
					"description": {
						Type:        jsonschema.String,
						Description: "A description for the event.",
					},
				},
				Required: []string{"title", "start_time", "end_time"},
			},
		},
	}
}

type scheduleArgs struct {
	Title       string   `json:"title"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Attendees   []string `json:"attendees"`
	Description string   `json:"description"`
}

func (s *ScheduleEvent) Execute(ctx context.Context, raw json.RawMessage, accessToken string) model.ToolResult {
	result := model.ToolResult{Tool: s.Name()}

	var args scheduleArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		result.Error = fmt.Sprintf("invalid arguments: %v", err)
		return result
	}
	if args.Title == "" || args.StartTime == "" || args.EndTime == "" {
		result.Error = "title, start_time and end_time are required"
		return result
	}

	svc, err := s.opts.calendarService(ctx, accessToken)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	event := &calendar.Event{
		Summary:     args.Title,
		Description: args.Description,
		Start:       &calendar.EventDateTime{DateTime: args.StartTime, TimeZone: eventTimeZone},
		End:         &calendar.EventDateTime{DateTime: args.EndTime, TimeZone: eventTimeZone},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{RequestId: uuid.NewString()},
		},
	}
	for _, email := range args.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert("primary", event).
		SendUpdates("all").
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		result.Error = providerError(err)
		return result
	}

	result.Success = true
	result.EventID = created.Id
	result.EventLink = created.HtmlLink
	result.Message = fmt.Sprintf("Event created successfully! I have sent an invitation to all attendees. View it here: %s", created.HtmlLink)
	return result
}
