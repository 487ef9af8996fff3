package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/planora/agent-gateway/internal/model"
	calendar "google.golang.org/api/calendar/v3"
)

// Working-hours window queried for free/busy, in the event timezone.
const (
	workdayStartHour = 9
	workdayEndHour   = 18
)

// FindFreeSlots reports the busy intervals of a calendar day. It does not
// compute gaps itself; the raw busy list is surfaced for the conversation
// loop to reason about. Known limitation, kept deliberately.
type FindFreeSlots struct {
	opts Options
	now  func() time.Time
}

func NewFindFreeSlots(opts Options) *FindFreeSlots {
	return &FindFreeSlots{opts: opts, now: time.Now}
}

func (f *FindFreeSlots) Name() string { return "find_free_time_slots" }

func (f *FindFreeSlots) Declaration() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        f.Name(),
			Description: "Finds available time slots of a specific duration on a given day in your primary calendar.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"duration_minutes": {
						Type:        jsonschema.Integer,
						Description: "The desired duration of the meeting in minutes.",
					},
					"day": {
						Type:        jsonschema.String,
						Description: "The day to check for free slots, e.g., 'today', 'tomorrow', or a date like '2025-07-28'.",
					},
				},
				Required: []string{"duration_minutes", "day"},
			},
		},
	}
}

type freeSlotsArgs struct {
	DurationMinutes int    `json:"duration_minutes"`
	Day             string `json:"day"`
}

// resolveDay maps a relative day token or YYYY-MM-DD date onto a calendar day.
func resolveDay(now time.Time, day string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	default:
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(day))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day format")
		}
		return parsed, nil
	}
}

func (f *FindFreeSlots) Execute(ctx context.Context, raw json.RawMessage, accessToken string) model.ToolResult {
	result := model.ToolResult{Tool: f.Name()}

	var args freeSlotsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		result.Error = fmt.Sprintf("invalid arguments: %v", err)
		return result
	}

	day, err := resolveDay(f.now(), args.Day)
	if err != nil {
		result.Error = "Invalid day format. Please use 'today', 'tomorrow', or 'YYYY-MM-DD'."
		return result
	}
	date := day.Format("2006-01-02")

	svc, err := f.opts.calendarService(ctx, accessToken)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin:  fmt.Sprintf("%sT%02d:00:00Z", date, workdayStartHour),
		TimeMax:  fmt.Sprintf("%sT%02d:00:00Z", date, workdayEndHour),
		TimeZone: eventTimeZone,
		Items:    []*calendar.FreeBusyRequestItem{{Id: "primary"}},
	}).Context(ctx).Do()
	if err != nil {
		result.Error = providerError(err)
		return result
	}

	busy := resp.Calendars["primary"].Busy
	result.Success = true
	if len(busy) == 0 {
		result.Message = fmt.Sprintf("The entire day (%s from 9 AM to 6 PM) is free.", date)
		return result
	}

	intervals := make([]string, 0, len(busy))
	for _, period := range busy {
		intervals = append(intervals, fmt.Sprintf("%s - %s", period.Start, period.End))
	}
	result.Message = fmt.Sprintf(
		"Here are the busy slots for %s: %s. Find a gap of %d minutes and propose it to the user.",
		date, strings.Join(intervals, ", "), args.DurationMinutes)
	return result
}
