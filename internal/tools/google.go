package tools

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Options configures how executors reach the Google APIs. Endpoint and
// HTTPClient overrides exist for tests; production leaves them empty and the
// per-request access token becomes a static token source.
type Options struct {
	HTTPClient       *http.Client
	CalendarEndpoint string
	GmailEndpoint    string
}

func (o Options) clientOptions(accessToken, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	} else {
		opts = append(opts, option.WithTokenSource(
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}

// Services are built per invocation, mirroring one bearer token per request.

func (o Options) calendarService(ctx context.Context, accessToken string) (*calendar.Service, error) {
	return calendar.NewService(ctx, o.clientOptions(accessToken, o.CalendarEndpoint)...)
}

func (o Options) gmailService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	return gmail.NewService(ctx, o.clientOptions(accessToken, o.GmailEndpoint)...)
}

// providerError returns the provider's own message verbatim; results carry
// it to the caller without reinterpretation.
func providerError(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return err.Error()
}
