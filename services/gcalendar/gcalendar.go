package gcalendar

import (
	"context"
	"fmt"
	"time"

	appconfig "juris_desk_go/config"
	"juris_desk_go/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Provider is the external calendar collaborator: create returns an opaque
// event id, delete reports success. Sync failures are soft; callers record
// the error and proceed.
type Provider interface {
	CreateEvent(ctx context.Context, settings *models.UserSettings, event Event) (string, error)
	DeleteEvent(ctx context.Context, settings *models.UserSettings, eventID string) (bool, error)
}

// Event is the minimal event shape the app pushes to the external calendar
type Event struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// OAuthConfig builds the Google OAuth config used for the consent redirect
// and for refreshing stored tokens
func OAuthConfig(cfg *appconfig.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// GoogleCalendar implements Provider against the Google Calendar API
type GoogleCalendar struct {
	oauth *oauth2.Config
	// endpoint overrides the API base URL in tests
	endpoint string
}

// New creates a Google Calendar provider
func New(cfg *appconfig.Config) *GoogleCalendar {
	return &GoogleCalendar{oauth: OAuthConfig(cfg)}
}

// IsConfigured reports whether OAuth credentials are present
func (g *GoogleCalendar) IsConfigured() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

func (g *GoogleCalendar) service(ctx context.Context, settings *models.UserSettings) (*calendar.Service, string, error) {
	if settings == nil || !settings.HasCalendarConnection() {
		return nil, "", fmt.Errorf("no calendar connection for user")
	}

	token := &oauth2.Token{
		AccessToken:  settings.CalendarAccessToken,
		RefreshToken: settings.CalendarRefreshToken,
	}
	if settings.CalendarTokenExpiry != nil {
		token.Expiry = *settings.CalendarTokenExpiry
	}

	opts := []option.ClientOption{
		option.WithTokenSource(g.oauth.TokenSource(ctx, token)),
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := settings.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return svc, calendarID, nil
}

// CreateEvent inserts the event into the user's calendar and returns its id
func (g *GoogleCalendar) CreateEvent(ctx context.Context, settings *models.UserSettings, event Event) (string, error) {
	svc, calendarID, err := g.service(ctx, settings)
	if err != nil {
		return "", err
	}

	end := event.End
	if end.IsZero() {
		end = event.Start.Add(time.Hour)
	}

	created, err := svc.Events.Insert(calendarID, &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       &calendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	return created.Id, nil
}

// DeleteEvent removes the event from the user's calendar. A missing event
// counts as success: the goal state is "event gone".
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, settings *models.UserSettings, eventID string) (bool, error) {
	if eventID == "" {
		return false, fmt.Errorf("missing event id")
	}

	svc, calendarID, err := g.service(ctx, settings)
	if err != nil {
		return false, err
	}

	err = svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && (apiErr.Code == 404 || apiErr.Code == 410) {
			return true, nil
		}
		return false, fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return true, nil
}
