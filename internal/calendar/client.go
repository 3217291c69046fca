// Package calendar books Google Calendar events carrying a Meet conference.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"clinic-scheduling-api/internal/booking"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
	TimeZone     string
}

type Client struct {
	svc        *gcal.Service
	calendarID string
	timeZone   string
}

// New authenticates with a stored OAuth refresh token.
func New(ctx context.Context, cfg Config) (*Client, error) {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	return NewWithOptions(ctx, cfg, option.WithTokenSource(ts))
}

func NewWithOptions(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	id := cfg.CalendarID
	if id == "" {
		id = "primary"
	}
	return &Client{svc: svc, calendarID: id, timeZone: cfg.TimeZone}, nil
}

func (c *Client) CreateConference(ctx context.Context, req booking.ConferenceRequest) (*booking.Conference, error) {
	ev := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &gcal.EventDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: c.timeZone},
		End:         &gcal.EventDateTime{DateTime: req.End.Format(time.RFC3339), TimeZone: c.timeZone},
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	if req.AttendeeEmail != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: req.AttendeeEmail}}
	}

	created, err := c.svc.Events.Insert(c.calendarID, ev).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	link := meetLink(created)
	if link == "" {
		return nil, errors.New("event created without a conference link")
	}
	return &booking.Conference{Link: link, EventID: created.Id}, nil
}

// CancelConference deletes an event and tells its attendees. An event that
// is already gone counts as cancelled.
func (c *Client) CancelConference(ctx context.Context, eventID string) error {
	err := c.svc.Events.Delete(c.calendarID, eventID).
		SendUpdates("all").
		Context(ctx).
		Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

func meetLink(ev *gcal.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData == nil {
		return ""
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" && ep.Uri != "" {
			return ep.Uri
		}
	}
	return ""
}
