package webhook

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/rajasatyajit/bousai/internal/errors"
)

// Event types and message types the bot reacts to
const (
	EventFollow  = "follow"
	EventMessage = "message"

	MessageLocation = "location"
)

// Event is one validated inbound event
type Event struct {
	Type        string
	UserID      string
	MessageType string
	Latitude    float64
	Longitude   float64
}

// IsLocation reports whether the event is a shared location
func (e Event) IsLocation() bool {
	return e.Type == EventMessage && e.MessageType == MessageLocation
}

// wire shapes use pointers so missing fields can be told apart from zero values
type callbackBody struct {
	Events *[]rawEvent `json:"events"`
}

type rawEvent struct {
	Type   *string `json:"type"`
	Source *struct {
		UserID *string `json:"userId"`
	} `json:"source"`
	Message *struct {
		Type      *string  `json:"type"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"message"`
}

// DecodeEvents parses and validates a callback body. Every event is checked
// before any is returned, so a single bad event rejects the whole batch.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var body callbackBody
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, apperrors.ValidationError{Field: "body", Message: err.Error()}
	}
	if body.Events == nil {
		return nil, apperrors.Missing("events")
	}

	var errs apperrors.MultiError
	events := make([]Event, 0, len(*body.Events))
	for i, raw := range *body.Events {
		ev, err := raw.validate(fmt.Sprintf("events[%d]", i))
		if err != nil {
			errs.Add(err)
			continue
		}
		events = append(events, ev)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return events, nil
}

func (raw rawEvent) validate(prefix string) (Event, error) {
	if raw.Type == nil || *raw.Type == "" {
		return Event{}, apperrors.Missing(prefix + ".type")
	}
	if raw.Source == nil || raw.Source.UserID == nil || *raw.Source.UserID == "" {
		return Event{}, apperrors.Missing(prefix + ".source.userId")
	}

	ev := Event{Type: *raw.Type, UserID: *raw.Source.UserID}
	if ev.Type != EventMessage {
		return ev, nil
	}

	if raw.Message == nil || raw.Message.Type == nil || *raw.Message.Type == "" {
		return Event{}, apperrors.Missing(prefix + ".message.type")
	}
	ev.MessageType = *raw.Message.Type
	if ev.MessageType != MessageLocation {
		return ev, nil
	}

	if raw.Message.Latitude == nil {
		return Event{}, apperrors.Missing(prefix + ".message.latitude")
	}
	if raw.Message.Longitude == nil {
		return Event{}, apperrors.Missing(prefix + ".message.longitude")
	}
	ev.Latitude = *raw.Message.Latitude
	ev.Longitude = *raw.Message.Longitude
	return ev, nil
}
