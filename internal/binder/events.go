package binder

import (
	"context"

	"addressfill_backend/platform/events"
)

// Event names published on the platform bus.
const (
	EventLookupFailed       = "binder.lookup_failed"
	EventFieldsApplied      = "binder.fields_applied"
	EventSuggestionDeclined = "binder.suggestion_declined"
)

// LookupFailedEvent reports a transport or response failure. Cancelled
// lookups are silent and never produce this event.
type LookupFailedEvent struct {
	events.BaseEvent
	GroupID   string `json:"groupId"`
	Signature string `json:"signature"`
	Reason    string `json:"reason"`
}

func (e LookupFailedEvent) EventName() string { return EventLookupFailed }

// FieldsAppliedEvent reports values written back into a group's fields.
type FieldsAppliedEvent struct {
	events.BaseEvent
	GroupID  string            `json:"groupId"`
	Fields   map[string]string `json:"fields"`
	Prompted bool              `json:"prompted"`
}

func (e FieldsAppliedEvent) EventName() string { return EventFieldsApplied }

// SuggestionDeclinedEvent reports a declined conflict set.
type SuggestionDeclinedEvent struct {
	events.BaseEvent
	GroupID   string `json:"groupId"`
	Signature string `json:"signature"`
}

func (e SuggestionDeclinedEvent) EventName() string { return EventSuggestionDeclined }

func (b *Binder) publishLookupFailed(groupID, signature string, err error) {
	if b.bus == nil {
		return
	}
	b.bus.Publish(context.Background(), LookupFailedEvent{
		BaseEvent: events.NewBaseEvent(),
		GroupID:   groupID,
		Signature: signature,
		Reason:    err.Error(),
	})
}

func (b *Binder) publishApplied(groupID string, written []fieldWrite, prompted bool) {
	if b.bus == nil || len(written) == 0 {
		return
	}
	fields := make(map[string]string, len(written))
	for _, w := range written {
		fields[string(w.role)] = w.value
	}
	b.bus.Publish(context.Background(), FieldsAppliedEvent{
		BaseEvent: events.NewBaseEvent(),
		GroupID:   groupID,
		Fields:    fields,
		Prompted:  prompted,
	})
}

func (b *Binder) publishDeclined(groupID, signature string) {
	if b.bus == nil {
		return
	}
	b.bus.Publish(context.Background(), SuggestionDeclinedEvent{
		BaseEvent: events.NewBaseEvent(),
		GroupID:   groupID,
		Signature: signature,
	})
}
