// Package forms provides the form session domain module. It owns the HTTP
// surface, the session store, and the SSE feedback stream, and relays
// binder events to connected clients.
package forms

import (
	"context"

	"addressfill_backend/internal/binder"
	"addressfill_backend/internal/forms/handler"
	"addressfill_backend/internal/forms/service"
	"addressfill_backend/internal/forms/sse"
	apphttp "addressfill_backend/internal/http"
	"addressfill_backend/platform/config"
	"addressfill_backend/platform/events"
	"addressfill_backend/platform/logger"
	"addressfill_backend/platform/validator"
)

// Module represents the forms domain module
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	stream  *sse.Service
	bind    *binder.Binder
	log     *logger.Logger
}

// NewModule creates a new forms module with all dependencies wired. The
// binder is constructed here because the form service doubles as its
// confirmation prompt.
func NewModule(cfg config.BinderConfig, lookup binder.Lookup, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	stream := sse.New(log)
	svc := service.New(stream, cfg.GetConfirmTimeout(), log)
	bind := binder.New(lookup, svc, bus, log, cfg.GetDebounceInterval())
	svc.AttachBinder(bind)

	return &Module{
		handler: handler.New(svc, stream, val),
		svc:     svc,
		stream:  stream,
		bind:    bind,
		log:     log,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "forms"
}

// RegisterRoutes registers the module's routes under /api/v1/forms
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	forms := ctx.V1.Group("/forms")
	m.handler.RegisterRoutes(forms)
}

// RegisterHandlers subscribes to binder events and relays them to the
// form's SSE stream.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(binder.EventFieldsApplied, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(binder.FieldsAppliedEvent)
		if !ok {
			return nil
		}
		m.relay(e.GroupID, sse.EventFieldsApplied, map[string]interface{}{
			"fields":   e.Fields,
			"prompted": e.Prompted,
		})
		return nil
	}))

	bus.Subscribe(binder.EventLookupFailed, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(binder.LookupFailedEvent)
		if !ok {
			return nil
		}
		m.relay(e.GroupID, sse.EventLookupFailed, map[string]interface{}{
			"reason": e.Reason,
		})
		return nil
	}))

	bus.Subscribe(binder.EventSuggestionDeclined, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(binder.SuggestionDeclinedEvent)
		if !ok {
			return nil
		}
		m.relay(e.GroupID, sse.EventSuggestionDeclined, nil)
		return nil
	}))
}

func (m *Module) relay(groupID string, eventType sse.EventType, data interface{}) {
	formID, group, ok := service.SplitGroupID(groupID)
	if !ok {
		m.log.Warn("binder event with malformed group id", "groupId", groupID)
		return
	}
	m.stream.Publish(formID, sse.Event{Type: eventType, Group: group, Data: data})
}

// Close shuts down the SSE stream.
func (m *Module) Close() {
	m.stream.Close()
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
