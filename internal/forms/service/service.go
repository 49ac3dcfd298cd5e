// Package service manages form sessions: it owns the field handles the
// binder reads and writes, and it relays confirmation prompts to connected
// clients over SSE.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"addressfill_backend/internal/binder"
	"addressfill_backend/internal/forms/sse"
	"addressfill_backend/internal/forms/transport"
	"addressfill_backend/platform/apperr"
	"addressfill_backend/platform/logger"
)

// viewOrder fixes the field order in form views.
var viewOrder = []binder.Role{
	binder.RolePostalCode,
	binder.RoleNumber,
	binder.RoleStreet,
	binder.RoleCity,
	binder.RoleCountry,
}

// sessionField is the binder's handle on one form field. A field of a
// closed session reports Present() == false and rejects writes.
type sessionField struct {
	mu     sync.RWMutex
	value  string
	absent bool
}

func (f *sessionField) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

func (f *sessionField) SetValue(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.absent {
		return fmt.Errorf("field no longer present")
	}
	f.value = value
	return nil
}

func (f *sessionField) Present() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.absent
}

// setRaw records a user edit. Unlike SetValue it is not a binder write.
func (f *sessionField) setRaw(value string) {
	f.mu.Lock()
	f.value = value
	f.mu.Unlock()
}

func (f *sessionField) markAbsent() {
	f.mu.Lock()
	f.absent = true
	f.mu.Unlock()
}

type formGroup struct {
	name    string
	groupID string
	fields  map[binder.Role]*sessionField
}

type formSession struct {
	id     uuid.UUID
	groups map[string]*formGroup
}

// pendingPrompt is a confirmation waiting on a client decision.
type pendingPrompt struct {
	formID   uuid.UUID
	decision chan bool
}

// Service is the form session store. It implements binder.Confirmer by
// publishing suggestion prompts over SSE and blocking until the client
// answers or the prompt times out.
type Service struct {
	mu      sync.RWMutex
	forms   map[uuid.UUID]*formSession
	pending map[uuid.UUID]*pendingPrompt

	bind           *binder.Binder
	stream         *sse.Service
	confirmTimeout time.Duration
	log            *logger.Logger
}

// New creates the form session service. AttachBinder must be called before
// any session is opened.
func New(stream *sse.Service, confirmTimeout time.Duration, log *logger.Logger) *Service {
	return &Service{
		forms:          make(map[uuid.UUID]*formSession),
		pending:        make(map[uuid.UUID]*pendingPrompt),
		stream:         stream,
		confirmTimeout: confirmTimeout,
		log:            log,
	}
}

// AttachBinder wires the binder. The binder itself needs this service as
// its Confirmer, so the two are connected after construction.
func (s *Service) AttachBinder(b *binder.Binder) {
	s.bind = b
}

// GroupID builds the binder group identifier for a form's named group.
func GroupID(formID uuid.UUID, group string) string {
	return formID.String() + "/" + group
}

// SplitGroupID recovers the form ID and group name from a binder group
// identifier.
func SplitGroupID(groupID string) (uuid.UUID, string, bool) {
	idx := strings.IndexByte(groupID, '/')
	if idx < 0 {
		return uuid.Nil, "", false
	}
	formID, err := uuid.Parse(groupID[:idx])
	if err != nil {
		return uuid.Nil, "", false
	}
	return formID, groupID[idx+1:], true
}

// CreateForm opens a session, binds every declared field into the binder,
// and schedules an evaluation for groups that arrive with prefilled values.
func (s *Service) CreateForm(req transport.CreateFormRequest) (transport.FormResponse, error) {
	form := &formSession{
		id:     uuid.New(),
		groups: make(map[string]*formGroup),
	}

	for _, g := range req.Groups {
		if _, exists := form.groups[g.Name]; exists {
			return transport.FormResponse{}, apperr.Conflict(fmt.Sprintf("duplicate group %q", g.Name))
		}
		group := &formGroup{
			name:    g.Name,
			groupID: GroupID(form.id, g.Name),
			fields:  make(map[binder.Role]*sessionField),
		}
		for _, f := range g.Fields {
			role := binder.Role(f.Role)
			if _, exists := group.fields[role]; exists {
				return transport.FormResponse{}, apperr.Conflict(fmt.Sprintf("duplicate role %q in group %q", f.Role, g.Name))
			}
			group.fields[role] = &sessionField{value: f.Value}
		}
		form.groups[g.Name] = group
	}

	s.mu.Lock()
	s.forms[form.id] = form
	s.mu.Unlock()

	for _, group := range form.groups {
		prefilled := false
		for role, field := range group.fields {
			s.bind.Bind(group.groupID, role, field)
			if field.Value() != "" {
				prefilled = true
			}
		}
		if prefilled {
			s.bind.FieldEdited(group.groupID)
		}
	}

	s.log.Info("form session opened", "formId", form.id, "groups", len(form.groups))
	return s.view(form), nil
}

// GetForm returns the current state of a session.
func (s *Service) GetForm(formID uuid.UUID) (transport.FormResponse, error) {
	s.mu.RLock()
	form, ok := s.forms[formID]
	s.mu.RUnlock()
	if !ok {
		return transport.FormResponse{}, apperr.NotFound("form not found")
	}
	return s.view(form), nil
}

// Exists reports whether a session is open.
func (s *Service) Exists(formID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.forms[formID]
	return ok
}

// EditField records a user edit and notifies the binder so the group's
// debounce window restarts.
func (s *Service) EditField(formID uuid.UUID, req transport.EditFieldRequest) error {
	s.mu.RLock()
	form, ok := s.forms[formID]
	s.mu.RUnlock()
	if !ok {
		return apperr.NotFound("form not found")
	}

	group, ok := form.groups[req.Group]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("group %q not found", req.Group))
	}
	field, ok := group.fields[binder.Role(req.Role)]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("no %q field in group %q", req.Role, req.Group))
	}

	field.setRaw(req.Value)
	s.bind.FieldEdited(group.groupID)
	return nil
}

// CloseForm ends a session. Its fields become absent, so in-flight lookups
// finishing afterwards skip their writes.
func (s *Service) CloseForm(formID uuid.UUID) error {
	s.mu.Lock()
	form, ok := s.forms[formID]
	if ok {
		delete(s.forms, formID)
	}
	s.mu.Unlock()
	if !ok {
		return apperr.NotFound("form not found")
	}

	for _, group := range form.groups {
		for _, field := range group.fields {
			field.markAbsent()
		}
	}

	s.log.Info("form session closed", "formId", formID)
	return nil
}

// Decide answers an outstanding suggestion prompt. A prompt that already
// timed out or was answered is gone.
func (s *Service) Decide(formID uuid.UUID, promptID uuid.UUID, accept bool) error {
	s.mu.Lock()
	prompt, ok := s.pending[promptID]
	if ok && prompt.formID == formID {
		delete(s.pending, promptID)
	}
	s.mu.Unlock()

	if !ok || prompt.formID != formID {
		return apperr.NotFound("prompt not found")
	}

	prompt.decision <- accept
	return nil
}

// Confirm implements binder.Confirmer. It publishes a prompt to the form's
// SSE stream and waits for the client's decision. A timeout or cancelled
// context returns an error, which the binder treats as a decline without
// remembering the suggestion set.
func (s *Service) Confirm(ctx context.Context, groupID string, suggestions []binder.Suggestion) (bool, error) {
	formID, group, ok := SplitGroupID(groupID)
	if !ok {
		return false, fmt.Errorf("malformed group id %q", groupID)
	}

	prompt := &pendingPrompt{
		formID:   formID,
		decision: make(chan bool, 1),
	}
	promptID := uuid.New()

	s.mu.Lock()
	s.pending[promptID] = prompt
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, promptID)
		s.mu.Unlock()
	}()

	s.stream.Publish(formID, sse.Event{
		Type:  sse.EventSuggestionPrompt,
		Group: group,
		Data: map[string]interface{}{
			"promptId":    promptID,
			"suggestions": suggestions,
		},
	})

	timer := time.NewTimer(s.confirmTimeout)
	defer timer.Stop()

	select {
	case accept := <-prompt.decision:
		return accept, nil
	case <-timer.C:
		return false, fmt.Errorf("prompt %s timed out after %s", promptID, s.confirmTimeout)
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Service) view(form *formSession) transport.FormResponse {
	resp := transport.FormResponse{ID: form.id}

	names := make([]string, 0, len(form.groups))
	for name := range form.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := form.groups[name]
		gv := transport.GroupView{Name: name}
		for _, role := range viewOrder {
			if field, ok := group.fields[role]; ok {
				gv.Fields = append(gv.Fields, transport.FieldView{
					Role:  string(role),
					Value: field.Value(),
				})
			}
		}
		resp.Groups = append(resp.Groups, gv)
	}
	return resp
}

// Compile-time check that Service implements binder.Confirmer.
var _ binder.Confirmer = (*Service)(nil)
