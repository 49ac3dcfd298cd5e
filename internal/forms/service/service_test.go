package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"addressfill_backend/internal/binder"
	"addressfill_backend/internal/forms/sse"
	"addressfill_backend/internal/forms/transport"
	"addressfill_backend/platform/apperr"
	"addressfill_backend/platform/logger"
)

type fakeLookup struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeLookup) Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.data))
	for k, v := range f.data {
		out[k] = v
	}
	return out, nil
}

func newTestService(t *testing.T, lk binder.Lookup, confirmTimeout time.Duration) *Service {
	t.Helper()
	log := logger.New("test")
	svc := New(sse.New(log), confirmTimeout, log)
	bind := binder.New(lk, svc, nil, log, 10*time.Millisecond)
	svc.AttachBinder(bind)
	return svc
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func addressGroup(values map[string]string) transport.CreateGroupRequest {
	roles := []string{"postalcode", "number", "street", "city", "country"}
	g := transport.CreateGroupRequest{Name: "shipping"}
	for _, role := range roles {
		g.Fields = append(g.Fields, transport.CreateFieldRequest{Role: role, Value: values[role]})
	}
	return g
}

func fieldValue(resp transport.FormResponse, group, role string) string {
	for _, g := range resp.Groups {
		if g.Name != group {
			continue
		}
		for _, f := range g.Fields {
			if f.Role == role {
				return f.Value
			}
		}
	}
	return ""
}

func TestCreateAndGetForm(t *testing.T) {
	svc := newTestService(t, &fakeLookup{}, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ID == uuid.Nil {
		t.Fatal("expected a form id")
	}
	if len(resp.Groups) != 1 || resp.Groups[0].Name != "shipping" {
		t.Fatalf("unexpected groups: %+v", resp.Groups)
	}
	if len(resp.Groups[0].Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(resp.Groups[0].Fields))
	}

	got, err := svc.GetForm(resp.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != resp.ID {
		t.Fatalf("expected form %s, got %s", resp.ID, got.ID)
	}
}

func TestCreateFormRejectsDuplicateGroup(t *testing.T) {
	svc := newTestService(t, &fakeLookup{}, time.Second)

	_, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(nil), addressGroup(nil)},
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestEditFieldUnknownTargets(t *testing.T) {
	svc := newTestService(t, &fakeLookup{}, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.EditField(uuid.New(), transport.EditFieldRequest{Group: "shipping", Role: "street", Value: "x"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown form, got %v", err)
	}
	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "billing", Role: "street", Value: "x"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown group, got %v", err)
	}
}

func TestEditTriggersLookupAndSilentFill(t *testing.T) {
	lk := &fakeLookup{data: map[string]string{
		"street":      "Mainstreet",
		"city":        "Example",
		"postalCode":  "1234AB",
		"houseNumber": "10",
	}}
	svc := newTestService(t, lk, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "postalcode", Value: "1234 ab"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "number", Value: "10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitUntil(t, time.Second, func() bool {
		got, err := svc.GetForm(resp.ID)
		return err == nil && fieldValue(got, "shipping", "street") == "Mainstreet"
	})

	got, err := svc.GetForm(resp.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city := fieldValue(got, "shipping", "city"); city != "Example" {
		t.Errorf("expected city filled, got %q", city)
	}
	if country := fieldValue(got, "shipping", "country"); country != "Nederland" {
		t.Errorf("expected default country, got %q", country)
	}
	// the user's own postcode text stays untouched
	if pc := fieldValue(got, "shipping", "postalcode"); pc != "1234 ab" {
		t.Errorf("expected raw postcode preserved, got %q", pc)
	}
}

func TestPrefilledFormEvaluatesOnCreate(t *testing.T) {
	lk := &fakeLookup{data: map[string]string{"street": "Mainstreet"}}
	svc := newTestService(t, lk, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(map[string]string{
			"postalcode": "1234AB",
			"number":     "10",
		})},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitUntil(t, time.Second, func() bool {
		got, err := svc.GetForm(resp.ID)
		return err == nil && fieldValue(got, "shipping", "street") == "Mainstreet"
	})
}

func TestConfirmTimeoutLeavesFieldUnchanged(t *testing.T) {
	lk := &fakeLookup{data: map[string]string{"street": "Newstreet"}}
	svc := newTestService(t, lk, 30*time.Millisecond)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(map[string]string{
			"street": "Oldstreet",
		})},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "postalcode", Value: "1234AB"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "number", Value: "10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the prompt appears and then times out
	waitUntil(t, time.Second, func() bool {
		svc.mu.RLock()
		defer svc.mu.RUnlock()
		return len(svc.pending) > 0
	})
	waitUntil(t, time.Second, func() bool {
		svc.mu.RLock()
		defer svc.mu.RUnlock()
		return len(svc.pending) == 0
	})

	got, err := svc.GetForm(resp.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if street := fieldValue(got, "shipping", "street"); street != "Oldstreet" {
		t.Errorf("expected street untouched after prompt timeout, got %q", street)
	}
}

func TestDecideAcceptAppliesSuggestion(t *testing.T) {
	lk := &fakeLookup{data: map[string]string{"street": "Newstreet"}}
	svc := newTestService(t, lk, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(map[string]string{
			"street": "Oldstreet",
		})},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "postalcode", Value: "1234AB"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "number", Value: "10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var promptID uuid.UUID
	waitUntil(t, time.Second, func() bool {
		svc.mu.RLock()
		defer svc.mu.RUnlock()
		for id := range svc.pending {
			promptID = id
			return true
		}
		return false
	})

	if err := svc.Decide(resp.ID, promptID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitUntil(t, time.Second, func() bool {
		got, err := svc.GetForm(resp.ID)
		return err == nil && fieldValue(got, "shipping", "street") == "Newstreet"
	})
}

func TestDecideUnknownPrompt(t *testing.T) {
	svc := newTestService(t, &fakeLookup{}, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Decide(resp.ID, uuid.New(), true); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown prompt, got %v", err)
	}
}

func TestCloseFormMarksFieldsAbsent(t *testing.T) {
	svc := newTestService(t, &fakeLookup{}, time.Second)

	resp, err := svc.CreateForm(transport.CreateFormRequest{
		Groups: []transport.CreateGroupRequest{addressGroup(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CloseForm(resp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Exists(resp.ID) {
		t.Fatal("expected session to be gone")
	}
	if err := svc.CloseForm(resp.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for double close, got %v", err)
	}
	if err := svc.EditField(resp.ID, transport.EditFieldRequest{Group: "shipping", Role: "street", Value: "x"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after close, got %v", err)
	}
}

func TestSessionFieldAbsentRejectsWrites(t *testing.T) {
	f := &sessionField{value: "before"}
	f.markAbsent()

	if f.Present() {
		t.Fatal("expected field to report absent")
	}
	if err := f.SetValue("after"); err == nil {
		t.Fatal("expected write to absent field to fail")
	}
	if f.Value() != "before" {
		t.Fatalf("expected value unchanged, got %q", f.Value())
	}
}

func TestGroupIDRoundTrip(t *testing.T) {
	formID := uuid.New()
	groupID := GroupID(formID, "shipping/main")

	gotForm, gotGroup, ok := SplitGroupID(groupID)
	if !ok {
		t.Fatal("expected split to succeed")
	}
	if gotForm != formID || gotGroup != "shipping/main" {
		t.Fatalf("round trip mismatch: %s %q", gotForm, gotGroup)
	}

	if _, _, ok := SplitGroupID("not-a-group-id"); ok {
		t.Fatal("expected split to fail without separator")
	}
	if _, _, ok := SplitGroupID("nope/shipping"); ok {
		t.Fatal("expected split to fail on malformed uuid")
	}
}
