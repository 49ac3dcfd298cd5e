package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"addressfill_backend/platform/validator"
)

type fakeService struct {
	gotPostcode string
	gotNumber   string
	data        map[string]string
	err         error
}

func (f *fakeService) Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error) {
	f.gotPostcode = postcode
	f.gotNumber = houseNumber
	return f.data, f.err
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	New(svc, validator.New()).RegisterRoutes(engine.Group("/api/v1/address"))
	return engine
}

func TestGetAddress(t *testing.T) {
	svc := &fakeService{data: map[string]string{"street": "Mainstreet", "city": "Example"}}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/address?postcode=1234+ab&number=10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp AddressResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Found {
		t.Fatal("expected found=true")
	}
	if resp.Address["street"] != "Mainstreet" {
		t.Errorf("unexpected address: %v", resp.Address)
	}
	// the service receives the normalized postcode
	if svc.gotPostcode != "1234AB" || svc.gotNumber != "10" {
		t.Errorf("unexpected query: %q %q", svc.gotPostcode, svc.gotNumber)
	}
}

func TestGetAddressNoMatch(t *testing.T) {
	router := newTestRouter(&fakeService{data: map[string]string{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/address?postcode=9999ZZ&number=1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp AddressResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Found {
		t.Fatal("expected found=false for a non-existent address")
	}
}

func TestGetAddressRejectsMalformedPostcode(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	for _, query := range []string{
		"postcode=12AB&number=10",
		"postcode=123456&number=10",
		"number=10",
		"postcode=1234AB",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/address?"+query, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, w.Code)
		}
	}
	if svc.gotPostcode != "" {
		t.Error("service should not be called for invalid input")
	}
}

func TestGetAddressUpstreamFailure(t *testing.T) {
	router := newTestRouter(&fakeService{err: errors.New("upstream down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/address?postcode=1234AB&number=10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}
