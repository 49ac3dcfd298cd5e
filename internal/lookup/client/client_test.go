package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"addressfill_backend/platform/logger"
)

func newTestClient(baseURL string) *Client {
	return New(baseURL, 5*time.Second, 100, 100, logger.New("test"))
}

func TestLookupMapsLocatieserverDoc(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": {
				"docs": [{
					"straatnaam": "Mainstreet",
					"woonplaatsnaam": "Example",
					"gemeentenaam": "Examplemunicipality",
					"postcode": "1234AB",
					"huisnummer": 10
				}]
			}
		}`))
	}))
	defer srv.Close()

	fields, err := newTestClient(srv.URL).Lookup(context.Background(), "1234AB", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"street":       "Mainstreet",
		"city":         "Example",
		"municipality": "Examplemunicipality",
		"postalCode":   "1234AB",
		"houseNumber":  "10",
	}
	for key, value := range want {
		if fields[key] != value {
			t.Errorf("expected %s=%q, got %q", key, value, fields[key])
		}
	}
	if gotQuery != "postcode:1234AB and huisnummer:10" {
		t.Errorf("unexpected query sent upstream: %q", gotQuery)
	}
}

func TestLookupStringHouseNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"docs":[{"straatnaam":"Mainstreet","huisnummer":"10A"}]}}`))
	}))
	defer srv.Close()

	fields, err := newTestClient(srv.URL).Lookup(context.Background(), "1234AB", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["houseNumber"] != "10A" {
		t.Errorf("expected houseNumber=%q, got %q", "10A", fields["houseNumber"])
	}
}

func TestLookupNoMatchReturnsEmptyMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"docs":[]}}`))
	}))
	defer srv.Close()

	fields, err := newTestClient(srv.URL).Lookup(context.Background(), "9999ZZ", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("expected empty field map, got %v", fields)
	}
}

func TestLookupUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Lookup(context.Background(), "1234AB", "10"); err == nil {
		t.Fatal("expected error for upstream 502")
	}
}

func TestLookupMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Lookup(context.Background(), "1234AB", "10"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestLookupHonorsCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := newTestClient(srv.URL).Lookup(ctx, "1234AB", "10")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lookup did not return after cancellation")
	}
}
