// Package client provides the HTTP client for PDOK Locatieserver address lookups.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"addressfill_backend/platform/logger"
)

const (
	freeSearchPath = "/free"
	defaultTimeout = 10 * time.Second
)

// flexString handles JSON values that can be either string or number.
// Locatieserver returns huisnummer as a number for plain addresses and as
// a string when a huisletter is folded in.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = flexString(str)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexString(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into flexString", string(data))
}

// Client is the HTTP client for the Locatieserver free search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a new Locatieserver client. Outbound requests are rate
// limited to ratePerSec with the given burst.
func New(baseURL string, timeout time.Duration, ratePerSec float64, burst int, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), burst),
		log:        log,
	}
}

type locatieDoc struct {
	Straatnaam     string     `json:"straatnaam"`
	Woonplaatsnaam string     `json:"woonplaatsnaam"`
	Gemeentenaam   string     `json:"gemeentenaam"`
	Postcode       string     `json:"postcode"`
	Huisnummer     flexString `json:"huisnummer"`
}

type freeSearchResponse struct {
	Response struct {
		Docs []locatieDoc `json:"docs"`
	} `json:"response"`
}

// Lookup resolves a normalized postal code and house number to a flat map
// of source keys. An address with no match yields an empty map, not an
// error.
func (c *Client) Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("postcode:%s and huisnummer:%s", postcode, houseNumber))
	params.Set("fq", "type:adres")
	params.Set("rows", "1")
	params.Set("fl", "straatnaam,woonplaatsnaam,gemeentenaam,postcode,huisnummer")
	params.Set("wt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, freeSearchPath, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.log.Error("locatieserver request failed", "error", err)
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusBadRequest:
		c.log.Error("locatieserver bad request", "status", resp.StatusCode, "url", reqURL)
		return nil, fmt.Errorf("bad request: invalid parameters")
	default:
		c.log.Error("locatieserver upstream error", "status", resp.StatusCode)
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var payload freeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("locatieserver decode failed", "error", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(payload.Response.Docs) == 0 {
		return map[string]string{}, nil
	}

	doc := payload.Response.Docs[0]
	fields := make(map[string]string)
	setField(fields, "street", doc.Straatnaam)
	setField(fields, "city", doc.Woonplaatsnaam)
	setField(fields, "municipality", doc.Gemeentenaam)
	setField(fields, "postalCode", doc.Postcode)
	setField(fields, "houseNumber", string(doc.Huisnummer))
	return fields, nil
}

func setField(fields map[string]string, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
