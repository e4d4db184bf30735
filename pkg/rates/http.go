package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultTimeout is the timeout of the client used by NewHTTP.
const DefaultTimeout = 10 * time.Second

// HTTP fetches rates from a Frankfurter compatible API.
//
// Only ISO 4217 currencies are supported. Any other code, e.g. for a
// crypto currency, is unavailable without a request being made.
type HTTP struct {
	client  *http.Client
	baseURL string
}

// latest is the response of the /latest endpoint.
type latest struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// NewHTTP returns a gateway for the API at baseURL. If client is nil,
// a client with DefaultTimeout is used.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &HTTP{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (h *HTTP) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	p := NewPair(from, to)
	if p.From == p.To {
		return decimal.NewFromInt(1), nil
	}

	if _, err := currency.ParseISO(p.From); err != nil {
		return decimal.Zero, unavailable(p, fmt.Sprintf("%s is not an ISO 4217 currency", p.From))
	}

	if _, err := currency.ParseISO(p.To); err != nil {
		return decimal.Zero, unavailable(p, fmt.Sprintf("%s is not an ISO 4217 currency", p.To))
	}

	var data latest
	err := h.get(ctx, fmt.Sprintf("%s/latest?%s", h.baseURL, url.Values{"from": {p.From}, "to": {p.To}}.Encode()), &data)
	if err != nil {
		log.Debug().Str("pair", p.String()).Err(err).Msg("rates")
		return decimal.Zero, unavailable(p, err.Error())
	}

	rate, ok := data.Rates[p.To]
	if !ok {
		return decimal.Zero, unavailable(p, "missing in response")
	}

	if !rate.IsPositive() {
		return decimal.Zero, unavailable(p, fmt.Sprintf("invalid rate %s", rate))
	}

	return rate, nil
}

// get performs a GET request and unmarshals the JSON response into data.
func (h *HTTP) get(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(data)
}
