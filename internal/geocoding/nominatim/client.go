// Package nominatim implements the geocoding.Provider interface against
// the OSM Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/apierr"
	"github.com/skycast/skycast/internal/faultinject"
	"github.com/skycast/skycast/internal/geocoding"
	"github.com/skycast/skycast/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// userAgent identifies the app to the provider, per the Nominatim
	// usage policy.
	userAgent = "skycast/1.0 (github.com/skycast/skycast)"

	// acceptLanguage fixes result labels to a single locale.
	acceptLanguage = "en"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (used by tests).
	BaseURL string

	// HTTPClient is the resilient HTTP client. If nil, one with defaults
	// is created.
	HTTPClient *resilience.Client

	// Injector forces calls to fail during manual QA. May be nil.
	Injector *faultinject.Injector

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	injector   *faultinject.Injector
	logger     zerolog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		injector:   cfg.Injector,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search queries the provider for free-text place candidates.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocoding.Place, error) {
	if err := c.injector.Check(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("accept-language", acceptLanguage)

	var payload []searchResult
	if err := c.getJSON(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	// An empty or null body is a legitimate "no matches" answer.
	places := make([]geocoding.Place, 0, len(payload))
	for _, r := range payload {
		places = append(places, r.toPlace())
	}
	return places, nil
}

// Reverse looks up the place at the given coordinates. A provider
// "unable to geocode" answer returns nil with no error.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*geocoding.Place, error) {
	if err := c.injector.Check(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var payload searchResult
	if err := c.getJSON(ctx, "/reverse", params, &payload); err != nil {
		return nil, err
	}

	if payload.Err != "" || (payload.Lat == "" && payload.Lon == "") {
		return nil, nil
	}

	place := payload.toPlace()
	return &place, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apierr.FromStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.FromParse(err)
	}
	return nil
}

// Nominatim API response structures.

type searchResult struct {
	PlaceID     int64   `json:"place_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	AddressType string  `json:"addresstype"`
	Address     address `json:"address"`
	Err         string  `json:"error"`
}

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

func (r searchResult) toPlace() geocoding.Place {
	lat, _ := strconv.ParseFloat(r.Lat, 64)
	lon, _ := strconv.ParseFloat(r.Lon, 64)

	placeType := r.AddressType
	if placeType == "" {
		placeType = r.Type
	}

	return geocoding.Place{
		PlaceID:   strconv.FormatInt(r.PlaceID, 10),
		Type:      placeType,
		Name:      r.placeName(),
		State:     r.Address.State,
		Country:   r.Address.Country,
		Latitude:  lat,
		Longitude: lon,
	}
}

// placeName picks the best available name: the place's own name, then the
// settlement from the address details, then the leading segment of the
// display name.
func (r searchResult) placeName() string {
	if r.Name != "" {
		return r.Name
	}
	for _, candidate := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.Municipality} {
		if candidate != "" {
			return candidate
		}
	}
	if idx := strings.Index(r.DisplayName, ","); idx > 0 {
		return r.DisplayName[:idx]
	}
	return r.DisplayName
}
