// Package openmeteo implements the weather.Provider interface against the
// Open-Meteo forecast and archive APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/apierr"
	"github.com/skycast/skycast/internal/faultinject"
	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openmeteo"

	// DefaultForecastURL is the Open-Meteo forecast API endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultArchiveURL is the Open-Meteo historical archive API endpoint.
	DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

	// maxHourlyEntries caps the hourly series regardless of how much the
	// provider returns.
	maxHourlyEntries = 48

	forecastDays = 7
)

// Field selections requested from the provider. Units are always metric;
// display-unit conversion is a downstream concern.
const (
	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,precipitation,weather_code,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m"
	hourlyFields  = "temperature_2m,relative_humidity_2m,precipitation_probability,precipitation,weather_code,wind_speed_10m,is_day"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,wind_speed_10m_max,uv_index_max,sunrise,sunset"
	archiveFields = "weather_code,temperature_2m_max,temperature_2m_min,temperature_2m_mean,precipitation_sum,wind_speed_10m_max"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// ForecastURL overrides the forecast endpoint (used by tests).
	ForecastURL string

	// ArchiveURL overrides the archive endpoint (used by tests).
	ArchiveURL string

	// HTTPClient is the resilient HTTP client. If nil, one with defaults
	// is created.
	HTTPClient *resilience.Client

	// Injector forces calls to fail during manual QA. May be nil.
	Injector *faultinject.Injector

	// Now overrides the clock used for historical date arithmetic.
	Now func() time.Time

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	forecastURL string
	archiveURL  string
	httpClient  *resilience.Client
	injector    *faultinject.Injector
	now         func() time.Time
	logger      zerolog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	forecastURL := cfg.ForecastURL
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	archiveURL := cfg.ArchiveURL
	if archiveURL == "" {
		archiveURL = DefaultArchiveURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		forecastURL: forecastURL,
		archiveURL:  archiveURL,
		httpClient:  httpClient,
		injector:    cfg.Injector,
		now:         now,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchForecast fetches current conditions plus hourly and daily forecast
// series. Units are always metric regardless of display preference.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64, timezone string) (*weather.Data, error) {
	if err := c.injector.Check(); err != nil {
		return nil, err
	}

	if timezone == "" {
		timezone = "auto"
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", currentFields)
	params.Set("hourly", hourlyFields)
	params.Set("daily", dailyFields)
	params.Set("temperature_unit", "celsius")
	params.Set("wind_speed_unit", "kmh")
	params.Set("precipitation_unit", "mm")
	params.Set("timezone", timezone)
	params.Set("forecast_days", fmt.Sprintf("%d", forecastDays))

	var payload forecastResponse
	if err := c.getJSON(ctx, c.forecastURL, params, &payload); err != nil {
		return nil, err
	}

	// A 200 with any of the three sections missing is semantically
	// incomplete, not a transport failure.
	if payload.Current == nil || payload.Hourly == nil || payload.Daily == nil {
		return nil, apierr.Newf(apierr.KindInvalidData, "forecast response missing current, hourly or daily section")
	}

	return toWeatherData(&payload), nil
}

// FetchHistorical fetches daily aggregates for a range of days ending
// yesterday.
func (c *Client) FetchHistorical(ctx context.Context, lat, lon float64, days int) ([]weather.HistoricalDay, error) {
	if err := c.injector.Check(); err != nil {
		return nil, err
	}

	start, end := HistoricalRange(c.now(), days)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("start_date", start)
	params.Set("end_date", end)
	params.Set("daily", archiveFields)
	params.Set("temperature_unit", "celsius")
	params.Set("wind_speed_unit", "kmh")
	params.Set("precipitation_unit", "mm")
	params.Set("timezone", "auto")

	var payload archiveResponse
	if err := c.getJSON(ctx, c.archiveURL, params, &payload); err != nil {
		return nil, err
	}

	if payload.Daily == nil {
		return nil, apierr.Newf(apierr.KindInvalidData, "archive response missing daily section")
	}

	return toHistoricalDays(payload.Daily), nil
}

// HistoricalRange computes the archive date range: it ends yesterday and
// spans days calendar days inclusive, so days=30 yields start and end
// exactly 29 days apart.
func HistoricalRange(now time.Time, days int) (start, end string) {
	endDate := now.AddDate(0, 0, -1)
	startDate := endDate.AddDate(0, 0, -(days - 1))
	return startDate.Format("2006-01-02"), endDate.Format("2006-01-02")
}

func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

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

// toWeatherData normalizes the provider payload: sparse numeric fields
// default to 0, hourly entries are truncated to 48, and the current UV
// index is backfilled from the first daily UV entry since the current
// conditions block does not carry one.
func toWeatherData(resp *forecastResponse) *weather.Data {
	cur := resp.Current
	data := &weather.Data{
		Current: weather.Current{
			Temperature:   fval(cur.Temperature),
			FeelsLike:     fval(cur.ApparentTemperature),
			Humidity:      fval(cur.Humidity),
			WindSpeed:     fval(cur.WindSpeed),
			WindDirection: fval(cur.WindDirection),
			Precipitation: fval(cur.Precipitation),
			Pressure:      fval(cur.PressureMSL),
			CloudCover:    fval(cur.CloudCover),
			WeatherCode:   ival(cur.WeatherCode),
			IsDay:         ival(cur.IsDay) == 1,
			Time:          sval(cur.Time),
		},
		Timezone: resp.Timezone,
	}

	if len(resp.Daily.UVIndexMax) > 0 {
		data.Current.UVIndex = fval(resp.Daily.UVIndexMax[0])
	}

	hours := len(resp.Hourly.Time)
	if hours > maxHourlyEntries {
		hours = maxHourlyEntries
	}
	data.Hourly = make([]weather.Hourly, 0, hours)
	for i := 0; i < hours; i++ {
		data.Hourly = append(data.Hourly, weather.Hourly{
			Time:          resp.Hourly.Time[i],
			Temperature:   fat(resp.Hourly.Temperature, i),
			Humidity:      fat(resp.Hourly.Humidity, i),
			PrecipProb:    fat(resp.Hourly.PrecipProb, i),
			Precipitation: fat(resp.Hourly.Precipitation, i),
			WindSpeed:     fat(resp.Hourly.WindSpeed, i),
			WeatherCode:   iat(resp.Hourly.WeatherCode, i),
			IsDay:         iat(resp.Hourly.IsDay, i) == 1,
		})
	}

	data.Daily = make([]weather.Daily, 0, len(resp.Daily.Time))
	for i := range resp.Daily.Time {
		data.Daily = append(data.Daily, weather.Daily{
			Date:          resp.Daily.Time[i],
			TempMax:       fat(resp.Daily.TempMax, i),
			TempMin:       fat(resp.Daily.TempMin, i),
			Precipitation: fat(resp.Daily.PrecipitationSum, i),
			PrecipProb:    fat(resp.Daily.PrecipProbMax, i),
			WindSpeedMax:  fat(resp.Daily.WindSpeedMax, i),
			UVIndexMax:    fat(resp.Daily.UVIndexMax, i),
			WeatherCode:   iat(resp.Daily.WeatherCode, i),
			Sunrise:       sat(resp.Daily.Sunrise, i),
			Sunset:        sat(resp.Daily.Sunset, i),
		})
	}

	return data
}

func toHistoricalDays(daily *archiveDaily) []weather.HistoricalDay {
	days := make([]weather.HistoricalDay, 0, len(daily.Time))
	for i := range daily.Time {
		days = append(days, weather.HistoricalDay{
			Date:          daily.Time[i],
			TempMax:       fat(daily.TempMax, i),
			TempMin:       fat(daily.TempMin, i),
			TempMean:      fat(daily.TempMean, i),
			Precipitation: fat(daily.PrecipitationSum, i),
			WindSpeedMax:  fat(daily.WindSpeedMax, i),
			WeatherCode:   iat(daily.WeatherCode, i),
		})
	}
	return days
}

// Null-coalescing helpers: the provider omits or nulls individual fields
// on sparse payloads and every numeric defaults to 0.

func fval(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func ival(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func sval(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fat(s []*float64, i int) float64 {
	if i >= len(s) {
		return 0
	}
	return fval(s[i])
}

func iat(s []*int, i int) int {
	if i >= len(s) {
		return 0
	}
	return ival(s[i])
}

func sat(s []string, i int) string {
	if i >= len(s) {
		return ""
	}
	return s[i]
}

// Open-Meteo API response structures. Pointer fields distinguish absent
// values from zero values.

type forecastResponse struct {
	Timezone string        `json:"timezone"`
	Current  *currentBlock `json:"current"`
	Hourly   *hourlyBlock  `json:"hourly"`
	Daily    *dailyBlock   `json:"daily"`
}

type currentBlock struct {
	Time                *string  `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	Humidity            *float64 `json:"relative_humidity_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	IsDay               *int     `json:"is_day"`
	Precipitation       *float64 `json:"precipitation"`
	WeatherCode         *int     `json:"weather_code"`
	CloudCover          *float64 `json:"cloud_cover"`
	PressureMSL         *float64 `json:"pressure_msl"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	WindDirection       *float64 `json:"wind_direction_10m"`
}

type hourlyBlock struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m"`
	Humidity      []*float64 `json:"relative_humidity_2m"`
	PrecipProb    []*float64 `json:"precipitation_probability"`
	Precipitation []*float64 `json:"precipitation"`
	WeatherCode   []*int     `json:"weather_code"`
	WindSpeed     []*float64 `json:"wind_speed_10m"`
	IsDay         []*int     `json:"is_day"`
}

type dailyBlock struct {
	Time             []string   `json:"time"`
	WeatherCode      []*int     `json:"weather_code"`
	TempMax          []*float64 `json:"temperature_2m_max"`
	TempMin          []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	PrecipProbMax    []*float64 `json:"precipitation_probability_max"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
	UVIndexMax       []*float64 `json:"uv_index_max"`
	Sunrise          []string   `json:"sunrise"`
	Sunset           []string   `json:"sunset"`
}

type archiveResponse struct {
	Timezone string        `json:"timezone"`
	Daily    *archiveDaily `json:"daily"`
}

type archiveDaily struct {
	Time             []string   `json:"time"`
	WeatherCode      []*int     `json:"weather_code"`
	TempMax          []*float64 `json:"temperature_2m_max"`
	TempMin          []*float64 `json:"temperature_2m_min"`
	TempMean         []*float64 `json:"temperature_2m_mean"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
}
