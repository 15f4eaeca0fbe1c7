// Package weather provides the weather data model, the forecast and
// historical caches, and the read-through load service.
package weather

import (
	"context"
	"time"

	"github.com/skycast/skycast/internal/location"
)

// Provider defines the upstream weather data source.
type Provider interface {
	// FetchForecast fetches current conditions plus hourly and daily
	// forecasts for a location.
	FetchForecast(ctx context.Context, lat, lon float64, timezone string) (*Data, error)

	// FetchHistorical fetches daily aggregates for the given number of
	// calendar days ending yesterday.
	FetchHistorical(ctx context.Context, lat, lon float64, days int) ([]HistoricalDay, error)

	// Name returns the provider name for logging.
	Name() string
}

// Current holds current conditions at a location.
type Current struct {
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feelsLike"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	Precipitation float64 `json:"precipitation"`
	Pressure      float64 `json:"pressure"`
	CloudCover    float64 `json:"cloudCover"`
	UVIndex       float64 `json:"uvIndex"`
	WeatherCode   int     `json:"weatherCode"`
	IsDay         bool    `json:"isDay"`
	Time          string  `json:"time"`
}

// Hourly is a single hour of forecast.
type Hourly struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	PrecipProb    float64 `json:"precipitationProbability"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"windSpeed"`
	WeatherCode   int     `json:"weatherCode"`
	IsDay         bool    `json:"isDay"`
}

// Daily is a single day of forecast.
type Daily struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"tempMax"`
	TempMin       float64 `json:"tempMin"`
	Precipitation float64 `json:"precipitation"`
	PrecipProb    float64 `json:"precipitationProbability"`
	WindSpeedMax  float64 `json:"windSpeedMax"`
	UVIndexMax    float64 `json:"uvIndexMax"`
	WeatherCode   int     `json:"weatherCode"`
	Sunrise       string  `json:"sunrise"`
	Sunset        string  `json:"sunset"`
}

// HistoricalDay is one day of archived weather.
type HistoricalDay struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"tempMax"`
	TempMin       float64 `json:"tempMin"`
	TempMean      float64 `json:"tempMean"`
	Precipitation float64 `json:"precipitation"`
	WindSpeedMax  float64 `json:"windSpeedMax"`
	WeatherCode   int     `json:"weatherCode"`
}

// Data aggregates one fetch: current conditions, up to 48 hourly entries
// and 7 daily entries, plus timezone metadata. It is built fresh on every
// successful fetch and replaced wholesale, never mutated in place.
type Data struct {
	Current  Current  `json:"current"`
	Hourly   []Hourly `json:"hourly"`
	Daily    []Daily  `json:"daily"`
	Timezone string   `json:"timezone"`
}

// Summary is the compact snapshot stored with browsing history entries.
type Summary struct {
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weatherCode"`
	IsDay       bool    `json:"isDay"`
}

// Summarize extracts the history snapshot from a fetch.
func (d *Data) Summarize() Summary {
	return Summary{
		Temperature: d.Current.Temperature,
		WeatherCode: d.Current.WeatherCode,
		IsDay:       d.Current.IsDay,
	}
}

// ForecastEntry is a cached forecast payload.
type ForecastEntry struct {
	Data      *Data             `json:"data"`
	Location  location.Location `json:"location"`
	FetchedAt time.Time         `json:"fetchedAt"`
}

// HistoricalEntry is a cached historical payload.
type HistoricalEntry struct {
	Days      []HistoricalDay   `json:"days"`
	Location  location.Location `json:"location"`
	FetchedAt time.Time         `json:"fetchedAt"`
}
