package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// wttrResponse is the subset of wttr.in's j1 payload we use.
type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		TempF       string `json:"temp_F"`
		FeelsLikeC  string `json:"FeelsLikeC"`
		Humidity    string `json:"humidity"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
	Weather []struct {
		Date     string `json:"date"`
		MaxTempC string `json:"maxtempC"`
		MinTempC string `json:"mintempC"`
		Hourly   []struct {
			WeatherDesc []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"hourly"`
	} `json:"weather"`
}

// Weather reports conditions and forecasts from wttr.in. Responses are
// framed positively; the assistant is an optimist.
type Weather struct {
	client  *http.Client
	baseURL string
}

func NewWeather() *Weather {
	return &Weather{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://wttr.in",
	}
}

// Register wires the weather action kinds into the set.
func (w *Weather) Register(s *Set) {
	s.RegisterFunc(types.ActionWeatherNow, w.Now)
	s.RegisterFunc(types.ActionWeatherForecast, w.Forecast)
}

func (w *Weather) fetch(ctx context.Context, city string) (*wttrResponse, *types.ExecutionResult) {
	reqURL := fmt.Sprintf("%s/%s?format=j1", w.baseURL, url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.Fail(types.ErrInternal, fmt.Sprintf("failed to build weather request: %v", err))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, types.Fail(types.ErrTransient, fmt.Sprintf("weather service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.Fail(types.ErrTransient, fmt.Sprintf("weather service returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, types.Fail(types.ErrTransient, fmt.Sprintf("failed to read weather response: %v", err))
	}
	var parsed wttrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, types.Fail(types.ErrTransient, "weather service returned malformed data")
	}
	return &parsed, nil
}

// Now reports current conditions for a city.
func (w *Weather) Now(ctx context.Context, action types.Action) *types.ExecutionResult {
	city, _ := action.StringParam("city")

	parsed, failure := w.fetch(ctx, city)
	if failure != nil {
		return failure
	}
	if len(parsed.CurrentCondition) == 0 {
		return types.Fail(types.ErrTransient, "weather service returned no conditions")
	}

	current := parsed.CurrentCondition[0]
	desc := "unknown"
	if len(current.WeatherDesc) > 0 {
		desc = current.WeatherDesc[0].Value
	}

	message := fmt.Sprintf("%s in %s right now: %s°C (%s°F), feels like %s°C, humidity %s%%. %s",
		desc, city, current.TempC, current.TempF, current.FeelsLikeC, current.Humidity,
		optimisticSpin(desc))
	return types.OkData(message, map[string]any{
		"city":        city,
		"temp_c":      current.TempC,
		"temp_f":      current.TempF,
		"description": desc,
		"humidity":    current.Humidity,
	})
}

// Forecast reports the multi-day outlook for a city.
func (w *Weather) Forecast(ctx context.Context, action types.Action) *types.ExecutionResult {
	city, _ := action.StringParam("city")
	days, ok := action.IntParam("days")
	if !ok || days <= 0 {
		days = 3
	}

	parsed, failure := w.fetch(ctx, city)
	if failure != nil {
		return failure
	}
	if len(parsed.Weather) == 0 {
		return types.Fail(types.ErrTransient, "weather service returned no forecast")
	}
	if days > len(parsed.Weather) {
		days = len(parsed.Weather)
	}

	var b strings.Builder
	daily := make([]map[string]any, 0, days)
	fmt.Fprintf(&b, "Forecast for %s:\n", city)
	for _, day := range parsed.Weather[:days] {
		desc := "unknown"
		if len(day.Hourly) > 0 && len(day.Hourly[0].WeatherDesc) > 0 {
			desc = day.Hourly[0].WeatherDesc[0].Value
		}
		fmt.Fprintf(&b, "%s: %s, high %s°C, low %s°C\n", day.Date, desc, day.MaxTempC, day.MinTempC)
		daily = append(daily, map[string]any{
			"date": day.Date, "high_c": day.MaxTempC, "low_c": day.MinTempC, "description": desc,
		})
	}

	return types.OkData(strings.TrimSpace(b.String()), map[string]any{
		"city": city,
		"days": daily,
	})
}

// optimisticSpin adds the upbeat one-liner the assistant is known for.
func optimisticSpin(desc string) string {
	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "sun"), strings.Contains(lower, "clear"):
		return "A great day to be outside!"
	case strings.Contains(lower, "rain"), strings.Contains(lower, "drizzle"):
		return "Perfect weather for hot coffee and good vibes!"
	case strings.Contains(lower, "cloud"), strings.Contains(lower, "overcast"):
		return "Gentle cloud cover keeping things comfortable!"
	case strings.Contains(lower, "snow"):
		return "Winter magic happening right now!"
	case strings.Contains(lower, "storm"), strings.Contains(lower, "thunder"):
		return "Nature's light show, best enjoyed from indoors!"
	default:
		return "Make the most of it!"
	}
}
