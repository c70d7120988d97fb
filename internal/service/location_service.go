package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/memory"
)

const (
	LocationUnavailable = "Location unavailable"
	unknownPlace        = "Unknown"
	geocodeURL          = "https://maps.googleapis.com/maps/api/geocode/json"
)

type ILocationService interface {
	// Describe turns coordinates into "City, ST". It never fails: missing
	// coordinates, timeouts and API errors yield LocationUnavailable.
	Describe(ctx context.Context, latitude, longitude *float64) string
}

type locationService struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	cache   *memory.LocationCache
	logger  logger.ILogger
}

func NewLocationService(apiKey string, timeout time.Duration, cache *memory.LocationCache, log logger.ILogger) ILocationService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &locationService{
		apiKey:  apiKey,
		baseURL: geocodeURL,
		timeout: timeout,
		client:  &http.Client{},
		cache:   cache,
		logger:  log,
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []addressComponent `json:"address_components"`
	} `json:"results"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

func (s *locationService) Describe(ctx context.Context, latitude, longitude *float64) string {
	if latitude == nil || longitude == nil || s.apiKey == "" {
		return LocationUnavailable
	}

	key := s.cache.Key(*latitude, *longitude)
	if place, ok := s.cache.Get(key); ok {
		return place
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	place, err := s.reverseGeocode(ctx, *latitude, *longitude)
	if err != nil {
		s.logger.Warn("Location", "Reverse geocoding failed", map[string]interface{}{"error": err.Error()})
		return LocationUnavailable
	}

	s.cache.Save(key, place)
	return place
}

func (s *locationService) reverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", lat, lon))
	params.Add("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode status %d", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("geocode returned no results (status %s)", result.Status)
	}

	return formatPlace(result.Results[0].AddressComponents), nil
}

func formatPlace(components []addressComponent) string {
	city := componentName(components, "locality", false)
	if city == "" {
		city = componentName(components, "administrative_area_level_2", false)
	}
	state := componentName(components, "administrative_area_level_1", true)
	if city == "" {
		city = unknownPlace
	}
	if state == "" {
		state = unknownPlace
	}
	return fmt.Sprintf("%s, %s", city, state)
}

func componentName(components []addressComponent, kind string, short bool) string {
	for _, c := range components {
		if slices.Contains(c.Types, kind) {
			if short {
				return c.ShortName
			}
			return c.LongName
		}
	}
	return ""
}
