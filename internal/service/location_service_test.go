package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/memory"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func newTestLocation(url string, timeout time.Duration) *locationService {
	svc := NewLocationService("key", timeout, memory.NewLocationCache(time.Minute), logger.NewNopLogger()).(*locationService)
	svc.baseURL = url
	return svc
}

func TestLocationService_Describe(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.NotEmpty(t, r.URL.Query().Get("latlng"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"address_components":[
			{"long_name":"Travis County","short_name":"Travis County","types":["administrative_area_level_2"]},
			{"long_name":"Austin","short_name":"Austin","types":["locality","political"]},
			{"long_name":"Texas","short_name":"TX","types":["administrative_area_level_1"]}
		]}]}`))
	}))
	defer srv.Close()

	svc := newTestLocation(srv.URL, time.Second)
	ctx := context.Background()

	assert.Equal(t, "Austin, TX", svc.Describe(ctx, floatPtr(30.267), floatPtr(-97.743)))
	assert.Equal(t, "Austin, TX", svc.Describe(ctx, floatPtr(30.268), floatPtr(-97.744)))
	assert.Equal(t, int32(1), hits.Load())
}

func TestLocationService_Fallbacks(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	ctx := context.Background()

	assert.Equal(t, LocationUnavailable, newTestLocation(slow.URL, 0).Describe(ctx, nil, nil))
	assert.Equal(t, LocationUnavailable, newTestLocation(slow.URL, 20*time.Millisecond).Describe(ctx, floatPtr(1), floatPtr(2)))
	assert.Equal(t, LocationUnavailable, newTestLocation(failing.URL, time.Second).Describe(ctx, floatPtr(1), floatPtr(2)))
}

func TestFormatPlace_Unknowns(t *testing.T) {
	assert.Equal(t, "Unknown, Unknown", formatPlace(nil))
	assert.Equal(t, "Travis County, TX", formatPlace([]addressComponent{
		{LongName: "Texas", ShortName: "TX", Types: []string{"administrative_area_level_1"}},
		{LongName: "Travis County", Types: []string{"administrative_area_level_2"}},
	}))
}
