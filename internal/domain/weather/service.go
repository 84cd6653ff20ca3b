package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/yanqian/packwise/pkg/errors"
	"github.com/yanqian/packwise/pkg/util"
)

const (
	defaultCacheTTL      = time.Hour
	defaultLookupTimeout = 10 * time.Second
	forecastDays         = 3
)

// Provider resolves a destination and date range to a weather summary.
type Provider interface {
	FetchSummary(ctx context.Context, destination string, start, end time.Time, units Units) Summary
}

// Service is the TTL cache in front of the geocode and forecast upstreams.
type Service struct {
	cfg        Config
	geocoder   Geocoder
	forecaster Forecaster
	store      Store
	group      singleflight.Group
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the weather cache.
func NewService(cfg Config, geocoder Geocoder, forecaster Forecaster, store Store, logger *slog.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}
	return &Service{
		cfg:        cfg,
		geocoder:   geocoder,
		forecaster: forecaster,
		store:      store,
		logger:     logger.With("component", "weather.service"),
		now:        util.NowUTC,
	}
}

// FetchSummary never fails: any upstream problem yields the month based estimate.
func (s *Service) FetchSummary(ctx context.Context, destination string, start, end time.Time, units Units) Summary {
	if units != UnitsImperial {
		units = UnitsMetric
	}
	key := cacheKey(destination, start, units)

	if entry, ok := s.lookup(ctx, key); ok {
		summary := entry.Summary
		summary.Source = SourceCache
		return summary
	}

	if ctx.Err() != nil {
		return fallbackSummary(start, units)
	}

	// The shared fetch is detached from whichever caller started it. Each
	// upstream stage is still bounded by LookupTimeout.
	fetchCtx := context.WithoutCancel(ctx)
	results := s.group.DoChan(key, func() (any, error) {
		summary, err := s.fetch(fetchCtx, destination, units)
		if err != nil {
			return Summary{}, err
		}
		entry := Entry{Summary: summary, StoredAt: s.now()}
		if err := s.store.Put(fetchCtx, key, entry, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("weather cache save failed", "key", key, "error", err)
		}
		return summary, nil
	})

	select {
	case <-ctx.Done():
		s.logger.Warn("weather lookup abandoned, using seasonal estimate", "destination", destination, "error", ctx.Err())
		return fallbackSummary(start, units)
	case res := <-results:
		if res.Err != nil {
			s.logger.Warn("weather lookup failed, using seasonal estimate",
				"destination", destination,
				"kind", apperrors.CodeOf(res.Err),
				"error", res.Err,
			)
			return fallbackSummary(start, units)
		}
		if res.Shared {
			s.logger.Debug("weather lookup coalesced", "key", key)
		}
		return res.Val.(Summary)
	}
}

func (s *Service) lookup(ctx context.Context, key string) (Entry, bool) {
	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("weather cache lookup failed", "key", key, "error", err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	if s.now().Sub(entry.StoredAt) >= s.cfg.CacheTTL {
		return Entry{}, false
	}
	return entry, true
}

func (s *Service) fetch(ctx context.Context, destination string, units Units) (Summary, error) {
	query := strings.TrimSpace(destination)
	if query == "" {
		return Summary{}, apperrors.Wrap(apperrors.CodeEmptyResult, "destination is empty", nil)
	}

	geoCtx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	matches, err := s.geocoder.Geocode(geoCtx, query)
	cancel()
	if err != nil {
		return Summary{}, classify(err, "geocode failed")
	}
	if len(matches) == 0 {
		return Summary{}, apperrors.Wrap(apperrors.CodeEmptyResult, fmt.Sprintf("no geocoding match for %q", query), nil)
	}
	loc := matches[0]

	fcCtx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	forecast, err := s.forecaster.Forecast(fcCtx, loc.Lat, loc.Lon, units)
	cancel()
	if err != nil {
		return Summary{}, classify(err, "forecast failed")
	}

	summary, err := summarize(forecast, units)
	if err != nil {
		return Summary{}, err
	}
	s.logger.Info("weather fetched", "destination", query, "lat", loc.Lat, "lon", loc.Lon, "icon", summary.Icon)
	return summary, nil
}

func summarize(forecast Forecast, units Units) (Summary, error) {
	days := forecast.Daily
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}

	conditions := forecast.CurrentConditions
	if len(conditions) == 0 && len(days) > 0 {
		conditions = days[0].Conditions
	}
	if forecast.CurrentTemp == nil && len(conditions) == 0 && len(days) == 0 {
		return Summary{}, apperrors.Wrap(apperrors.CodeEmptyResult, "forecast carried no data", nil)
	}

	summary := Summary{
		Icon:   defaultIcon,
		Units:  units,
		Source: SourceLive,
	}
	if forecast.CurrentTemp != nil {
		current := *forecast.CurrentTemp
		summary.Current = &current
	}
	if len(conditions) > 0 {
		summary.Icon = iconFor(conditions[0].Main)
		summary.Description = conditions[0].Description
	}
	if len(days) > 0 {
		low, high := days[0].Min, days[0].Max
		for _, day := range days[1:] {
			if day.Min < low {
				low = day.Min
			}
			if day.Max > high {
				high = day.Max
			}
		}
		summary.Min = &low
		summary.Max = &high
	}
	return summary, nil
}

func classify(err error, message string) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	// timeouts and cancellation are transport failures like any other
	return apperrors.Wrap(apperrors.CodeTransport, message, err)
}

func cacheKey(destination string, start time.Time, units Units) string {
	return fmt.Sprintf("%s|%d|%s", strings.ToLower(strings.TrimSpace(destination)), start.Unix(), units)
}
