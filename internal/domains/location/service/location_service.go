package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/infrastructure/geocoding"
	"homefinder-backend/pkg/cache"
)

const lookupCacheTTL = 24 * time.Hour

type ServiceInterface interface {
	Reverse(ctx context.Context, lat, lng float64) (*geocoding.Address, error)
	Forward(ctx context.Context, address string) (*geocoding.Address, error)
}

type locationService struct {
	geocoder geocoding.Geocoder
	cache    cache.Cache
}

// NewLocationService caches successful lookups; cache may be nil.
func NewLocationService(geocoder geocoding.Geocoder, c cache.Cache) ServiceInterface {
	return &locationService{geocoder: geocoder, cache: c}
}

func (s *locationService) Reverse(ctx context.Context, lat, lng float64) (*geocoding.Address, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, geocoding.ErrInvalidArgs
	}

	// ~1m precision is plenty for an address lookup
	key := fmt.Sprintf("geo:rev:%.5f:%.5f", lat, lng)
	return s.cached(ctx, key, func() (*geocoding.Address, error) {
		return s.geocoder.Reverse(ctx, lat, lng)
	})
}

func (s *locationService) Forward(ctx context.Context, address string) (*geocoding.Address, error) {
	query := strings.TrimSpace(address)
	if query == "" {
		return nil, geocoding.ErrInvalidArgs
	}

	key := "geo:fwd:" + strings.ToLower(query)
	return s.cached(ctx, key, func() (*geocoding.Address, error) {
		return s.geocoder.Forward(ctx, query)
	})
}

func (s *locationService) cached(ctx context.Context, key string, lookup func() (*geocoding.Address, error)) (*geocoding.Address, error) {
	if s.cache != nil {
		var hit geocoding.Address
		if found, err := s.cache.Get(ctx, key, &hit); err == nil && found {
			return &hit, nil
		}
	}

	addr, err := lookup()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Geocoding lookup failed")
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, addr, lookupCacheTTL)
	}
	return addr, nil
}
