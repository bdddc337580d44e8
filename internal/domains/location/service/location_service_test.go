package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder-backend/internal/infrastructure/geocoding"
	"homefinder-backend/pkg/cache"
)

type countingGeocoder struct {
	calls int
	err   error
}

func (g *countingGeocoder) Reverse(_ context.Context, lat, lng float64) (*geocoding.Address, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &geocoding.Address{City: "Pune", Coordinates: &geocoding.Coordinates{Lat: lat, Lng: lng}}, nil
}

func (g *countingGeocoder) Forward(_ context.Context, query string) (*geocoding.Address, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &geocoding.Address{Full: query}, nil
}

func TestReverse_CachesResult(t *testing.T) {
	geo := &countingGeocoder{}
	svc := NewLocationService(geo, cache.NewMemoryCache())
	ctx := context.Background()

	first, err := svc.Reverse(ctx, 18.5204, 73.8567)
	require.NoError(t, err)
	second, err := svc.Reverse(ctx, 18.5204, 73.8567)
	require.NoError(t, err)

	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, first.City, second.City)
	assert.Equal(t, 73.8567, second.Coordinates.Lng)
}

func TestReverse_RejectsOutOfRange(t *testing.T) {
	geo := &countingGeocoder{}
	svc := NewLocationService(geo, nil)

	_, err := svc.Reverse(context.Background(), 91, 0)
	assert.ErrorIs(t, err, geocoding.ErrInvalidArgs)
	assert.Zero(t, geo.calls)
}

func TestForward_FailuresAreNotCached(t *testing.T) {
	geo := &countingGeocoder{err: geocoding.ErrUpstream}
	svc := NewLocationService(geo, cache.NewMemoryCache())
	ctx := context.Background()

	_, err := svc.Forward(ctx, "Baner, Pune")
	assert.ErrorIs(t, err, geocoding.ErrUpstream)

	geo.err = nil
	addr, err := svc.Forward(ctx, "  Baner, Pune ")
	require.NoError(t, err)
	assert.Equal(t, "Baner, Pune", addr.Full)
	assert.Equal(t, 2, geo.calls)

	_, err = svc.Forward(ctx, "   ")
	assert.ErrorIs(t, err, geocoding.ErrInvalidArgs)
}
