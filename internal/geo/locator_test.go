package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeMessages(t *testing.T) {
	assert.Equal(t, "location access permission denied", CodePermissionDenied.Message())
	assert.Equal(t, "location information is unavailable", CodePositionUnavailable.Message())
	assert.Equal(t, "location request timed out", CodeTimeout.Message())
	assert.Equal(t, "unable to get your location", CodeUnknown.Message())
	assert.Equal(t, "unable to get your location", ErrorCode(42).Message())
}

func TestAcquireWithoutLocator(t *testing.T) {
	_, err := Acquire(context.Background(), nil, DefaultOptions)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestAcquireStatic(t *testing.T) {
	pos, err := Acquire(context.Background(), StaticLocator{Lat: 25.03, Lng: 121.56}, DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, 25.03, pos.Coords.Latitude)
	assert.Equal(t, 121.56, pos.Coords.Longitude)
}

func TestAcquireKeepsPositionErrorCode(t *testing.T) {
	denied := LocatorFunc(func(context.Context, Options) (Position, error) {
		return Position{}, &PositionError{Code: CodePermissionDenied}
	})

	_, err := Acquire(context.Background(), denied, DefaultOptions)

	var posErr *PositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, CodePermissionDenied, posErr.Code)
	assert.Equal(t, "location access permission denied", err.Error())
}

func TestAcquireTimesOut(t *testing.T) {
	hang := LocatorFunc(func(ctx context.Context, _ Options) (Position, error) {
		<-ctx.Done()
		return Position{}, ctx.Err()
	})

	_, err := Acquire(context.Background(), hang, Options{Timeout: 20 * time.Millisecond})

	var posErr *PositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, CodeTimeout, posErr.Code)
}

func TestAcquireUnknownFailure(t *testing.T) {
	broken := LocatorFunc(func(context.Context, Options) (Position, error) {
		return Position{}, errors.New("gps chip on fire")
	})

	_, err := Acquire(context.Background(), broken, DefaultOptions)

	var posErr *PositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, CodeUnknown, posErr.Code)
	assert.Equal(t, "unable to get your location", err.Error())
}

func TestCachedLocatorHonoursMaximumAge(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	next := LocatorFunc(func(context.Context, Options) (Position, error) {
		calls++
		return Position{Coords: Coords{Latitude: float64(calls)}, Timestamp: now}, nil
	})
	cached := &CachedLocator{Next: next, Now: func() time.Time { return now }}
	opts := Options{MaximumAge: 5 * time.Minute}

	first, err := cached.CurrentPosition(context.Background(), opts)
	require.NoError(t, err)
	now = now.Add(4 * time.Minute)
	second, err := cached.CurrentPosition(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	third, err := cached.CurrentPosition(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2.0, third.Coords.Latitude)
	assert.Equal(t, 2, calls)
}

func TestCachedLocatorZeroMaximumAgeAlwaysRefreshes(t *testing.T) {
	calls := 0
	next := LocatorFunc(func(context.Context, Options) (Position, error) {
		calls++
		return Position{Timestamp: time.Now()}, nil
	})
	cached := NewCachedLocator(next)

	_, _ = cached.CurrentPosition(context.Background(), Options{})
	_, _ = cached.CurrentPosition(context.Background(), Options{})
	assert.Equal(t, 2, calls)
}
