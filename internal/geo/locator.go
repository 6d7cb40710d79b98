package geo

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnsupported is returned when no position provider is configured.
var ErrUnsupported = errors.New("geolocation is not supported")

// ErrorCode enumerates why a position request failed.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodePermissionDenied
	CodePositionUnavailable
	CodeTimeout
)

// Message returns the user-facing text for the code.
func (c ErrorCode) Message() string {
	switch c {
	case CodePermissionDenied:
		return "location access permission denied"
	case CodePositionUnavailable:
		return "location information is unavailable"
	case CodeTimeout:
		return "location request timed out"
	default:
		return "unable to get your location"
	}
}

func (c ErrorCode) String() string {
	switch c {
	case CodePermissionDenied:
		return "permission_denied"
	case CodePositionUnavailable:
		return "position_unavailable"
	case CodeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// PositionError is a failed position request.
type PositionError struct {
	Code ErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	return e.Code.Message()
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// Options mirror the hints a platform position API accepts.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultOptions is what the catalog asks for: high accuracy, a 10 second
// timeout and positions up to 5 minutes old.
var DefaultOptions = Options{
	EnableHighAccuracy: true,
	Timeout:            10 * time.Second,
	MaximumAge:         5 * time.Minute,
}

// Coords is a position fix.
type Coords struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Position is a timestamped fix.
type Position struct {
	Coords    Coords
	Timestamp time.Time
}

// Locator provides the current position. Implementations should report
// failures as *PositionError.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, opts Options) (Position, error)

// CurrentPosition implements Locator.
func (f LocatorFunc) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

// Acquire performs one position request bounded by opts.Timeout and maps
// every failure onto a *PositionError (or ErrUnsupported).
func Acquire(ctx context.Context, locator Locator, opts Options) (Position, error) {
	if locator == nil {
		return Position{}, ErrUnsupported
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := locator.CurrentPosition(ctx, opts)
		done <- result{pos: pos, err: err}
	}()

	select {
	case <-ctx.Done():
		return Position{}, classify(ctx.Err())
	case res := <-done:
		if res.err != nil {
			return Position{}, classify(res.err)
		}
		return res.pos, nil
	}
}

func classify(err error) error {
	var posErr *PositionError
	switch {
	case errors.As(err, &posErr):
		return posErr
	case errors.Is(err, ErrUnsupported):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &PositionError{Code: CodeTimeout, Err: err}
	default:
		return &PositionError{Code: CodeUnknown, Err: err}
	}
}

// StaticLocator always reports the same position, e.g. one from config.
type StaticLocator struct {
	Lat float64
	Lng float64
	Now func() time.Time
}

// CurrentPosition implements Locator.
func (s StaticLocator) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Position{
		Coords:    Coords{Latitude: s.Lat, Longitude: s.Lng},
		Timestamp: now(),
	}, nil
}

// CachedLocator reuses the last fix while it is younger than the requested
// MaximumAge.
type CachedLocator struct {
	Next Locator
	Now  func() time.Time

	mu   sync.Mutex
	last *Position
}

// NewCachedLocator wraps next.
func NewCachedLocator(next Locator) *CachedLocator {
	return &CachedLocator{Next: next, Now: time.Now}
}

// CurrentPosition implements Locator.
func (c *CachedLocator) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	now := c.now()

	c.mu.Lock()
	if c.last != nil && opts.MaximumAge > 0 && now.Sub(c.last.Timestamp) <= opts.MaximumAge {
		pos := *c.last
		c.mu.Unlock()
		return pos, nil
	}
	c.mu.Unlock()

	if c.Next == nil {
		return Position{}, ErrUnsupported
	}
	pos, err := c.Next.CurrentPosition(ctx, opts)
	if err != nil {
		return Position{}, err
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = now
	}

	c.mu.Lock()
	c.last = &pos
	c.mu.Unlock()
	return pos, nil
}

func (c *CachedLocator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
