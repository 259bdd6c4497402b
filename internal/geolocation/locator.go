// Package geolocation resolves the device's current position. Positions are
// pushed by the client over the API; lookups wait briefly for a fresh report
// and fail soft to a campus default when none arrives.
package geolocation

import (
	"context"
	"sync"
	"time"

	"github.com/campusgo/campusnav/internal/models"
)

// WatchID identifies an active position watch.
type WatchID int

// Provider yields the current device position. Implementations fail soft:
// a denied or unavailable position resolves to nil (or the fallback), never
// an error the caller must branch on.
type Provider interface {
	GetCurrentLocation(ctx context.Context, useFallback bool) (*models.Coordinates, error)
	WatchLocation(fn func(models.Coordinates)) WatchID
	ClearWatch(id WatchID)
}

// DeviceLocator tracks positions reported by the client device. A bounded
// wait covers the gap between a navigation request and the next report.
type DeviceLocator struct {
	fallback models.Coordinates
	wait     time.Duration
	maxAge   time.Duration

	mu      sync.Mutex
	last    *models.Coordinates
	lastAt  time.Time
	waiters []chan models.Coordinates
	watches map[WatchID]func(models.Coordinates)
	nextID  WatchID
}

// NewDeviceLocator creates a locator. wait bounds how long a lookup blocks
// for a fresh report; maxAge bounds how stale a cached report may be.
func NewDeviceLocator(fallback models.Coordinates, wait, maxAge time.Duration) *DeviceLocator {
	return &DeviceLocator{
		fallback: fallback,
		wait:     wait,
		maxAge:   maxAge,
		watches:  make(map[WatchID]func(models.Coordinates)),
	}
}

// Report records a device position, wakes pending lookups, and notifies
// watches.
func (l *DeviceLocator) Report(c models.Coordinates) {
	l.mu.Lock()
	l.last = &c
	l.lastAt = time.Now()
	waiters := l.waiters
	l.waiters = nil
	watches := make([]func(models.Coordinates), 0, len(l.watches))
	for _, fn := range l.watches {
		watches = append(watches, fn)
	}
	l.mu.Unlock()

	for _, ch := range waiters {
		ch <- c
	}
	for _, fn := range watches {
		fn(c)
	}
}

// GetCurrentLocation returns the freshest known position, waiting up to the
// configured bound for a report. With useFallback it degrades to the campus
// default instead of failing; without it, an unknown position is (nil, nil).
func (l *DeviceLocator) GetCurrentLocation(ctx context.Context, useFallback bool) (*models.Coordinates, error) {
	l.mu.Lock()
	if l.last != nil && time.Since(l.lastAt) <= l.maxAge {
		c := *l.last
		l.mu.Unlock()
		return &c, nil
	}
	ch := make(chan models.Coordinates, 1)
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case c := <-ch:
		return &c, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	if useFallback {
		c := l.fallback
		return &c, nil
	}
	return nil, nil
}

// WatchLocation registers a callback for every reported position.
func (l *DeviceLocator) WatchLocation(fn func(models.Coordinates)) WatchID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.watches[id] = fn
	return id
}

// ClearWatch removes a watch. Unknown IDs are ignored.
func (l *DeviceLocator) ClearWatch(id WatchID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.watches, id)
}
