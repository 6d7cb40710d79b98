package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/geo"
	"github.com/sngm3741/offer-finder/api/internal/prefs"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

// Container owns one company's dataset plus the user's query, filters,
// location and preferences. It is safe for concurrent use; I/O never runs
// under the lock.
type Container struct {
	source   source.Source
	searcher StoreSearcher
	kv       prefs.KV
	locator  geo.Locator
	geoOpts  geo.Options
	logger   *zap.Logger

	mu          sync.RWMutex
	state       State
	generation  uint64
	subscribers map[int]chan Change
	nextSubID   int
	closed      bool
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSearcher replaces the fuzzy store search.
func WithSearcher(searcher StoreSearcher) Option {
	return func(c *Container) {
		if searcher != nil {
			c.searcher = searcher
		}
	}
}

// WithPreferenceStore sets where preferences are persisted.
func WithPreferenceStore(kv prefs.KV) Option {
	return func(c *Container) {
		if kv != nil {
			c.kv = kv
		}
	}
}

// WithLocator sets the position provider used by AcquireLocation. Fixes are
// reused for the container's lifetime while younger than MaximumAge.
func WithLocator(locator geo.Locator) Option {
	return func(c *Container) {
		switch l := locator.(type) {
		case nil:
			c.locator = nil
		case *geo.CachedLocator:
			c.locator = l
		default:
			c.locator = geo.NewCachedLocator(l)
		}
	}
}

// WithLocationOptions overrides geo.DefaultOptions.
func WithLocationOptions(opts geo.Options) Option {
	return func(c *Container) {
		c.geoOpts = opts
	}
}

// New creates a container reading datasets from src.
func New(src source.Source, opts ...Option) *Container {
	c := &Container{
		source:      src,
		searcher:    NewFuzzySearcher(),
		kv:          prefs.NewMemoryKV(),
		geoOpts:     geo.DefaultOptions,
		logger:      zap.NewNop(),
		state:       InitialState(),
		subscribers: make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// LoadStores replaces the dataset with the one of companyID. It is a no-op
// when that company is already loaded. When loads overlap, only the most
// recently started one may update the state; older ones return ErrSuperseded.
func (c *Container) LoadStores(ctx context.Context, companyID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if companyID == "" {
		c.state.Error = ErrMissingCompanyID.Error()
		c.publishLocked(ChangeError)
		c.mu.Unlock()
		return ErrMissingCompanyID
	}
	if c.state.CurrentCompanyID == companyID && len(c.state.Stores) > 0 {
		c.mu.Unlock()
		return nil
	}

	c.generation++
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.state.Stores = []domain.Store{}
	c.publishLocked(ChangeLoading, ChangeError, ChangeStores)
	c.mu.Unlock()

	logger := c.logger.With(
		zap.String("company_id", companyID),
		zap.String("load_id", uuid.NewString()),
		zap.Uint64("generation", gen))
	logger.Debug("loading stores")

	stores, err := c.fetch(ctx, companyID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.closed {
		logger.Info("discarding stale load result", zap.Uint64("current_generation", c.generation))
		return ErrSuperseded
	}

	c.state.Loading = false
	if err != nil {
		c.state.Error = err.Error()
		logger.Error("failed to load stores", zap.Error(err))
		c.publishLocked(ChangeLoading, ChangeError)
		return err
	}

	c.state.Stores = stores
	c.state.CurrentCompanyID = companyID
	logger.Info("stores loaded", zap.Int("stores", len(stores)))
	c.publishLocked(ChangeLoading, ChangeStores)
	return nil
}

func (c *Container) fetch(ctx context.Context, companyID string) ([]domain.Store, error) {
	if c.source == nil {
		return nil, errors.New("no data source configured")
	}
	stores, err := c.source.FetchStores(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []domain.Store{}
	}
	return domain.CloneStores(stores), nil
}

// SetSearchQuery sets the free-text query.
func (c *Container) SetSearchQuery(query string) {
	c.mutate(ChangeSearch, func(s *State) {
		s.SearchQuery = query
	})
}

// ClearSearch empties the query.
func (c *Container) ClearSearch() {
	c.SetSearchQuery("")
}

// SetFilters merges patch into the current filters.
func (c *Container) SetFilters(patch domain.FilterPatch) {
	c.mutate(ChangeFilters, func(s *State) {
		s.Filters = s.Filters.Merge(patch)
	})
}

// ClearFilters resets every filter.
func (c *Container) ClearFilters() {
	c.mutate(ChangeFilters, func(s *State) {
		s.Filters = domain.Filters{}
	})
}

// SetUserLocation sets the position distances are measured from.
func (c *Container) SetUserLocation(loc domain.Location) {
	c.mutate(ChangeLocation, func(s *State) {
		s.UserLocation = &loc
	})
}

// ClearUserLocation forgets the user position.
func (c *Container) ClearUserLocation() {
	c.mutate(ChangeLocation, func(s *State) {
		s.UserLocation = nil
	})
}

// AcquireLocation asks the locator for the current position. On success the
// position becomes the user location; on failure the state is untouched and
// the error is a *geo.PositionError or geo.ErrUnsupported.
func (c *Container) AcquireLocation(ctx context.Context) (domain.Location, error) {
	pos, err := geo.Acquire(ctx, c.locator, c.geoOpts)
	if err != nil {
		c.logger.Warn("location unavailable", zap.Error(err))
		return domain.Location{}, err
	}

	loc := domain.Location{Lat: pos.Coords.Latitude, Lng: pos.Coords.Longitude}
	c.SetUserLocation(loc)
	return loc, nil
}

// SetUserPreferences merges patch into the preferences and persists the
// result under PreferencesKey.
func (c *Container) SetUserPreferences(patch domain.PreferencesPatch) error {
	c.mu.Lock()
	c.state.Preferences = c.state.Preferences.Merge(patch)
	merged := c.state.Preferences.Clone()
	c.publishLocked(ChangePreferences)
	c.mu.Unlock()

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := c.kv.Set(PreferencesKey, string(data)); err != nil {
		return fmt.Errorf("persist preferences: %w", err)
	}
	return nil
}

// LoadUserPreferences merges previously persisted preferences into the
// current ones. Fields missing from storage keep their values. Malformed
// storage leaves the preferences untouched and returns ErrCorruptPreferences.
func (c *Container) LoadUserPreferences() error {
	raw, ok, err := c.kv.Get(PreferencesKey)
	if err != nil {
		return fmt.Errorf("read preferences: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}

	var patch domain.PreferencesPatch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		c.logger.Warn("ignoring malformed persisted preferences", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCorruptPreferences, err)
	}

	c.mutate(ChangePreferences, func(s *State) {
		s.Preferences = s.Preferences.Merge(patch)
	})
	return nil
}

// Subscribe returns a channel receiving a Change after every mutation, and
// a function that cancels the subscription. Delivery never blocks mutators;
// a subscriber that falls subscriberBuffer changes behind misses changes.
func (c *Container) Subscribe() (<-chan Change, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close ends every subscription. In-flight loads finish without touching
// the state.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
}

func (c *Container) mutate(kind ChangeKind, fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	c.publishLocked(kind)
}

func (c *Container) publishLocked(kinds ...ChangeKind) {
	if len(c.subscribers) == 0 {
		return
	}
	change := Change{Kinds: kinds}
	for id, ch := range c.subscribers {
		select {
		case ch <- change:
		default:
			c.logger.Debug("subscriber lagging, change dropped", zap.Int("subscriber", id))
		}
	}
}

// FilteredStores is FilteredStores of the current snapshot.
func (c *Container) FilteredStores() []domain.Store {
	return FilteredStores(c.Snapshot(), c.searcher)
}

// StoreCount is StoreCount of the current snapshot.
func (c *Container) StoreCount() int {
	return StoreCount(c.Snapshot(), c.searcher)
}

// ChannelOffers is ChannelOffers of the current snapshot.
func (c *Container) ChannelOffers() []domain.OfferView {
	return ChannelOffers(c.Snapshot())
}

// NearbyPhysicalOffers is NearbyPhysicalOffers of the current snapshot.
func (c *Container) NearbyPhysicalOffers() []domain.OfferView {
	return NearbyPhysicalOffers(c.Snapshot())
}

// NearbyOffers is NearbyOffers of the current snapshot.
func (c *Container) NearbyOffers() []domain.OfferView {
	return NearbyOffers(c.Snapshot())
}

// AvailableRegions is AvailableRegions of the current snapshot.
func (c *Container) AvailableRegions() []string {
	return AvailableRegions(c.Snapshot())
}

// AvailableCategories is AvailableCategories of the current snapshot.
func (c *Container) AvailableCategories() []string {
	return AvailableCategories(c.Snapshot())
}

// AvailableOfferTypes is AvailableOfferTypes of the current snapshot.
func (c *Container) AvailableOfferTypes() []string {
	return AvailableOfferTypes(c.Snapshot())
}

// ChannelOfferCategories is ChannelOfferCategories of the current snapshot.
func (c *Container) ChannelOfferCategories() []string {
	return ChannelOfferCategories(c.Snapshot())
}
