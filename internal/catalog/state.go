// Package catalog holds a company's store dataset and derives the filtered,
// searched and distance-ranked views the offer screens display.
package catalog

import "github.com/sngm3741/offer-finder/api/internal/catalog/domain"

// PreferencesKey is the storage key of the persisted user preferences.
const PreferencesKey = "userPreferences"

// State is an immutable snapshot of the container. Views are pure functions
// of a State.
type State struct {
	Stores           []domain.Store
	CurrentCompanyID string
	SearchQuery      string
	Filters          domain.Filters
	UserLocation     *domain.Location
	Preferences      domain.UserPreferences
	Loading          bool
	Error            string
}

// InitialState is the state of a freshly constructed container.
func InitialState() State {
	return State{
		Stores:      []domain.Store{},
		Preferences: domain.DefaultPreferences(),
	}
}

// clone deep-copies everything reachable from the snapshot.
func (s State) clone() State {
	out := s
	out.Stores = domain.CloneStores(s.Stores)
	if out.Stores == nil {
		out.Stores = []domain.Store{}
	}
	if s.UserLocation != nil {
		loc := *s.UserLocation
		out.UserLocation = &loc
	}
	out.Preferences = s.Preferences.Clone()
	return out
}
