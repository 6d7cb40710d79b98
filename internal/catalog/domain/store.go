package domain

// Store represents one store record of a company dataset.
// Lat/Lng are nil when the record carries no coordinates.
type Store struct {
	ID           StoreID  `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Category     string   `json:"category"`
	Region       string   `json:"region"`
	OpeningHours string   `json:"openingHours"`
	Description  string   `json:"description,omitempty"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Offers       []Offer  `json:"offers,omitempty"`
}

// Offer is a promotion attached to a store.
type Offer struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Type                 string `json:"type"`
	IsEmployeeOffer      Flag   `json:"isEmployeeOffer"`
	CommunityRecommended Flag   `json:"communityRecommended"`
	Featured             Flag   `json:"featured"`
}

// StoreSnapshot is the subset of store fields embedded into an OfferView.
type StoreSnapshot struct {
	ID           StoreID  `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Category     string   `json:"category"`
	OpeningHours string   `json:"openingHours"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// OfferView is an offer together with its owning store. Distance is set only
// when the view was computed against a user location.
type OfferView struct {
	Offer
	Store    StoreSnapshot `json:"store"`
	Distance *float64      `json:"distance,omitempty"`
}

// IsGeoTagged reports whether both coordinates are present.
func (s Store) IsGeoTagged() bool {
	return s.Lat != nil && s.Lng != nil
}

// IsChannel reports whether the store is an online/anywhere store.
func (s Store) IsChannel() bool {
	return !s.IsGeoTagged()
}

// Snapshot copies the fields shown next to an offer.
func (s Store) Snapshot() StoreSnapshot {
	return StoreSnapshot{
		ID:           s.ID,
		Name:         s.Name,
		Address:      s.Address,
		Phone:        s.Phone,
		Category:     s.Category,
		OpeningHours: s.OpeningHours,
		Lat:          copyFloat(s.Lat),
		Lng:          copyFloat(s.Lng),
	}
}

// HasOfferType reports whether any offer of the store has the given type.
func (s Store) HasOfferType(offerType string) bool {
	for _, offer := range s.Offers {
		if offer.Type == offerType {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate a loaded dataset.
func (s Store) Clone() Store {
	out := s
	out.Lat = copyFloat(s.Lat)
	out.Lng = copyFloat(s.Lng)
	if s.Offers != nil {
		out.Offers = append([]Offer(nil), s.Offers...)
	}
	return out
}

// CloneStores deep-copies a dataset.
func CloneStores(stores []Store) []Store {
	if stores == nil {
		return nil
	}
	out := make([]Store, len(stores))
	for i, store := range stores {
		out[i] = store.Clone()
	}
	return out
}

// FloatPtr returns a pointer helper for coordinates.
func FloatPtr(v float64) *float64 {
	return &v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
