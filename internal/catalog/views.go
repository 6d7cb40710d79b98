package catalog

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/geo"
)

// FilteredStores applies region, category and offer type filters (all must
// hold) and then, for a non-empty query, replaces the result with the search
// matches in relevance order. A nil searcher uses the fuzzy default.
func FilteredStores(s State, searcher StoreSearcher) []domain.Store {
	filtered := make([]domain.Store, 0, len(s.Stores))
	for _, store := range s.Stores {
		if s.Filters.Region != "" && store.Region != s.Filters.Region {
			continue
		}
		if s.Filters.Category != "" && store.Category != s.Filters.Category {
			continue
		}
		if s.Filters.OfferType != "" && !store.HasOfferType(s.Filters.OfferType) {
			continue
		}
		filtered = append(filtered, store)
	}

	if s.SearchQuery == "" {
		return filtered
	}
	if searcher == nil {
		searcher = defaultSearcher
	}
	return searcher.SearchStores(filtered, s.SearchQuery)
}

// StoreCount is the size of the filtered list, not of the dataset.
func StoreCount(s State, searcher StoreSearcher) int {
	return len(FilteredStores(s, searcher))
}

// ChannelOffers lists offers of stores without coordinates, optionally
// narrowed to the category filter and gated by the offer flags.
func ChannelOffers(s State) []domain.OfferView {
	offers := make([]domain.OfferView, 0)
	for _, store := range s.Stores {
		if store.IsGeoTagged() {
			continue
		}
		if s.Filters.Category != "" && store.Category != s.Filters.Category {
			continue
		}
		for _, offer := range store.Offers {
			if !s.Filters.AllowsOffer(offer) {
				continue
			}
			offers = append(offers, domain.OfferView{
				Offer: offer,
				Store: store.Snapshot(),
			})
		}
	}
	return offers
}

// NearbyPhysicalOffers lists gated offers of geo-tagged stores within
// geo.NearbyRadiusKm of the user, nearest first. Without a user location it
// is empty.
func NearbyPhysicalOffers(s State) []domain.OfferView {
	return nearby(s, true)
}

// NearbyOffers is NearbyPhysicalOffers without the employee/community gates.
func NearbyOffers(s State) []domain.OfferView {
	return nearby(s, false)
}

func nearby(s State, gated bool) []domain.OfferView {
	offers := make([]domain.OfferView, 0)
	if s.UserLocation == nil {
		return offers
	}

	for _, store := range s.Stores {
		if !store.IsGeoTagged() || len(store.Offers) == 0 {
			continue
		}
		distance := geo.CalculateDistance(s.UserLocation.Lat, s.UserLocation.Lng, *store.Lat, *store.Lng)
		if !geo.WithinNearbyRadius(distance) {
			continue
		}
		for _, offer := range store.Offers {
			if gated && !s.Filters.AllowsOffer(offer) {
				continue
			}
			d := distance
			offers = append(offers, domain.OfferView{
				Offer:    offer,
				Store:    store.Snapshot(),
				Distance: &d,
			})
		}
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return *offers[i].Distance < *offers[j].Distance
	})
	return offers
}

// AvailableRegions lists the distinct regions of the whole dataset.
func AvailableRegions(s State) []string {
	values := make([]string, 0, len(s.Stores))
	for _, store := range s.Stores {
		values = append(values, store.Region)
	}
	return sortedDistinct(values)
}

// AvailableCategories lists the distinct categories of the whole dataset.
func AvailableCategories(s State) []string {
	values := make([]string, 0, len(s.Stores))
	for _, store := range s.Stores {
		values = append(values, store.Category)
	}
	return sortedDistinct(values)
}

// AvailableOfferTypes lists the distinct offer types across all stores.
func AvailableOfferTypes(s State) []string {
	var values []string
	for _, store := range s.Stores {
		for _, offer := range store.Offers {
			values = append(values, offer.Type)
		}
	}
	return sortedDistinct(values)
}

// ChannelOfferCategories lists the non-blank categories of channel stores
// that have at least one offer.
func ChannelOfferCategories(s State) []string {
	var values []string
	for _, store := range s.Stores {
		if store.IsGeoTagged() || len(store.Offers) == 0 {
			continue
		}
		if strings.TrimSpace(store.Category) == "" {
			continue
		}
		values = append(values, store.Category)
	}
	return sortedDistinct(values)
}

// sortedDistinct de-duplicates and sorts by UTF-16 code units, which is the
// order the web client sorts facet lists in.
func sortedDistinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessUTF16(out[i], out[j])
	})
	return out
}

func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
