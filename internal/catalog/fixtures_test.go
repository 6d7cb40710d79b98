package catalog

import "github.com/sngm3741/offer-finder/api/internal/catalog/domain"

// Distances are measured from home. Latitude steps of 0.0454 and 0.0455
// round to 5.0 and 5.1 km.
var home = domain.Location{Lat: 25.0, Lng: 121.5}

func sampleStores() []domain.Store {
	return []domain.Store{
		{
			ID: "1", Name: "Sunrise Coffee", Address: "1 Main St", Region: "north", Category: "cafe",
			Lat: domain.FloatPtr(25.0), Lng: domain.FloatPtr(121.5),
			Offers: []domain.Offer{
				{Title: "Latte discount", Type: "discount", IsEmployeeOffer: true},
			},
		},
		{
			ID: "2", Name: "Moonlight Books", Address: "2 Pier Rd", Region: "south", Category: "books",
			Lat: domain.FloatPtr(25.0454), Lng: domain.FloatPtr(121.5),
			Offers: []domain.Offer{
				{Title: "Novel coupon", Type: "coupon", CommunityRecommended: true},
			},
		},
		{
			ID: "3", Name: "Online Gadgets", Region: "", Category: "electronics",
			Offers: []domain.Offer{
				{Title: "Free shipping", Type: "coupon", Featured: true},
				{Title: "Staff perk", Type: "discount", IsEmployeeOffer: true},
			},
		},
		{
			ID: "4", Name: "Harbor Coffee", Address: "4 Dock Ln", Region: "south", Category: "cafe",
			Lat: domain.FloatPtr(25.0455), Lng: domain.FloatPtr(121.5),
			Offers: []domain.Offer{
				{Title: "Beans deal", Type: "discount"},
			},
		},
		{
			ID: "5", Name: "Eastside Books", Address: "5 Hill Ave", Region: "north", Category: "books",
			Lat: domain.FloatPtr(25.01), Lng: domain.FloatPtr(121.5),
		},
	}
}

func sampleState() State {
	s := InitialState()
	s.Stores = sampleStores()
	s.CurrentCompanyID = "acme"
	return s
}

func storeIDs(stores []domain.Store) []domain.StoreID {
	ids := make([]domain.StoreID, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.ID)
	}
	return ids
}

func offerTitles(offers []domain.OfferView) []string {
	titles := make([]string, 0, len(offers))
	for _, o := range offers {
		titles = append(titles, o.Title)
	}
	return titles
}
