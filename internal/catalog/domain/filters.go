package domain

// Filters holds the active list constraints. Empty strings mean no constraint.
type Filters struct {
	Region               string `json:"region"`
	Category             string `json:"category"`
	OfferType            string `json:"offerType"`
	EmployeeOnly         bool   `json:"employeeOnly"`
	CommunityRecommended bool   `json:"communityRecommended"`
}

// FilterPatch is a partial filter update. Nil fields keep their current value.
type FilterPatch struct {
	Region               *string `json:"region,omitempty"`
	Category             *string `json:"category,omitempty"`
	OfferType            *string `json:"offerType,omitempty"`
	EmployeeOnly         *bool   `json:"employeeOnly,omitempty"`
	CommunityRecommended *bool   `json:"communityRecommended,omitempty"`
}

// Merge returns f with every set field of patch applied.
func (f Filters) Merge(patch FilterPatch) Filters {
	if patch.Region != nil {
		f.Region = *patch.Region
	}
	if patch.Category != nil {
		f.Category = *patch.Category
	}
	if patch.OfferType != nil {
		f.OfferType = *patch.OfferType
	}
	if patch.EmployeeOnly != nil {
		f.EmployeeOnly = *patch.EmployeeOnly
	}
	if patch.CommunityRecommended != nil {
		f.CommunityRecommended = *patch.CommunityRecommended
	}
	return f
}

// AllowsOffer applies the employee/community gates to a single offer.
func (f Filters) AllowsOffer(offer Offer) bool {
	if f.EmployeeOnly && !bool(offer.IsEmployeeOffer) {
		return false
	}
	if f.CommunityRecommended && !bool(offer.CommunityRecommended || offer.Featured) {
		return false
	}
	return true
}

// StringPtr returns pointer helper for patch fields.
func StringPtr(v string) *string {
	return &v
}

// BoolPtr returns pointer helper for patch fields.
func BoolPtr(v bool) *bool {
	return &v
}
