package domain

// UserPreferences captures what the user tends to look for.
type UserPreferences struct {
	FavoriteCategories []string `json:"favoriteCategories"`
	FavoriteOfferTypes []string `json:"favoriteOfferTypes"`
	FrequentRegions    []string `json:"frequentRegions"`
	BudgetRange        string   `json:"budgetRange"`
}

// PreferencesPatch is a shallow preferences update; nil fields are untouched.
// It is also the decoding target for persisted preferences, so fields missing
// from storage keep their current values.
type PreferencesPatch struct {
	FavoriteCategories *[]string `json:"favoriteCategories,omitempty"`
	FavoriteOfferTypes *[]string `json:"favoriteOfferTypes,omitempty"`
	FrequentRegions    *[]string `json:"frequentRegions,omitempty"`
	BudgetRange        *string   `json:"budgetRange,omitempty"`
}

// DefaultPreferences returns the empty preference set.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		FavoriteCategories: []string{},
		FavoriteOfferTypes: []string{},
		FrequentRegions:    []string{},
		BudgetRange:        "",
	}
}

// Merge returns p with the set fields of patch overriding it.
func (p UserPreferences) Merge(patch PreferencesPatch) UserPreferences {
	if patch.FavoriteCategories != nil {
		p.FavoriteCategories = cloneStrings(*patch.FavoriteCategories)
	}
	if patch.FavoriteOfferTypes != nil {
		p.FavoriteOfferTypes = cloneStrings(*patch.FavoriteOfferTypes)
	}
	if patch.FrequentRegions != nil {
		p.FrequentRegions = cloneStrings(*patch.FrequentRegions)
	}
	if patch.BudgetRange != nil {
		p.BudgetRange = *patch.BudgetRange
	}
	return p
}

// Clone deep-copies the preference lists.
func (p UserPreferences) Clone() UserPreferences {
	return UserPreferences{
		FavoriteCategories: cloneStrings(p.FavoriteCategories),
		FavoriteOfferTypes: cloneStrings(p.FavoriteOfferTypes),
		FrequentRegions:    cloneStrings(p.FrequentRegions),
		BudgetRange:        p.BudgetRange,
	}
}

// StringsPtr returns pointer helper for list patch fields.
func StringsPtr(v ...string) *[]string {
	if v == nil {
		v = []string{}
	}
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}
