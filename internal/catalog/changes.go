package catalog

// ChangeKind names the part of the state a mutation touched.
type ChangeKind int

const (
	ChangeStores ChangeKind = iota + 1
	ChangeLoading
	ChangeError
	ChangeSearch
	ChangeFilters
	ChangeLocation
	ChangePreferences
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeStores:
		return "stores"
	case ChangeLoading:
		return "loading"
	case ChangeError:
		return "error"
	case ChangeSearch:
		return "search"
	case ChangeFilters:
		return "filters"
	case ChangeLocation:
		return "location"
	case ChangePreferences:
		return "preferences"
	default:
		return "unknown"
	}
}

// Change tells subscribers that state changed. Read the new values with
// Container.Snapshot.
type Change struct {
	Kinds []ChangeKind
}

// Has reports whether the change touched kind.
func (c Change) Has(kind ChangeKind) bool {
	for _, k := range c.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// subscriberBuffer is how many undelivered changes a slow subscriber may
// accumulate before further changes are dropped for it.
const subscriberBuffer = 16
