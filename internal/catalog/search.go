package catalog

import (
	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/search"
)

// SearchKeys are the store fields the text search looks at.
var SearchKeys = []string{
	"name",
	"address",
	"description",
	"category",
	"offers.title",
	"offers.description",
}

// SearchThreshold is a loose threshold: typos and partial words still match.
const SearchThreshold = 0.3

// StoreSearcher ranks stores against a free-text query and returns the
// matches, most relevant first.
type StoreSearcher interface {
	SearchStores(stores []domain.Store, query string) []domain.Store
}

// FuzzySearcher is the default StoreSearcher.
type FuzzySearcher struct {
	engine *search.Engine
}

// NewFuzzySearcher indexes SearchKeys with SearchThreshold.
func NewFuzzySearcher() *FuzzySearcher {
	opts := search.DefaultOptions
	opts.Threshold = SearchThreshold
	return &FuzzySearcher{engine: search.New(SearchKeys, opts)}
}

// SearchStores implements StoreSearcher.
func (f *FuzzySearcher) SearchStores(stores []domain.Store, query string) []domain.Store {
	docs := make([]search.Document, len(stores))
	for i, store := range stores {
		docs[i] = storeDocument(store)
	}

	results := f.engine.Search(docs, query)
	matched := make([]domain.Store, 0, len(results))
	for _, r := range results {
		matched = append(matched, stores[r.Index])
	}
	return matched
}

func storeDocument(store domain.Store) search.Document {
	doc := search.Document{
		"name":        {store.Name},
		"address":     {store.Address},
		"description": {store.Description},
		"category":    {store.Category},
	}
	for _, offer := range store.Offers {
		doc["offers.title"] = append(doc["offers.title"], offer.Title)
		doc["offers.description"] = append(doc["offers.description"], offer.Description)
	}
	return doc
}

var defaultSearcher StoreSearcher = NewFuzzySearcher()
