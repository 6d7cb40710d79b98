package mongo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

// StoreRepository serves per-company store datasets from MongoDB. It
// implements source.Source.
type StoreRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

var _ source.Source = (*StoreRepository)(nil)

// NewStoreRepository creates a new Mongo-backed store repository.
func NewStoreRepository(db *mongo.Database, collectionName string) *StoreRepository {
	return &StoreRepository{collection: db.Collection(collectionName), now: time.Now}
}

// FetchStores returns the dataset of companyID in dataset order. A company
// without documents is reported as source.ErrCompanyNotFound.
func (r *StoreRepository) FetchStores(ctx context.Context, companyID string) ([]domain.Store, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, source.ErrCompanyNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"companyId": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find stores of %q: %w", companyID, err)
	}
	defer cursor.Close(ctx)

	docs := make([]StoreDocument, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode store of %q: %w", companyID, err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores of %q: %w", companyID, err)
	}
	if len(docs) == 0 {
		return nil, source.ErrCompanyNotFound
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Position < docs[j].Position
	})
	stores := make([]domain.Store, 0, len(docs))
	for _, doc := range docs {
		stores = append(stores, mapStoreDocument(doc))
	}
	return stores, nil
}

// Companies lists the company ids that have at least one store.
func (r *StoreRepository) Companies(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "companyId", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ReplaceCompany swaps the whole dataset of companyID for stores.
func (r *StoreRepository) ReplaceCompany(ctx context.Context, companyID string, stores []domain.Store) (int, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return 0, fmt.Errorf("replace company: empty company id")
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"companyId": companyID}); err != nil {
		return 0, fmt.Errorf("clear stores of %q: %w", companyID, err)
	}
	if len(stores) == 0 {
		return 0, nil
	}

	now := r.now().UTC()
	docs := make([]interface{}, 0, len(stores))
	for i, store := range stores {
		docs = append(docs, toStoreDocument(companyID, i, store, now))
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert stores of %q: %w", companyID, err)
	}
	return len(res.InsertedIDs), nil
}

// EnsureIndexes creates the index FetchStores relies on.
func (r *StoreRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "companyId", Value: 1}, {Key: "position", Value: 1}},
		Options: options.Index().SetName("idx_store_company_position"),
	})
	return err
}

func mapStoreDocument(doc StoreDocument) domain.Store {
	store := domain.Store{
		ID:           domain.StoreID(doc.StoreID),
		Name:         doc.Name,
		Address:      doc.Address,
		Phone:        doc.Phone,
		Category:     doc.Category,
		Region:       doc.Region,
		OpeningHours: doc.OpeningHours,
		Description:  doc.Description,
		Lat:          doc.Lat,
		Lng:          doc.Lng,
	}
	if len(doc.Offers) > 0 {
		store.Offers = make([]domain.Offer, 0, len(doc.Offers))
		for _, o := range doc.Offers {
			store.Offers = append(store.Offers, domain.Offer{
				Title:                o.Title,
				Description:          o.Description,
				Type:                 o.Type,
				IsEmployeeOffer:      domain.Flag(o.IsEmployeeOffer),
				CommunityRecommended: domain.Flag(o.CommunityRecommended),
				Featured:             domain.Flag(o.Featured),
			})
		}
	}
	return store
}

func toStoreDocument(companyID string, position int, store domain.Store, now time.Time) StoreDocument {
	doc := StoreDocument{
		CompanyID:    companyID,
		StoreID:      string(store.ID),
		Position:     position,
		Name:         store.Name,
		Address:      store.Address,
		Phone:        store.Phone,
		Category:     store.Category,
		Region:       store.Region,
		OpeningHours: store.OpeningHours,
		Description:  store.Description,
		Lat:          store.Lat,
		Lng:          store.Lng,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}
	for _, o := range store.Offers {
		doc.Offers = append(doc.Offers, OfferDocument{
			Title:                o.Title,
			Description:          o.Description,
			Type:                 o.Type,
			IsEmployeeOffer:      bool(o.IsEmployeeOffer),
			CommunityRecommended: bool(o.CommunityRecommended),
			Featured:             bool(o.Featured),
		})
	}
	return doc
}
