package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

func TestFetchStores(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("maps documents in position order", func(mt *mtest.T) {
		repo := NewStoreRepository(mt.DB, "stores")
		ns := mt.DB.Name() + ".stores"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "companyId", Value: "acme"},
				{Key: "storeId", Value: "2"},
				{Key: "position", Value: 1},
				{Key: "name", Value: "Online Gadgets"},
				{Key: "category", Value: "electronics"},
				{Key: "offers", Value: bson.A{
					bson.D{{Key: "title", Value: "Free shipping"}, {Key: "type", Value: "coupon"}, {Key: "featured", Value: true}},
				}},
			},
			bson.D{
				{Key: "companyId", Value: "acme"},
				{Key: "storeId", Value: "1"},
				{Key: "position", Value: 0},
				{Key: "name", Value: "Sunrise Coffee"},
				{Key: "lat", Value: 25.03},
				{Key: "lng", Value: 121.56},
			},
		))

		stores, err := repo.FetchStores(context.Background(), "acme")
		require.NoError(mt, err)
		require.Len(mt, stores, 2)

		assert.Equal(mt, domain.StoreID("1"), stores[0].ID)
		assert.True(mt, stores[0].IsGeoTagged())
		assert.Equal(mt, 25.03, *stores[0].Lat)
		assert.Empty(mt, stores[0].Offers)

		assert.Equal(mt, domain.StoreID("2"), stores[1].ID)
		assert.True(mt, stores[1].IsChannel())
		require.Len(mt, stores[1].Offers, 1)
		assert.True(mt, bool(stores[1].Offers[0].Featured))
	})

	mt.Run("unknown company", func(mt *mtest.T) {
		repo := NewStoreRepository(mt.DB, "stores")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".stores", mtest.FirstBatch))

		_, err := repo.FetchStores(context.Background(), "ghost")
		require.ErrorIs(mt, err, source.ErrCompanyNotFound)
	})

	mt.Run("query failure", func(mt *mtest.T) {
		repo := NewStoreRepository(mt.DB, "stores")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		_, err := repo.FetchStores(context.Background(), "acme")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, source.ErrCompanyNotFound)
	})
}

func TestCompanies(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sorted distinct ids", func(mt *mtest.T) {
		repo := NewStoreRepository(mt.DB, "stores")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"zeta", "acme", ""}},
		))

		ids, err := repo.Companies(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"acme", "zeta"}, ids)
	})
}

func TestReplaceCompany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deletes then inserts", func(mt *mtest.T) {
		repo := NewStoreRepository(mt.DB, "stores")
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		n, err := repo.ReplaceCompany(context.Background(), "acme", []domain.Store{
			{ID: "1", Name: "a"},
			{ID: "2", Name: "b"},
		})
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("empty company id", func(mt *mtest.T) {
		repo := NewStoreRepository(mt.DB, "stores")
		_, err := repo.ReplaceCompany(context.Background(), " ", nil)
		require.Error(mt, err)
	})
}

func TestStoreDocumentMapping(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := domain.Store{
		ID:          "7",
		Name:        "Harbor Coffee",
		Region:      "south",
		Description: "roastery",
		Lat:         domain.FloatPtr(25.0455),
		Lng:         domain.FloatPtr(121.5),
		Offers: []domain.Offer{
			{Title: "Beans deal", Type: "discount", IsEmployeeOffer: true, CommunityRecommended: true},
		},
	}

	doc := toStoreDocument("acme", 4, store, now)
	assert.Equal(t, "acme", doc.CompanyID)
	assert.Equal(t, "7", doc.StoreID)
	assert.Equal(t, 4, doc.Position)
	assert.Equal(t, now, *doc.CreatedAt)

	assert.Equal(t, store, mapStoreDocument(doc))
}
