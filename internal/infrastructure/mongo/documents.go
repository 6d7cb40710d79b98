package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreDocument は MongoDB 上での店舗スキーマ。1 ドキュメント = 1 店舗で、
// companyId ごとにデータセットを構成する。Position はデータセット内の並び順。
type StoreDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	CompanyID    string             `bson:"companyId"`
	StoreID      string             `bson:"storeId"`
	Position     int                `bson:"position"`
	Name         string             `bson:"name"`
	Address      string             `bson:"address,omitempty"`
	Phone        string             `bson:"phone,omitempty"`
	Category     string             `bson:"category,omitempty"`
	Region       string             `bson:"region,omitempty"`
	OpeningHours string             `bson:"openingHours,omitempty"`
	Description  string             `bson:"description,omitempty"`
	Lat          *float64           `bson:"lat,omitempty"`
	Lng          *float64           `bson:"lng,omitempty"`
	Offers       []OfferDocument    `bson:"offers,omitempty"`
	CreatedAt    *time.Time         `bson:"createdAt,omitempty"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty"`
}

// OfferDocument は店舗ドキュメントに埋め込まれる特典。
type OfferDocument struct {
	Title                string `bson:"title"`
	Description          string `bson:"description,omitempty"`
	Type                 string `bson:"type,omitempty"`
	IsEmployeeOffer      bool   `bson:"isEmployeeOffer,omitempty"`
	CommunityRecommended bool   `bson:"communityRecommended,omitempty"`
	Featured             bool   `bson:"featured,omitempty"`
}
