package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "lendaround/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainlistings.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type listingDocument struct {
	ID             string `bson:"_id"`
	Owner          string `bson:"owner_id"`
	Title          string `bson:"title"`
	Description    string `bson:"description,omitempty"`
	DailyRateCents int64  `bson:"daily_rate_cents"`
	State          string `bson:"state"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:             string(l.ID),
		Owner:          string(l.Owner),
		Title:          l.Title,
		Description:    l.Description,
		DailyRateCents: l.DailyRateCents,
		State:          string(l.State),
		CreatedAt:      l.CreatedAt.UnixMilli(),
		UpdatedAt:      l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:             domainlistings.ListingID(d.ID),
		Owner:          domainlistings.OwnerID(d.Owner),
		Title:          d.Title,
		Description:    d.Description,
		DailyRateCents: d.DailyRateCents,
		State:          domainlistings.ListingState(d.State),
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
}
