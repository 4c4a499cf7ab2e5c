package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "lendaround/internal/domain/booking"
	"lendaround/internal/domain/listings"
	domainrange "lendaround/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "status", Value: 1}, {Key: "check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainbooking.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

// occupyingStatuses mirrors booking.IsOccupying for query filters; the
// domain predicate stays the single source of truth.
func occupyingStatuses() []string {
	all := []domainbooking.Status{
		domainbooking.StatusPending,
		domainbooking.StatusConfirmed,
		domainbooking.StatusCancelled,
		domainbooking.StatusCompleted,
	}
	var out []string
	for _, s := range all {
		if domainbooking.IsOccupying(s) {
			out = append(out, string(s))
		}
	}
	return out
}

func (r *BookingRepository) OccupyingStays(ctx context.Context, listingID listings.ListingID) ([]domainbooking.Stay, error) {
	filter := bson.M{
		"listing_id": string(listingID),
		"status":     bson.M{"$in": occupyingStatuses()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var stays []domainbooking.Stay
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		stays = append(stays, domainbooking.Stay{
			BookingID: domainbooking.BookingID(doc.ID),
			Range:     domainrange.DateRange{CheckIn: timestampToTime(doc.CheckIn), CheckOut: timestampToTime(doc.CheckOut)},
		})
	}
	return stays, cur.Err()
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"renter_id": renterID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID         string `bson:"_id"`
	ListingID  string `bson:"listing_id"`
	RenterID   string `bson:"renter_id"`
	OwnerID    string `bson:"owner_id"`
	CheckIn    int64  `bson:"check_in"`
	CheckOut   int64  `bson:"check_out"`
	Status     string `bson:"status"`
	TotalCents int64  `bson:"total_price_cents"`
	CreatedAt  int64  `bson:"created_at"`
	UpdatedAt  int64  `bson:"updated_at"`
	Version    int64  `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		RenterID:   b.RenterID,
		OwnerID:    b.OwnerID,
		CheckIn:    b.Range.CheckIn.UnixMilli(),
		CheckOut:   b.Range.CheckOut.UnixMilli(),
		Status:     string(b.Status),
		TotalCents: b.TotalPriceCents,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		ListingID:       listings.ListingID(d.ListingID),
		RenterID:        d.RenterID,
		OwnerID:         d.OwnerID,
		Range:           domainrange.DateRange{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)},
		Status:          domainbooking.Status(d.Status),
		TotalPriceCents: d.TotalCents,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}
