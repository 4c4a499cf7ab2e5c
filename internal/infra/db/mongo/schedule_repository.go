package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "lendaround/internal/domain/availability"
	"lendaround/internal/domain/listings"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// ScheduleRepository persists availability schedules, one document per
// listing, with optimistic versioning: a save must match the version it
// loaded or it fails with ErrConcurrentUpdate.
type ScheduleRepository struct {
	col *mongo.Collection
}

func NewScheduleRepository(db *mongo.Database) *ScheduleRepository {
	return &ScheduleRepository{col: db.Collection("agg_schedule")}
}

func (r *ScheduleRepository) Schedule(ctx context.Context, id listings.ListingID) (*domainavailability.Schedule, error) {
	var doc scheduleDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainavailability.NewSchedule(id), nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ScheduleRepository) Save(ctx context.Context, s *domainavailability.Schedule) error {
	doc := newScheduleDocument(s)
	filter := bson.M{"_id": doc.ID, "version": s.Version}
	doc.Version = s.Version + 1
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
	s.Version = doc.Version
	return nil
}

type scheduleDocument struct {
	ID       string             `bson:"_id"`
	Open     bool               `bson:"open"`
	Weekdays []int              `bson:"weekdays"`
	Periods  []blackoutDocument `bson:"blackouts"`
	Version  int64              `bson:"version"`
}

type blackoutDocument struct {
	ID        string `bson:"id"`
	StartDate int64  `bson:"start_date"`
	EndDate   int64  `bson:"end_date"`
	Reason    string `bson:"reason,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func newScheduleDocument(s *domainavailability.Schedule) scheduleDocument {
	doc := scheduleDocument{
		ID:       string(s.ListingID),
		Open:     s.Policy.IsOpen(),
		Weekdays: []int{},
		Periods:  make([]blackoutDocument, 0, len(s.Blackouts)),
		Version:  s.Version,
	}
	for _, d := range s.Policy.Weekdays() {
		doc.Weekdays = append(doc.Weekdays, int(d))
	}
	for _, b := range s.Blackouts {
		doc.Periods = append(doc.Periods, blackoutDocument{
			ID:        string(b.ID),
			StartDate: b.StartDate.UnixMilli(),
			EndDate:   b.EndDate.UnixMilli(),
			Reason:    b.Reason,
			CreatedAt: b.CreatedAt.UnixMilli(),
		})
	}
	return doc
}

func (d scheduleDocument) toAggregate() *domainavailability.Schedule {
	s := domainavailability.NewSchedule(listings.ListingID(d.ID))
	if !d.Open {
		days := make([]time.Weekday, 0, len(d.Weekdays))
		for _, wd := range d.Weekdays {
			days = append(days, time.Weekday(wd))
		}
		s.Policy = domainavailability.RestrictedPolicy(days...)
	}
	for _, b := range d.Periods {
		s.Blackouts = append(s.Blackouts, domainavailability.BlackoutPeriod{
			ID:        domainavailability.BlackoutID(b.ID),
			ListingID: s.ListingID,
			StartDate: timestampToTime(b.StartDate),
			EndDate:   timestampToTime(b.EndDate),
			Reason:    b.Reason,
			CreatedAt: timestampToTime(b.CreatedAt),
		})
	}
	s.Version = d.Version
	return s
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
