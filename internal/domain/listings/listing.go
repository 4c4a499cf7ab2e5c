package listings

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTitleRequired = errors.New("listings: title is required")
	ErrDailyRate     = errors.New("listings: daily rate must be non-negative")
	ErrOwnerRequired = errors.New("listings: owner id is required")
	ErrInvalidState  = errors.New("listings: invalid state transition")
	ErrNotOwner      = errors.New("listings: actor does not own this listing")
	// ErrListingNotFound is the not-found sentinel every store returns.
	ErrListingNotFound = errors.New("listings: not found")
)

type ListingID string
type OwnerID string

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

// Listing is the slice of the marketplace listing this engine needs: who owns
// it (authorizes policy and blackout mutation) and what a day of rental costs
// (the linear quote recorded on a booking).
type Listing struct {
	ID             ListingID
	Owner          OwnerID
	Title          string
	Description    string
	DailyRateCents int64
	State          ListingState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}

type CreateParams struct {
	ID             ListingID
	Owner          OwnerID
	Title          string
	Description    string
	DailyRateCents int64
	Now            time.Time
}

func NewListing(p CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(p.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, ErrTitleRequired
	}
	if p.DailyRateCents < 0 {
		return nil, ErrDailyRate
	}
	now := p.Now.UTC()
	return &Listing{
		ID:             p.ID,
		Owner:          p.Owner,
		Title:          strings.TrimSpace(p.Title),
		Description:    p.Description,
		DailyRateCents: p.DailyRateCents,
		State:          ListingDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	if l.State != ListingDraft && l.State != ListingSuspended {
		return ErrInvalidState
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) Suspend(now time.Time) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	return nil
}

// AuthorizeOwner gates mutations that only the listing owner may perform.
func (l *Listing) AuthorizeOwner(actor OwnerID) error {
	if l.Owner != actor {
		return ErrNotOwner
	}
	return nil
}
