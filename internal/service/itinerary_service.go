package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/thai-itinerary/internal/model"
	"github.com/iliyamo/thai-itinerary/internal/queue"
	"github.com/iliyamo/thai-itinerary/internal/repository"
)

// Paging bounds for list endpoints.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Supported range of the recommended lookup.
const (
	MinRecommendedNights = 2
	MaxRecommendedNights = 8
)

// ErrNoRecommendation is returned by ListRecommended when nothing matches.
var ErrNoRecommendation = errors.New("no recommended itinerary found")

// ItineraryStore is the persistence surface ItineraryService needs.
// *repository.ItineraryRepo satisfies it.
type ItineraryStore interface {
	Create(ctx context.Context, rec *repository.ItineraryRecord) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*model.ItineraryDetail, error)
	List(ctx context.Context, page repository.Page) ([]model.Itinerary, error)
	ListRecommended(ctx context.Context, nights int, region *model.Region) ([]model.ItineraryDetail, error)
	Delete(ctx context.Context, id uint64) error
}

// Publisher delivers domain events.  Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishItineraryCreated(ctx context.Context, ev queue.ItineraryCreatedEvent) error
}

type ItineraryService struct {
	store ItineraryStore
	pub   Publisher
	// publishTimeout bounds the background publish after a create.
	publishTimeout time.Duration
}

// NewItineraryService wires a store and an optional publisher (nil
// disables events).
func NewItineraryService(store ItineraryStore, pub Publisher) *ItineraryService {
	return &ItineraryService{store: store, pub: pub, publishTimeout: 5 * time.Second}
}

// Create validates in, writes the itinerary with all of its children
// atomically and returns it as Get would.  actor is the username of the
// caller, empty for anonymous requests.
func (s *ItineraryService) Create(ctx context.Context, in CreateItineraryInput, actor string) (*model.ItineraryDetail, error) {
	rec, err := in.toRecord()
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, asValidation(err)
	}
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishCreated(out, actor)
	return out, nil
}

// publishCreated fires the itinerary.created event without blocking the
// request.  Failures are only logged.
func (s *ItineraryService) publishCreated(d *model.ItineraryDetail, actor string) {
	if s.pub == nil {
		return
	}
	ev := queue.ItineraryCreatedEvent{
		ItineraryID:        d.ID,
		Name:               d.Name,
		Region:             string(d.Region),
		DurationNights:     d.DurationNights,
		IsRecommended:      d.IsRecommended,
		AccommodationCount: len(d.Accommodations),
		TransferCount:      len(d.Transfers),
		ActivityCount:      len(d.Activities),
		CreatedBy:          actor,
		CreatedAt:          d.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()
		if err := s.pub.PublishItineraryCreated(ctx, ev); err != nil {
			log.Printf("itinerary %d: publish itinerary.created failed: %v", ev.ItineraryID, err)
		}
	}()
}

// Get returns repository.ErrItineraryNotFound for unknown ids.
func (s *ItineraryService) Get(ctx context.Context, id uint64) (*model.ItineraryDetail, error) {
	return s.store.GetByID(ctx, id)
}

// List returns summaries; see ClampPage for how skip/limit are bounded.
func (s *ItineraryService) List(ctx context.Context, skip, limit int) ([]model.Itinerary, error) {
	page, err := ClampPage(skip, limit)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, page)
}

// ListRecommended returns the recommended itineraries of exactly nights
// nights, optionally restricted to a region given by name.  An empty
// match yields ErrNoRecommendation.
func (s *ItineraryService) ListRecommended(ctx context.Context, nights int, region string) ([]model.ItineraryDetail, error) {
	if nights < MinRecommendedNights || nights > MaxRecommendedNights {
		return nil, invalid("nights", "Duration must be between %d and %d nights", MinRecommendedNights, MaxRecommendedNights)
	}
	var regionPtr *model.Region
	if region != "" {
		r, ok := model.ParseRegion(region)
		if !ok {
			return nil, invalid("region", "region must be one of: %s", model.Names(model.Regions))
		}
		regionPtr = &r
	}
	out, err := s.store.ListRecommended(ctx, nights, regionPtr)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoRecommendation
	}
	return out, nil
}

func (s *ItineraryService) Delete(ctx context.Context, id uint64) error {
	return s.store.Delete(ctx, id)
}

// ClampPage validates skip and limit.  A missing (zero) limit means
// DefaultLimit and anything above MaxLimit is capped.
func ClampPage(skip, limit int) (repository.Page, error) {
	if skip < 0 {
		return repository.Page{}, invalid("skip", "skip must be 0 or greater")
	}
	if limit < 0 {
		return repository.Page{}, invalid("limit", "limit must be 0 or greater")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return repository.Page{Offset: skip, Limit: limit}, nil
}
