package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/thai-itinerary/internal/model"
	"github.com/iliyamo/thai-itinerary/internal/queue"
	"github.com/iliyamo/thai-itinerary/internal/repository"
)

// memStore is an in-memory ItineraryStore.  Reference ids listed in
// hotels/activities/locations are the only ones that resolve.
type memStore struct {
	mu         sync.Mutex
	nextID     uint64
	rows       map[uint64]*model.ItineraryDetail
	hotels     map[uint64]string
	activities map[uint64]string
	locations  map[uint64]string
}

func newMemStore() *memStore {
	return &memStore{
		rows:       map[uint64]*model.ItineraryDetail{},
		hotels:     map[uint64]string{10: "Karon Beach Resort"},
		activities: map[uint64]string{20: "Big Buddha visit"},
		locations:  map[uint64]string{1: "Karon", 2: "Phuket Airport"},
	}
}

func (m *memStore) Create(_ context.Context, rec *repository.ItineraryRecord) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range rec.Accommodations {
		if _, ok := m.hotels[a.HotelID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "hotel_id", ID: a.HotelID}
		}
	}
	for _, a := range rec.Activities {
		if _, ok := m.activities[a.ActivityID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "activity_id", ID: a.ActivityID}
		}
	}
	for _, t := range rec.Transfers {
		if _, ok := m.locations[t.FromLocationID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "from_location_id", ID: t.FromLocationID}
		}
		if _, ok := m.locations[t.ToLocationID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "to_location_id", ID: t.ToLocationID}
		}
	}
	m.nextID++
	d := &model.ItineraryDetail{Itinerary: model.Itinerary{
		ID: m.nextID, Name: rec.Name, DurationNights: rec.DurationNights, Region: rec.Region,
		Description: rec.Description, IsRecommended: rec.IsRecommended, CreatedAt: time.Now().UTC(),
	}}
	d.Accommodations = []model.Accommodation{}
	d.Transfers = []model.Transfer{}
	d.Activities = []model.ItineraryActivity{}
	for i, a := range rec.Accommodations {
		d.Accommodations = append(d.Accommodations, model.Accommodation{
			ID: uint64(i + 1), DayNumber: a.DayNumber, HotelID: a.HotelID,
			Hotel: model.HotelRef{ID: a.HotelID, Name: m.hotels[a.HotelID]},
		})
	}
	for i, t := range rec.Transfers {
		d.Transfers = append(d.Transfers, model.Transfer{
			ID: uint64(i + 1), DayNumber: t.DayNumber, TransferType: t.Mode, DurationHours: t.DurationHours,
			FromLocation: model.LocationRef{ID: t.FromLocationID, Name: m.locations[t.FromLocationID]},
			ToLocation:   model.LocationRef{ID: t.ToLocationID, Name: m.locations[t.ToLocationID]},
		})
	}
	for i, a := range rec.Activities {
		d.Activities = append(d.Activities, model.ItineraryActivity{
			ID: uint64(i + 1), DayNumber: a.DayNumber, ActivityID: a.ActivityID, StartTime: a.StartTime,
			Activity: model.ActivityRef{ID: a.ActivityID, Name: m.activities[a.ActivityID]},
		})
	}
	sort.SliceStable(d.Accommodations, func(i, j int) bool { return d.Accommodations[i].DayNumber < d.Accommodations[j].DayNumber })
	m.rows[d.ID] = d
	return d.ID, nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.ItineraryDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrItineraryNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) ids() []uint64 {
	ids := make([]uint64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memStore) List(_ context.Context, page repository.Page) ([]model.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Itinerary{}
	for i, id := range m.ids() {
		if i < page.Offset || len(out) >= page.Limit {
			continue
		}
		out = append(out, m.rows[id].Itinerary)
	}
	return out, nil
}

func (m *memStore) ListRecommended(_ context.Context, nights int, region *model.Region) ([]model.ItineraryDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ItineraryDetail
	for _, id := range m.ids() {
		d := m.rows[id]
		if !d.IsRecommended || d.DurationNights != nights {
			continue
		}
		if region != nil && d.Region != *region {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrItineraryNotFound
	}
	delete(m.rows, id)
	return nil
}

type chanPublisher struct {
	events chan queue.ItineraryCreatedEvent
	err    error
}

func (p *chanPublisher) PublishItineraryCreated(_ context.Context, ev queue.ItineraryCreatedEvent) error {
	p.events <- ev
	return p.err
}
