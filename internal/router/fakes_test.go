package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/thai-itinerary/internal/model"
	"github.com/iliyamo/thai-itinerary/internal/repository"
	"github.com/iliyamo/thai-itinerary/internal/utils"
)

// world is an in-memory stand-in for every repository the server wires.
type world struct {
	mu          sync.Mutex
	seq         uint64
	locations   map[uint64]*model.Location
	hotels      map[uint64]*model.Hotel
	activities  map[uint64]*model.Activity
	itineraries map[uint64]*model.ItineraryDetail
	users       map[string]model.User
	revoked     map[string]time.Time
}

func newWorld() *world {
	return &world{
		locations:   map[uint64]*model.Location{},
		hotels:      map[uint64]*model.Hotel{},
		activities:  map[uint64]*model.Activity{},
		itineraries: map[uint64]*model.ItineraryDetail{},
		users:       map[string]model.User{},
		revoked:     map[string]time.Time{},
	}
}

func (w *world) next() uint64 { w.seq++; return w.seq }

func sortedIDs[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func window[T any](items []T, page repository.Page) []T {
	out := []T{}
	for i, it := range items {
		if i >= page.Offset && len(out) < page.Limit {
			out = append(out, it)
		}
	}
	return out
}

// locations

type locationStore struct{ *world }

func (s locationStore) Create(_ context.Context, l *model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.next()
	cp := *l
	s.locations[l.ID] = &cp
	return nil
}

func (s locationStore) GetByID(_ context.Context, id uint64) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok {
		return nil, repository.ErrLocationNotFound
	}
	cp := *l
	return &cp, nil
}

func (s locationStore) List(_ context.Context, region *model.Region, page repository.Page) ([]model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Location
	for _, id := range sortedIDs(s.locations) {
		if l := s.locations[id]; region == nil || l.Region == *region {
			all = append(all, *l)
		}
	}
	return window(all, page), nil
}

func (s locationStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[id]; !ok {
		return repository.ErrLocationNotFound
	}
	for _, h := range s.hotels {
		if h.LocationID == id {
			return repository.ErrConflict
		}
	}
	for _, a := range s.activities {
		if a.LocationID == id {
			return repository.ErrConflict
		}
	}
	delete(s.locations, id)
	return nil
}

func (w *world) locationRef(id uint64) model.LocationRef {
	l := w.locations[id]
	return model.LocationRef{ID: l.ID, Name: l.Name, Region: l.Region}
}

// hotels

type hotelStore struct{ *world }

func (s hotelStore) Create(_ context.Context, h *model.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[h.LocationID]; !ok {
		return &repository.MissingReferenceError{Field: "location_id", ID: h.LocationID}
	}
	h.ID = s.next()
	h.Location = s.locationRef(h.LocationID)
	cp := *h
	s.hotels[h.ID] = &cp
	return nil
}

func (s hotelStore) GetByID(_ context.Context, id uint64) (*model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return nil, repository.ErrHotelNotFound
	}
	cp := *h
	return &cp, nil
}

func (s hotelStore) List(_ context.Context, region *model.Region, page repository.Page) ([]model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Hotel
	for _, id := range sortedIDs(s.hotels) {
		if h := s.hotels[id]; region == nil || h.Location.Region == *region {
			all = append(all, *h)
		}
	}
	return window(all, page), nil
}

// activities

type activityStore struct{ *world }

func (s activityStore) Create(_ context.Context, a *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[a.LocationID]; !ok {
		return &repository.MissingReferenceError{Field: "location_id", ID: a.LocationID}
	}
	a.ID = s.next()
	a.Location = s.locationRef(a.LocationID)
	cp := *a
	s.activities[a.ID] = &cp
	return nil
}

func (s activityStore) GetByID(_ context.Context, id uint64) (*model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, repository.ErrActivityNotFound
	}
	cp := *a
	return &cp, nil
}

func (s activityStore) List(_ context.Context, region *model.Region, page repository.Page) ([]model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Activity
	for _, id := range sortedIDs(s.activities) {
		if a := s.activities[id]; region == nil || a.Location.Region == *region {
			all = append(all, *a)
		}
	}
	return window(all, page), nil
}

// itineraries

type itineraryStore struct{ *world }

func (s itineraryStore) Create(_ context.Context, rec *repository.ItineraryRecord) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range rec.Accommodations {
		if _, ok := s.hotels[a.HotelID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "hotel_id", ID: a.HotelID}
		}
	}
	for _, a := range rec.Activities {
		if _, ok := s.activities[a.ActivityID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "activity_id", ID: a.ActivityID}
		}
	}
	for _, t := range rec.Transfers {
		if _, ok := s.locations[t.FromLocationID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "from_location_id", ID: t.FromLocationID}
		}
		if _, ok := s.locations[t.ToLocationID]; !ok {
			return 0, &repository.MissingReferenceError{Field: "to_location_id", ID: t.ToLocationID}
		}
	}

	d := &model.ItineraryDetail{
		Itinerary: model.Itinerary{
			ID: s.next(), Name: rec.Name, DurationNights: rec.DurationNights, Region: rec.Region,
			Description: rec.Description, IsRecommended: rec.IsRecommended, CreatedAt: time.Now().UTC(),
		},
		Accommodations: []model.Accommodation{},
		Transfers:      []model.Transfer{},
		Activities:     []model.ItineraryActivity{},
	}
	for i, a := range rec.Accommodations {
		h := s.hotels[a.HotelID]
		d.Accommodations = append(d.Accommodations, model.Accommodation{
			ID: uint64(i + 1), DayNumber: a.DayNumber, HotelID: a.HotelID,
			Hotel: model.HotelRef{ID: h.ID, Name: h.Name, Rating: h.Rating, LocationName: h.Location.Name},
		})
	}
	for i, t := range rec.Transfers {
		d.Transfers = append(d.Transfers, model.Transfer{
			ID: uint64(i + 1), DayNumber: t.DayNumber, TransferType: t.Mode, DurationHours: t.DurationHours,
			DepartureTime: t.DepartureTime,
			FromLocation:  s.locationRef(t.FromLocationID),
			ToLocation:    s.locationRef(t.ToLocationID),
		})
	}
	for i, a := range rec.Activities {
		act := s.activities[a.ActivityID]
		d.Activities = append(d.Activities, model.ItineraryActivity{
			ID: uint64(i + 1), DayNumber: a.DayNumber, ActivityID: a.ActivityID, StartTime: a.StartTime,
			Activity: model.ActivityRef{ID: act.ID, Name: act.Name, Type: act.Type, DurationHours: act.DurationHours},
		})
	}
	s.itineraries[d.ID] = d
	return d.ID, nil
}

func (s itineraryStore) GetByID(_ context.Context, id uint64) (*model.ItineraryDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.itineraries[id]
	if !ok {
		return nil, repository.ErrItineraryNotFound
	}
	cp := *d
	return &cp, nil
}

func (s itineraryStore) List(_ context.Context, page repository.Page) ([]model.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Itinerary
	for _, id := range sortedIDs(s.itineraries) {
		all = append(all, s.itineraries[id].Itinerary)
	}
	return window(all, page), nil
}

func (s itineraryStore) ListRecommended(_ context.Context, nights int, region *model.Region) ([]model.ItineraryDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ItineraryDetail
	for _, id := range sortedIDs(s.itineraries) {
		d := s.itineraries[id]
		if d.IsRecommended && d.DurationNights == nights && (region == nil || d.Region == *region) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s itineraryStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.itineraries[id]; !ok {
		return repository.ErrItineraryNotFound
	}
	delete(s.itineraries, id)
	return nil
}

// users and tokens

type userStore struct{ *world }

func (s userStore) Create(_ context.Context, username, fullName, password string, role model.Role, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return 0, repository.ErrUsernameExists
	}
	u := model.User{ID: s.next(), Username: username, FullName: fullName, PasswordHash: hash, Role: role}
	s.users[username] = u
	return u.ID, nil
}

func (s userStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type tokenStore struct{ *world }

func (s tokenStore) Revoke(_ context.Context, jti, _ string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = exp
	return nil
}

func (s tokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }
