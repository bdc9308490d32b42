package service

import (
	"context"
	"math"
	"strings"

	"github.com/iliyamo/thai-itinerary/internal/model"
	"github.com/iliyamo/thai-itinerary/internal/repository"
)

type LocationStore interface {
	Create(ctx context.Context, l *model.Location) error
	GetByID(ctx context.Context, id uint64) (*model.Location, error)
	List(ctx context.Context, region *model.Region, page repository.Page) ([]model.Location, error)
	Delete(ctx context.Context, id uint64) error
}

type HotelStore interface {
	Create(ctx context.Context, h *model.Hotel) error
	GetByID(ctx context.Context, id uint64) (*model.Hotel, error)
	List(ctx context.Context, region *model.Region, page repository.Page) ([]model.Hotel, error)
}

type ActivityStore interface {
	Create(ctx context.Context, a *model.Activity) error
	GetByID(ctx context.Context, id uint64) (*model.Activity, error)
	List(ctx context.Context, region *model.Region, page repository.Page) ([]model.Activity, error)
}

// CatalogService manages the shared reference data: locations, hotels and
// activities.
type CatalogService struct {
	Locations  LocationStore
	Hotels     HotelStore
	Activities ActivityStore
}

func NewCatalogService(l LocationStore, h HotelStore, a ActivityStore) *CatalogService {
	return &CatalogService{Locations: l, Hotels: h, Activities: a}
}

type LocationInput struct {
	Name        string   `json:"name"`
	Region      string   `json:"region"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Rating and PricePerNight are pointers so "missing" can be told apart
// from an explicit zero.
type HotelInput struct {
	Name          string   `json:"name"`
	LocationID    uint64   `json:"location_id"`
	Rating        *float64 `json:"rating"`
	PricePerNight *float64 `json:"price_per_night"`
	Description   *string  `json:"description"`
	Amenities     *string  `json:"amenities"`
}

type ActivityInput struct {
	Name          string  `json:"name"`
	LocationID    uint64  `json:"location_id"`
	Type          string  `json:"type"`
	DurationHours float64 `json:"duration_hours"`
	Price         float64 `json:"price"`
	Description   *string `json:"description"`
}

func (s *CatalogService) CreateLocation(ctx context.Context, in LocationInput) (*model.Location, error) {
	name, err := requiredName("name", in.Name, maxLocationNameLen)
	if err != nil {
		return nil, err
	}
	region, ok := model.ParseRegion(in.Region)
	if !ok {
		return nil, invalid("region", "region must be one of: %s", model.Names(model.Regions))
	}
	desc, err := optionalText("description", in.Description)
	if err != nil {
		return nil, err
	}
	l := &model.Location{
		Name:        name,
		Region:      region,
		Description: desc,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if c := trimmedOrNil(in.Category); c != nil {
		cat, ok := model.ParseLocationCategory(*c)
		if !ok {
			return nil, invalid("category", "category must be one of: %s", model.Names(model.LocationCategories))
		}
		l.Category = &cat
	}
	if l.Latitude != nil && (math.IsNaN(*l.Latitude) || *l.Latitude < -90 || *l.Latitude > 90) {
		return nil, invalid("latitude", "latitude must be between -90 and 90")
	}
	if l.Longitude != nil && (math.IsNaN(*l.Longitude) || *l.Longitude < -180 || *l.Longitude > 180) {
		return nil, invalid("longitude", "longitude must be between -180 and 180")
	}
	if err := s.Locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *CatalogService) GetLocation(ctx context.Context, id uint64) (*model.Location, error) {
	return s.Locations.GetByID(ctx, id)
}

func (s *CatalogService) ListLocations(ctx context.Context, region string, skip, limit int) ([]model.Location, error) {
	r, page, err := listArgs(region, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.Locations.List(ctx, r, page)
}

// DeleteLocation fails with repository.ErrConflict while anything still
// references the location.
func (s *CatalogService) DeleteLocation(ctx context.Context, id uint64) error {
	return s.Locations.Delete(ctx, id)
}

func (s *CatalogService) CreateHotel(ctx context.Context, in HotelInput) (*model.Hotel, error) {
	name, err := requiredName("name", in.Name, maxHotelNameLen)
	if err != nil {
		return nil, err
	}
	if in.LocationID == 0 {
		return nil, invalid("location_id", "location_id is required")
	}
	if in.Rating == nil {
		return nil, invalid("rating", "rating is required")
	}
	if math.IsNaN(*in.Rating) || *in.Rating < 0 || *in.Rating > 5 {
		return nil, invalid("rating", "rating must be between 0 and 5")
	}
	if in.PricePerNight == nil {
		return nil, invalid("price_per_night", "price_per_night is required")
	}
	if math.IsNaN(*in.PricePerNight) || *in.PricePerNight < 0 {
		return nil, invalid("price_per_night", "price_per_night must be 0 or greater")
	}
	desc, err := optionalText("description", in.Description)
	if err != nil {
		return nil, err
	}
	amenities, err := optionalText("amenities", in.Amenities)
	if err != nil {
		return nil, err
	}
	h := &model.Hotel{
		Name:          name,
		LocationID:    in.LocationID,
		Rating:        *in.Rating,
		PricePerNight: *in.PricePerNight,
		Description:   desc,
		Amenities:     amenities,
	}
	if err := s.Hotels.Create(ctx, h); err != nil {
		return nil, asValidation(err)
	}
	return s.Hotels.GetByID(ctx, h.ID)
}

func (s *CatalogService) GetHotel(ctx context.Context, id uint64) (*model.Hotel, error) {
	return s.Hotels.GetByID(ctx, id)
}

// ListHotels filters by the region of each hotel's location.
func (s *CatalogService) ListHotels(ctx context.Context, region string, skip, limit int) ([]model.Hotel, error) {
	r, page, err := listArgs(region, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.Hotels.List(ctx, r, page)
}

func (s *CatalogService) CreateActivity(ctx context.Context, in ActivityInput) (*model.Activity, error) {
	name, err := requiredName("name", in.Name, maxActivityNameLen)
	if err != nil {
		return nil, err
	}
	if in.LocationID == 0 {
		return nil, invalid("location_id", "location_id is required")
	}
	typ, ok := model.ParseActivityType(in.Type)
	if !ok {
		return nil, invalid("type", "type must be one of: %s", model.Names(model.ActivityTypes))
	}
	if math.IsNaN(in.DurationHours) || in.DurationHours <= 0 {
		return nil, invalid("duration_hours", "duration_hours must be greater than 0")
	}
	if math.IsNaN(in.Price) || in.Price < 0 {
		return nil, invalid("price", "price must be 0 or greater")
	}
	desc, err := optionalText("description", in.Description)
	if err != nil {
		return nil, err
	}
	a := &model.Activity{
		Name:          name,
		LocationID:    in.LocationID,
		Type:          typ,
		DurationHours: in.DurationHours,
		Price:         in.Price,
		Description:   desc,
	}
	if err := s.Activities.Create(ctx, a); err != nil {
		return nil, asValidation(err)
	}
	return s.Activities.GetByID(ctx, a.ID)
}

func (s *CatalogService) GetActivity(ctx context.Context, id uint64) (*model.Activity, error) {
	return s.Activities.GetByID(ctx, id)
}

func (s *CatalogService) ListActivities(ctx context.Context, region string, skip, limit int) ([]model.Activity, error) {
	r, page, err := listArgs(region, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.Activities.List(ctx, r, page)
}

func listArgs(region string, skip, limit int) (*model.Region, repository.Page, error) {
	page, err := ClampPage(skip, limit)
	if err != nil {
		return nil, page, err
	}
	if strings.TrimSpace(region) == "" {
		return nil, page, nil
	}
	r, ok := model.ParseRegion(region)
	if !ok {
		return nil, page, invalid("region", "region must be one of: %s", model.Names(model.Regions))
	}
	return &r, page, nil
}
