package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/thai-itinerary/internal/model"
	"github.com/iliyamo/thai-itinerary/internal/repository"
)

// CreateItineraryInput is the request body of POST /itineraries/.
type CreateItineraryInput struct {
	Name           string                   `json:"name"`
	DurationNights int                      `json:"duration_nights"`
	Region         string                   `json:"region"`
	Description    *string                  `json:"description"`
	IsRecommended  bool                     `json:"is_recommended"`
	Accommodations []AccommodationInput     `json:"accommodations"`
	Transfers      []TransferInput          `json:"transfers"`
	Activities     []ItineraryActivityInput `json:"itinerary_activities"`
}

type AccommodationInput struct {
	HotelID      uint64  `json:"hotel_id"`
	DayNumber    int     `json:"day_number"`
	CheckInDate  *string `json:"check_in_date"`
	CheckOutDate *string `json:"check_out_date"`
}

type TransferInput struct {
	DayNumber      int     `json:"day_number"`
	FromLocationID uint64  `json:"from_location_id"`
	ToLocationID   uint64  `json:"to_location_id"`
	TransferType   string  `json:"transfer_type"`
	DurationHours  float64 `json:"duration_hours"`
	DepartureTime  *string `json:"departure_time"`
}

type ItineraryActivityInput struct {
	ActivityID uint64  `json:"activity_id"`
	DayNumber  int     `json:"day_number"`
	StartTime  *string `json:"start_time"`
}

// Column widths of the schema, in characters (utf8mb4).
const (
	maxItineraryNameLen = 150
	maxHotelNameLen     = 150
	maxActivityNameLen  = 150
	maxLocationNameLen  = 100

	// maxTextBytes is the capacity of a TEXT column.
	maxTextBytes = 65535

	// MaxNights also bounds every day_number.
	MaxNights = 365
)

// toRecord validates in and returns the canonical record the repository
// writes.  The first violation found is returned.
func (in CreateItineraryInput) toRecord() (*repository.ItineraryRecord, error) {
	name, err := requiredName("name", in.Name, maxItineraryNameLen)
	if err != nil {
		return nil, err
	}
	if in.DurationNights < 1 {
		return nil, invalid("duration_nights", "duration_nights must be at least 1")
	}
	if in.DurationNights > MaxNights {
		return nil, invalid("duration_nights", "duration_nights must be at most %d", MaxNights)
	}
	region, ok := model.ParseRegion(in.Region)
	if !ok {
		return nil, invalid("region", "region must be one of: %s", model.Names(model.Regions))
	}

	desc, err := optionalText("description", in.Description)
	if err != nil {
		return nil, err
	}

	rec := &repository.ItineraryRecord{
		Name:           name,
		DurationNights: in.DurationNights,
		Region:         region,
		Description:    desc,
		IsRecommended:  in.IsRecommended,
	}

	for i, a := range in.Accommodations {
		field := fmt.Sprintf("accommodations[%d]", i)
		if err := checkDay(field, a.DayNumber, in.DurationNights); err != nil {
			return nil, err
		}
		if a.HotelID == 0 {
			return nil, invalid(field+".hotel_id", "hotel_id is required")
		}
		checkIn, err := parseDate(field+".check_in_date", a.CheckInDate)
		if err != nil {
			return nil, err
		}
		checkOut, err := parseDate(field+".check_out_date", a.CheckOutDate)
		if err != nil {
			return nil, err
		}
		if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
			return nil, invalid(field+".check_out_date", "check_out_date must not be before check_in_date")
		}
		rec.Accommodations = append(rec.Accommodations, repository.AccommodationRecord{
			HotelID: a.HotelID, DayNumber: a.DayNumber, CheckInDate: checkIn, CheckOutDate: checkOut,
		})
	}

	for i, t := range in.Transfers {
		field := fmt.Sprintf("transfers[%d]", i)
		if err := checkDay(field, t.DayNumber, in.DurationNights); err != nil {
			return nil, err
		}
		if t.FromLocationID == 0 {
			return nil, invalid(field+".from_location_id", "from_location_id is required")
		}
		if t.ToLocationID == 0 {
			return nil, invalid(field+".to_location_id", "to_location_id is required")
		}
		mode, ok := model.ParseTransferMode(t.TransferType)
		if !ok {
			return nil, invalid(field+".transfer_type", "transfer_type must be one of: %s", model.Names(model.TransferModes))
		}
		if t.DurationHours <= 0 {
			return nil, invalid(field+".duration_hours", "duration_hours must be greater than 0")
		}
		dep, err := parseClock(field+".departure_time", t.DepartureTime)
		if err != nil {
			return nil, err
		}
		rec.Transfers = append(rec.Transfers, repository.TransferRecord{
			DayNumber: t.DayNumber, FromLocationID: t.FromLocationID, ToLocationID: t.ToLocationID,
			Mode: mode, DurationHours: t.DurationHours, DepartureTime: dep,
		})
	}

	for i, a := range in.Activities {
		field := fmt.Sprintf("itinerary_activities[%d]", i)
		if err := checkDay(field, a.DayNumber, in.DurationNights); err != nil {
			return nil, err
		}
		if a.ActivityID == 0 {
			return nil, invalid(field+".activity_id", "activity_id is required")
		}
		start, err := parseClock(field+".start_time", a.StartTime)
		if err != nil {
			return nil, err
		}
		rec.Activities = append(rec.Activities, repository.ItineraryActivityRecord{
			ActivityID: a.ActivityID, DayNumber: a.DayNumber, StartTime: start,
		})
	}
	return rec, nil
}

func checkDay(field string, day, nights int) error {
	if day < 1 {
		return invalid(field+".day_number", "day_number must be greater than 0")
	}
	if day > nights {
		return invalid(field+".day_number", "day_number must not exceed duration_nights (%d)", nights)
	}
	return nil
}

// parseDate accepts YYYY-MM-DD.  nil and blank mean "not set".
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(*s))
	if err != nil {
		return nil, invalid(field, "expected a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// parseClock accepts HH:MM or HH:MM:SS and returns the HH:MM:SS form
// stored in TIME columns.
func parseClock(field string, s *string) (*string, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			out := t.Format(time.TimeOnly)
			return &out, nil
		}
	}
	return nil, invalid(field, "expected a time in HH:MM or HH:MM:SS format")
}

// requiredName trims s and checks it is present and fits a VARCHAR(limit)
// column.  Length is counted in characters, not bytes.
func requiredName(field, s string, limit int) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", invalid(field, "%s is required", field)
	}
	if utf8.RuneCountInString(v) > limit {
		return "", invalid(field, "%s must be at most %d characters", field, limit)
	}
	return v, nil
}

// optionalText is trimmedOrNil for TEXT columns, which are sized in bytes.
func optionalText(field string, s *string) (*string, error) {
	v := trimmedOrNil(s)
	if v != nil && len(*v) > maxTextBytes {
		return nil, invalid(field, "%s must be at most %d bytes", field, maxTextBytes)
	}
	return v, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
