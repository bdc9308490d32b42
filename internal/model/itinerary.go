package model

import "time"

// Itinerary is the summary row of a travel plan.  List endpoints return
// it without child collections.
type Itinerary struct {
    ID             uint64    `json:"id"`
    Name           string    `json:"name"`
    DurationNights int       `json:"duration_nights"`
    Region         Region    `json:"region"`
    Description    *string   `json:"description,omitempty"`
    IsRecommended  bool      `json:"is_recommended"`
    CreatedAt      time.Time `json:"created_at"`
}

// ItineraryDetail is an itinerary with its three owned collections, each
// ordered by day number.
type ItineraryDetail struct {
    Itinerary
    Accommodations []Accommodation     `json:"accommodations"`
    Transfers      []Transfer          `json:"transfers"`
    Activities     []ItineraryActivity `json:"itinerary_activities"`
}

// Accommodation is a night spent at a hotel.  Dates are YYYY-MM-DD.
type Accommodation struct {
    ID           uint64   `json:"id"`
    DayNumber    int      `json:"day_number"`
    HotelID      uint64   `json:"hotel_id"`
    CheckInDate  *string  `json:"check_in_date,omitempty"`
    CheckOutDate *string  `json:"check_out_date,omitempty"`
    Hotel        HotelRef `json:"hotel"`
}

// Transfer moves travellers between two locations on a given day.
type Transfer struct {
    ID            uint64       `json:"id"`
    DayNumber     int          `json:"day_number"`
    FromLocation  LocationRef  `json:"from_location"`
    ToLocation    LocationRef  `json:"to_location"`
    TransferType  TransferMode `json:"transfer_type"`
    DurationHours float64      `json:"duration_hours"`
    DepartureTime *string      `json:"departure_time,omitempty"`
}

// ItineraryActivity schedules an activity on a day, optionally at a time
// of day (HH:MM:SS).
type ItineraryActivity struct {
    ID         uint64      `json:"id"`
    DayNumber  int         `json:"day_number"`
    ActivityID uint64      `json:"activity_id"`
    StartTime  *string     `json:"start_time,omitempty"`
    Activity   ActivityRef `json:"activity"`
}
