package model

// Hotel is a bookable property at a location.
//
// Fields:
//  Rating        – stars in [0,5].
//  PricePerNight – nightly price in THB, never negative.
//  Amenities     – free text, typically comma separated.
type Hotel struct {
    ID            uint64      `json:"id"`
    Name          string      `json:"name"`
    LocationID    uint64      `json:"location_id"`
    Rating        float64     `json:"rating"`
    PricePerNight float64     `json:"price_per_night"`
    Description   *string     `json:"description,omitempty"`
    Amenities     *string     `json:"amenities,omitempty"`
    Location      LocationRef `json:"location"`
}

// HotelRef is the hotel projection attached to an accommodation.
type HotelRef struct {
    ID           uint64  `json:"id"`
    Name         string  `json:"name"`
    Rating       float64 `json:"rating"`
    LocationName string  `json:"location_name"`
}
