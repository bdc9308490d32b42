package model

// Activity is something to do at a location: a tour, a class, a meal.
type Activity struct {
    ID            uint64       `json:"id"`
    Name          string       `json:"name"`
    LocationID    uint64       `json:"location_id"`
    Type          ActivityType `json:"type"`
    DurationHours float64      `json:"duration_hours"`
    Price         float64      `json:"price"`
    Description   *string      `json:"description,omitempty"`
    Location      LocationRef  `json:"location"`
}

// ActivityRef is the activity projection attached to an itinerary day.
type ActivityRef struct {
    ID            uint64       `json:"id"`
    Name          string       `json:"name"`
    Type          ActivityType `json:"type"`
    DurationHours float64      `json:"duration_hours"`
    Description   *string      `json:"description,omitempty"`
}
