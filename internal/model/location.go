package model

// Location is a named place in one of the supported regions.  Hotels,
// activities and transfer endpoints all point at a location.
type Location struct {
    ID          uint64            `json:"id"`
    Name        string            `json:"name"`
    Region      Region            `json:"region"`
    Category    *LocationCategory `json:"category,omitempty"`
    Description *string           `json:"description,omitempty"`
    Latitude    *float64          `json:"latitude,omitempty"`
    Longitude   *float64          `json:"longitude,omitempty"`
}

// LocationRef is the display projection of a location embedded in other
// resources.
type LocationRef struct {
    ID     uint64 `json:"id"`
    Name   string `json:"name"`
    Region Region `json:"region"`
}
