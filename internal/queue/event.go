// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// ItineraryCreatedEvent is published after an itinerary and its children
// have been committed.  It carries counts rather than the full document so
// consumers can log or aggregate without querying the primary database.
type ItineraryCreatedEvent struct {
    ItineraryID        uint64 `json:"itinerary_id"`
    Name               string `json:"name"`
    Region             string `json:"region"`
    DurationNights     int    `json:"duration_nights"`
    IsRecommended      bool   `json:"is_recommended"`
    AccommodationCount int    `json:"accommodation_count"`
    TransferCount      int    `json:"transfer_count"`
    ActivityCount      int    `json:"activity_count"`
    CreatedBy          string `json:"created_by,omitempty"`
    CreatedAt          string `json:"created_at"`
}
