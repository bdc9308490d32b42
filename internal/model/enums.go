package model

import "strings"

// Region is the closed set of destinations the catalogue covers.
type Region string

const (
    RegionPhuket Region = "Phuket"
    RegionKrabi  Region = "Krabi"
)

// Regions lists every known region in display order.
var Regions = []Region{RegionPhuket, RegionKrabi}

// LocationCategory classifies a location.  It is optional on a Location.
type LocationCategory string

const (
    CategoryCity       LocationCategory = "city"
    CategoryAttraction LocationCategory = "attraction"
    CategoryHotel      LocationCategory = "hotel"
    CategoryAirport    LocationCategory = "airport"
)

var LocationCategories = []LocationCategory{CategoryCity, CategoryAttraction, CategoryHotel, CategoryAirport}

// ActivityType tags an activity.
type ActivityType string

const (
    ActivitySightseeing ActivityType = "sightseeing"
    ActivityAdventure   ActivityType = "adventure"
    ActivityRelaxation  ActivityType = "relaxation"
    ActivityCultural    ActivityType = "cultural"
    ActivityDining      ActivityType = "dining"
    ActivityShopping    ActivityType = "shopping"
    ActivityOther       ActivityType = "other"
)

var ActivityTypes = []ActivityType{
    ActivitySightseeing, ActivityAdventure, ActivityRelaxation, ActivityCultural,
    ActivityDining, ActivityShopping, ActivityOther,
}

// TransferMode is the means of transport for a transfer.
type TransferMode string

const (
    TransferCar     TransferMode = "car"
    TransferBus     TransferMode = "bus"
    TransferFerry   TransferMode = "ferry"
    TransferFlight  TransferMode = "flight"
    TransferTrain   TransferMode = "train"
    TransferWalking TransferMode = "walking"
    TransferVan     TransferMode = "van"
    TransferBoat    TransferMode = "boat"
    TransferOther   TransferMode = "other"
)

var TransferModes = []TransferMode{
    TransferCar, TransferBus, TransferFerry, TransferFlight, TransferTrain,
    TransferWalking, TransferVan, TransferBoat, TransferOther,
}

// Role is the authorisation tag stored on a user and carried in tokens.
type Role string

const (
    RoleUser  Role = "user"
    RoleAdmin Role = "admin"
)

// ParseRegion matches s case-insensitively against Regions and returns the
// canonical spelling.
func ParseRegion(s string) (Region, bool) { return parseEnum(s, Regions) }

func ParseLocationCategory(s string) (LocationCategory, bool) {
    return parseEnum(s, LocationCategories)
}

func ParseActivityType(s string) (ActivityType, bool) { return parseEnum(s, ActivityTypes) }

func ParseTransferMode(s string) (TransferMode, bool) { return parseEnum(s, TransferModes) }

func parseEnum[T ~string](s string, values []T) (T, bool) {
    s = strings.TrimSpace(s)
    for _, v := range values {
        if strings.EqualFold(s, string(v)) {
            return v, true
        }
    }
    var zero T
    return zero, false
}

// Names renders an enum set for error messages, e.g. "Phuket, Krabi".
func Names[T ~string](values []T) string {
    parts := make([]string, len(values))
    for i, v := range values {
        parts[i] = string(v)
    }
    return strings.Join(parts, ", ")
}
