package database

import (
	"context"
	"database/sql"
	"fmt"
)

type seedLocation struct {
	key, name, region, category, description string
	lat, lng                                 float64
}

type seedHotel struct {
	key, location, name, description, amenities string
	rating, price                               float64
}

type seedActivity struct {
	key, location, name, typ, description string
	hours, price                          float64
}

var seedLocations = []seedLocation{
	{"hkt", "Phuket Airport", "Phuket", "airport", "Phuket International Airport", 8.1132, 98.3169},
	{"kbv", "Krabi Airport", "Krabi", "airport", "Krabi International Airport", 8.0992, 98.9862},
	{"patong", "Patong Beach", "Phuket", "city", "Busy west coast beach town", 7.8961, 98.2960},
	{"karon", "Karon Beach", "Phuket", "city", "Long quiet beach south of Patong", 7.8478, 98.2943},
	{"kata", "Kata Beach", "Phuket", "city", "Family friendly bay", 7.8206, 98.2980},
	{"oldtown", "Phuket Old Town", "Phuket", "attraction", "Sino-Portuguese shophouses and markets", 7.8842, 98.3923},
	{"phiphi", "Phi Phi Islands", "Phuket", "attraction", "Famous island group", 7.7407, 98.7784},
	{"krabitown", "Krabi Town", "Krabi", "city", "Riverside provincial capital", 8.0863, 98.9063},
	{"aonang", "Ao Nang Beach", "Krabi", "city", "Popular beach in Krabi", 8.0349, 98.8173},
	{"railay", "Railay Beach", "Krabi", "attraction", "Famous for rock climbing and beautiful beaches", 8.0055, 98.8370},
	{"lanta", "Koh Lanta", "Krabi", "attraction", "Laid back island with long sandy beaches", 7.6245, 99.0790},
}

var seedHotels = []seedHotel{
	{"marina", "karon", "Marina Phuket Resort", "Luxury beachfront resort", "pool, spa, beach access", 4.5, 180},
	{"patonghotel", "patong", "Patong Bay Hotel", "Walking distance to Bangla Road", "pool, breakfast", 3.8, 65},
	{"krabiresort", "aonang", "Krabi Resort", "Beachfront resort in Krabi", "pool, beach access, restaurant", 4.2, 120},
	{"railayvillage", "railay", "Railay Village Resort", "Bungalows between the cliffs", "pool, garden", 4.0, 140},
}

var seedActivities = []seedActivity{
	{"phiphitour", "phiphi", "Phi Phi Island Hopping", "sightseeing", "Full day island hopping tour", 8, 100},
	{"oldtownwalk", "oldtown", "Old Town Walking Tour", "cultural", "Guided walk through the old quarter", 3, 25},
	{"climbing", "railay", "Railay Beach Rock Climbing", "adventure", "Half day rock climbing experience", 4, 80},
	{"fourislands", "aonang", "Four Islands Tour", "sightseeing", "Full day tour of Krabi's famous islands", 6, 90},
	{"cooking", "krabitown", "Thai Cooking Class", "dining", "Market visit and four course class", 4, 45},
}

// recommendedPlan names the reference rows a generated recommended
// itinerary is built from.
type recommendedPlan struct {
	region, airport, hotel, activity string
}

var recommendedPlans = []recommendedPlan{
	{"Phuket", "hkt", "marina", "phiphitour"},
	{"Krabi", "kbv", "krabiresort", "fourislands"},
}

// Seed inserts demo reference data and one recommended itinerary per
// region for every supported length (2 to 8 nights).  It does nothing when
// the locations table already has rows, and writes everything in a single
// transaction.
func Seed(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM locations").Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	locs := map[string]int64{}
	for _, l := range seedLocations {
		id, err := insertID(ctx, tx,
			"INSERT INTO locations (name, region, category, description, latitude, longitude) VALUES (?,?,?,?,?,?)",
			l.name, l.region, l.category, l.description, l.lat, l.lng)
		if err != nil {
			return false, fmt.Errorf("seed location %s: %w", l.name, err)
		}
		locs[l.key] = id
	}

	hotels := map[string]int64{}
	hotelLoc := map[string]int64{}
	for _, h := range seedHotels {
		id, err := insertID(ctx, tx,
			"INSERT INTO hotels (name, location_id, rating, price_per_night, description, amenities) VALUES (?,?,?,?,?,?)",
			h.name, locs[h.location], h.rating, h.price, h.description, h.amenities)
		if err != nil {
			return false, fmt.Errorf("seed hotel %s: %w", h.name, err)
		}
		hotels[h.key] = id
		hotelLoc[h.key] = locs[h.location]
	}

	acts := map[string]int64{}
	for _, a := range seedActivities {
		id, err := insertID(ctx, tx,
			"INSERT INTO activities (name, location_id, type, duration_hours, price, description) VALUES (?,?,?,?,?,?)",
			a.name, locs[a.location], a.typ, a.hours, a.price, a.description)
		if err != nil {
			return false, fmt.Errorf("seed activity %s: %w", a.name, err)
		}
		acts[a.key] = id
	}

	for _, p := range recommendedPlans {
		for nights := 2; nights <= 8; nights++ {
			itID, err := insertID(ctx, tx,
				"INSERT INTO itineraries (name, duration_nights, region, description, is_recommended) VALUES (?,?,?,?,TRUE)",
				fmt.Sprintf("%s %d-Night Adventure", p.region, nights), nights, p.region,
				fmt.Sprintf("Recommended %d-night stay in %s", nights, p.region))
			if err != nil {
				return false, fmt.Errorf("seed itinerary %s/%d: %w", p.region, nights, err)
			}
			for day := 1; day <= nights; day++ {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO accommodations (itinerary_id, hotel_id, day_number) VALUES (?,?,?)",
					itID, hotels[p.hotel], day); err != nil {
					return false, err
				}
			}
			// Arrival on the first day, departure on the last night.
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transfers (itinerary_id, day_number, from_location_id, to_location_id, transfer_type, duration_hours)
				 VALUES (?,?,?,?,'car',1.0),(?,?,?,?,'car',1.0)`,
				itID, 1, locs[p.airport], hotelLoc[p.hotel],
				itID, nights, hotelLoc[p.hotel], locs[p.airport]); err != nil {
				return false, err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO itinerary_activities (itinerary_id, activity_id, day_number) VALUES (?,?,?)",
				itID, acts[p.activity], 2); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

func insertID(ctx context.Context, tx *sql.Tx, q string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
