package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/thai-itinerary/internal/model"
)

// HotelRepo provides access to hotels joined with their location.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

const hotelSelect = `SELECT h.id, h.name, h.location_id, h.rating, h.price_per_night, h.description, h.amenities,
	       l.id, l.name, l.region
	FROM hotels h
	JOIN locations l ON l.id = h.location_id`

// Create inserts a hotel.  A location_id that does not exist is reported as
// a *MissingReferenceError.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	const q = `INSERT INTO hotels (name, location_id, rating, price_per_night, description, amenities)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.Name, h.LocationID, h.Rating, h.PricePerNight, h.Description, h.Amenities)
	if err != nil {
		if isMissingParent(err) {
			return &MissingReferenceError{Field: "location_id", ID: h.LocationID}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, hotelSelect+" WHERE h.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	return h, err
}

// List returns hotels ordered by id.  The region filter applies to the
// hotel's location.
func (r *HotelRepo) List(ctx context.Context, region *model.Region, page Page) ([]model.Hotel, error) {
	q := hotelSelect
	args := []any{}
	if region != nil {
		q += " WHERE l.region = ?"
		args = append(args, string(*region))
	}
	limit, offset := page.args()
	q += " ORDER BY h.id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Hotel, 0, limit)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanHotel(s rowScanner) (*model.Hotel, error) {
	var (
		h         model.Hotel
		desc, ame sql.NullString
		region    string
	)
	if err := s.Scan(&h.ID, &h.Name, &h.LocationID, &h.Rating, &h.PricePerNight, &desc, &ame,
		&h.Location.ID, &h.Location.Name, &region); err != nil {
		return nil, err
	}
	h.Description = strPtr(desc)
	h.Amenities = strPtr(ame)
	h.Location.Region = model.Region(region)
	return &h, nil
}
