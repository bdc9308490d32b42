package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/thai-itinerary/internal/model"
)

// LocationRepo encapsulates all database queries related to locations.
type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

const locationColumns = "id, name, region, category, description, latitude, longitude"

// Create inserts a location and populates its generated ID.
func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	const q = `INSERT INTO locations (name, region, category, description, latitude, longitude)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, l.Name, string(l.Region), l.Category, l.Description, l.Latitude, l.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// GetByID returns ErrLocationNotFound when no row matches.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	q := "SELECT " + locationColumns + " FROM locations WHERE id = ?"
	l, err := scanLocation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	return l, err
}

// List returns locations ordered by id, optionally restricted to a region.
func (r *LocationRepo) List(ctx context.Context, region *model.Region, page Page) ([]model.Location, error) {
	q := "SELECT " + locationColumns + " FROM locations"
	args := []any{}
	if region != nil {
		q += " WHERE region = ?"
		args = append(args, string(*region))
	}
	limit, offset := page.args()
	q += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Location, 0, limit)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a location that nothing references.  ErrConflict is
// returned while hotels, activities or transfers still point at it.
func (r *LocationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE id = ?", id)
	if err != nil {
		if isStillReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLocationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(s rowScanner) (*model.Location, error) {
	var (
		l        model.Location
		region   string
		category sql.NullString
		desc     sql.NullString
		lat, lng sql.NullFloat64
	)
	if err := s.Scan(&l.ID, &l.Name, &region, &category, &desc, &lat, &lng); err != nil {
		return nil, err
	}
	l.Region = model.Region(region)
	if category.Valid {
		c := model.LocationCategory(category.String)
		l.Category = &c
	}
	l.Description = strPtr(desc)
	l.Latitude = floatPtr(lat)
	l.Longitude = floatPtr(lng)
	return &l, nil
}
