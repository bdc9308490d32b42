package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/thai-itinerary/internal/model"
)

// ActivityRepo provides access to activities joined with their location.
type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

const activitySelect = `SELECT a.id, a.name, a.location_id, a.type, a.duration_hours, a.price, a.description,
	       l.id, l.name, l.region
	FROM activities a
	JOIN locations l ON l.id = a.location_id`

func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	const q = `INSERT INTO activities (name, location_id, type, duration_hours, price, description)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.LocationID, string(a.Type), a.DurationHours, a.Price, a.Description)
	if err != nil {
		if isMissingParent(err) {
			return &MissingReferenceError{Field: "location_id", ID: a.LocationID}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (*model.Activity, error) {
	a, err := scanActivity(r.db.QueryRowContext(ctx, activitySelect+" WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// List returns activities ordered by id, optionally restricted to the
// region of their location.
func (r *ActivityRepo) List(ctx context.Context, region *model.Region, page Page) ([]model.Activity, error) {
	q := activitySelect
	args := []any{}
	if region != nil {
		q += " WHERE l.region = ?"
		args = append(args, string(*region))
	}
	limit, offset := page.args()
	q += " ORDER BY a.id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Activity, 0, limit)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanActivity(s rowScanner) (*model.Activity, error) {
	var (
		a       model.Activity
		typ     string
		desc    sql.NullString
		region  string
	)
	if err := s.Scan(&a.ID, &a.Name, &a.LocationID, &typ, &a.DurationHours, &a.Price, &desc,
		&a.Location.ID, &a.Location.Name, &region); err != nil {
		return nil, err
	}
	a.Type = model.ActivityType(typ)
	a.Description = strPtr(desc)
	a.Location.Region = model.Region(region)
	return &a, nil
}
