package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/thai-itinerary/internal/model"
)

// ItineraryRepo persists itineraries together with their three owned
// collections (accommodations, transfers, itinerary_activities).
type ItineraryRepo struct {
	db *sql.DB
}

// NewItineraryRepo returns a new ItineraryRepo bound to the given database.
func NewItineraryRepo(db *sql.DB) *ItineraryRepo { return &ItineraryRepo{db: db} }

// ItineraryRecord is the validated input of a composition write.  Enum
// values are already canonical and day numbers already range-checked.
type ItineraryRecord struct {
	Name           string
	DurationNights int
	Region         model.Region
	Description    *string
	IsRecommended  bool
	Accommodations []AccommodationRecord
	Transfers      []TransferRecord
	Activities     []ItineraryActivityRecord
}

type AccommodationRecord struct {
	HotelID      uint64
	DayNumber    int
	CheckInDate  *time.Time
	CheckOutDate *time.Time
}

type TransferRecord struct {
	DayNumber      int
	FromLocationID uint64
	ToLocationID   uint64
	Mode           model.TransferMode
	DurationHours  float64
	DepartureTime  *string // HH:MM:SS
}

type ItineraryActivityRecord struct {
	ActivityID uint64
	DayNumber  int
	StartTime  *string // HH:MM:SS
}

const itineraryColumns = "id, name, duration_nights, region, description, is_recommended, created_at"

// Create writes the itinerary and all of its children in one transaction
// and returns the new ID.  Every hotel, activity and location reference is
// resolved inside the transaction first; the first unresolved one aborts
// the write with a *MissingReferenceError and nothing is persisted.
func (r *ItineraryRepo) Create(ctx context.Context, rec *ItineraryRecord) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := resolveReferences(ctx, tx, rec); err != nil {
		return 0, err
	}

	const qInsert = `INSERT INTO itineraries (name, duration_nights, region, description, is_recommended)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qInsert, rec.Name, rec.DurationNights, string(rec.Region), rec.Description, rec.IsRecommended)
	if err != nil {
		return 0, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	id := uint64(lastID)

	if err := insertAccommodationsTx(ctx, tx, id, rec.Accommodations); err != nil {
		return 0, classifyChildErr(err)
	}
	if err := insertTransfersTx(ctx, tx, id, rec.Transfers); err != nil {
		return 0, classifyChildErr(err)
	}
	if err := insertActivitiesTx(ctx, tx, id, rec.Activities); err != nil {
		return 0, classifyChildErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

// classifyChildErr turns a foreign key failure that slipped past
// resolveReferences (a concurrent delete) into a MissingReferenceError.
func classifyChildErr(err error) error {
	if isMissingParent(err) {
		return &MissingReferenceError{Field: "reference"}
	}
	return err
}

func resolveReferences(ctx context.Context, q querier, rec *ItineraryRecord) error {
	hotelIDs := make([]uint64, 0, len(rec.Accommodations))
	for _, a := range rec.Accommodations {
		hotelIDs = append(hotelIDs, a.HotelID)
	}
	if missing, err := firstMissingID(ctx, q, "hotels", hotelIDs); err != nil {
		return err
	} else if missing != 0 {
		return &MissingReferenceError{Field: "hotel_id", ID: missing}
	}

	activityIDs := make([]uint64, 0, len(rec.Activities))
	for _, a := range rec.Activities {
		activityIDs = append(activityIDs, a.ActivityID)
	}
	if missing, err := firstMissingID(ctx, q, "activities", activityIDs); err != nil {
		return err
	} else if missing != 0 {
		return &MissingReferenceError{Field: "activity_id", ID: missing}
	}

	locationIDs := make([]uint64, 0, 2*len(rec.Transfers))
	for _, t := range rec.Transfers {
		locationIDs = append(locationIDs, t.FromLocationID, t.ToLocationID)
	}
	missing, err := firstMissingID(ctx, q, "locations", locationIDs)
	if err != nil {
		return err
	}
	if missing != 0 {
		field := "to_location_id"
		for _, t := range rec.Transfers {
			if t.FromLocationID == missing {
				field = "from_location_id"
				break
			}
			if t.ToLocationID == missing {
				break
			}
		}
		return &MissingReferenceError{Field: field, ID: missing}
	}
	return nil
}

// firstMissingID returns the first id (in input order) that has no row in
// table, or 0 when all of them exist.  table is always a package constant.
func firstMissingID(ctx context.Context, q querier, table string, ids []uint64) (uint64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	rows, err := q.QueryContext(ctx,
		"SELECT id FROM "+table+" WHERE id IN ("+placeholders(len(ids))+")", uint64Args(ids)...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	found := make(map[uint64]struct{}, len(ids))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return id, nil
		}
	}
	return 0, nil
}

// insertAccommodationsTx inserts all accommodations in a single statement.
// Passing an empty slice has no effect.
func insertAccommodationsTx(ctx context.Context, tx *sql.Tx, itineraryID uint64, items []AccommodationRecord) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO accommodations (itinerary_id, hotel_id, day_number, check_in_date, check_out_date) VALUES `
	args := make([]any, 0, len(items)*5)
	for i, a := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, itineraryID, a.HotelID, a.DayNumber, a.CheckInDate, a.CheckOutDate)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertTransfersTx(ctx context.Context, tx *sql.Tx, itineraryID uint64, items []TransferRecord) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO transfers (itinerary_id, day_number, from_location_id, to_location_id, transfer_type, duration_hours, departure_time) VALUES `
	args := make([]any, 0, len(items)*7)
	for i, t := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, itineraryID, t.DayNumber, t.FromLocationID, t.ToLocationID, string(t.Mode), t.DurationHours, t.DepartureTime)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertActivitiesTx(ctx context.Context, tx *sql.Tx, itineraryID uint64, items []ItineraryActivityRecord) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO itinerary_activities (itinerary_id, activity_id, day_number, start_time) VALUES `
	args := make([]any, 0, len(items)*4)
	for i, a := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, itineraryID, a.ActivityID, a.DayNumber, a.StartTime)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID returns the itinerary with all children attached, or
// ErrItineraryNotFound.
func (r *ItineraryRepo) GetByID(ctx context.Context, id uint64) (*model.ItineraryDetail, error) {
	it, err := scanItinerary(r.db.QueryRowContext(ctx, "SELECT "+itineraryColumns+" FROM itineraries WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItineraryNotFound
		}
		return nil, err
	}
	d := &model.ItineraryDetail{Itinerary: *it}
	if err := r.attachChildren(ctx, []*model.ItineraryDetail{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns itinerary summaries in insertion order.
func (r *ItineraryRepo) List(ctx context.Context, page Page) ([]model.Itinerary, error) {
	limit, offset := page.args()
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itineraryColumns+" FROM itineraries ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Itinerary, 0, limit)
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecommended returns every recommended itinerary of exactly nights
// nights, restricted to region when it is non-nil, with children attached.
func (r *ItineraryRepo) ListRecommended(ctx context.Context, nights int, region *model.Region) ([]model.ItineraryDetail, error) {
	q := "SELECT " + itineraryColumns + " FROM itineraries WHERE is_recommended = TRUE AND duration_nights = ?"
	args := []any{nights}
	if region != nil {
		q += " AND region = ?"
		args = append(args, string(*region))
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var details []*model.ItineraryDetail
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		details = append(details, &model.ItineraryDetail{Itinerary: *it})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := r.attachChildren(ctx, details); err != nil {
		return nil, err
	}
	out := make([]model.ItineraryDetail, 0, len(details))
	for _, d := range details {
		out = append(out, *d)
	}
	return out, nil
}

// Delete removes an itinerary; the foreign keys cascade to its children.
func (r *ItineraryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM itineraries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItineraryNotFound
	}
	return nil
}

// attachChildren loads the three child collections for all details with
// one query per collection.  Rows come back ordered by day number, so the
// appended slices are already sorted.
func (r *ItineraryRepo) attachChildren(ctx context.Context, details []*model.ItineraryDetail) error {
	if len(details) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.ItineraryDetail, len(details))
	ids := make([]uint64, 0, len(details))
	for _, d := range details {
		d.Accommodations = []model.Accommodation{}
		d.Transfers = []model.Transfer{}
		d.Activities = []model.ItineraryActivity{}
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}
	in := "(" + placeholders(len(ids)) + ")"
	args := uint64Args(ids)

	if err := r.loadAccommodations(ctx, in, args, byID); err != nil {
		return err
	}
	if err := r.loadTransfers(ctx, in, args, byID); err != nil {
		return err
	}
	return r.loadActivities(ctx, in, args, byID)
}

func (r *ItineraryRepo) loadAccommodations(ctx context.Context, in string, args []any, byID map[uint64]*model.ItineraryDetail) error {
	q := `SELECT a.id, a.itinerary_id, a.day_number, a.hotel_id, a.check_in_date, a.check_out_date,
	             h.name, h.rating, l.name
	      FROM accommodations a
	      JOIN hotels h ON h.id = a.hotel_id
	      JOIN locations l ON l.id = h.location_id
	      WHERE a.itinerary_id IN ` + in + `
	      ORDER BY a.itinerary_id, a.day_number, a.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a           model.Accommodation
			itineraryID uint64
			in, out     sql.NullTime
		)
		if err := rows.Scan(&a.ID, &itineraryID, &a.DayNumber, &a.HotelID, &in, &out,
			&a.Hotel.Name, &a.Hotel.Rating, &a.Hotel.LocationName); err != nil {
			return err
		}
		a.Hotel.ID = a.HotelID
		a.CheckInDate = datePtr(in)
		a.CheckOutDate = datePtr(out)
		if d, ok := byID[itineraryID]; ok {
			d.Accommodations = append(d.Accommodations, a)
		}
	}
	return rows.Err()
}

func (r *ItineraryRepo) loadTransfers(ctx context.Context, in string, args []any, byID map[uint64]*model.ItineraryDetail) error {
	q := `SELECT t.id, t.itinerary_id, t.day_number, t.transfer_type, t.duration_hours, t.departure_time,
	             f.id, f.name, f.region, o.id, o.name, o.region
	      FROM transfers t
	      JOIN locations f ON f.id = t.from_location_id
	      JOIN locations o ON o.id = t.to_location_id
	      WHERE t.itinerary_id IN ` + in + `
	      ORDER BY t.itinerary_id, t.day_number, t.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t                    model.Transfer
			itineraryID          uint64
			mode                 string
			departure            sql.NullString
			fromRegion, toRegion string
		)
		if err := rows.Scan(&t.ID, &itineraryID, &t.DayNumber, &mode, &t.DurationHours, &departure,
			&t.FromLocation.ID, &t.FromLocation.Name, &fromRegion,
			&t.ToLocation.ID, &t.ToLocation.Name, &toRegion); err != nil {
			return err
		}
		t.TransferType = model.TransferMode(mode)
		t.DepartureTime = strPtr(departure)
		t.FromLocation.Region = model.Region(fromRegion)
		t.ToLocation.Region = model.Region(toRegion)
		if d, ok := byID[itineraryID]; ok {
			d.Transfers = append(d.Transfers, t)
		}
	}
	return rows.Err()
}

func (r *ItineraryRepo) loadActivities(ctx context.Context, in string, args []any, byID map[uint64]*model.ItineraryDetail) error {
	q := `SELECT ia.id, ia.itinerary_id, ia.day_number, ia.start_time,
	             ac.id, ac.name, ac.type, ac.duration_hours, ac.description
	      FROM itinerary_activities ia
	      JOIN activities ac ON ac.id = ia.activity_id
	      WHERE ia.itinerary_id IN ` + in + `
	      ORDER BY ia.itinerary_id, ia.day_number, ia.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a           model.ItineraryActivity
			itineraryID uint64
			start       sql.NullString
			typ         string
			desc        sql.NullString
		)
		if err := rows.Scan(&a.ID, &itineraryID, &a.DayNumber, &start,
			&a.Activity.ID, &a.Activity.Name, &typ, &a.Activity.DurationHours, &desc); err != nil {
			return err
		}
		a.ActivityID = a.Activity.ID
		a.StartTime = strPtr(start)
		a.Activity.Type = model.ActivityType(typ)
		a.Activity.Description = strPtr(desc)
		if d, ok := byID[itineraryID]; ok {
			d.Activities = append(d.Activities, a)
		}
	}
	return rows.Err()
}

func scanItinerary(s rowScanner) (*model.Itinerary, error) {
	var (
		it     model.Itinerary
		region string
		desc   sql.NullString
	)
	if err := s.Scan(&it.ID, &it.Name, &it.DurationNights, &region, &desc, &it.IsRecommended, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Region = model.Region(region)
	it.Description = strPtr(desc)
	return &it, nil
}
