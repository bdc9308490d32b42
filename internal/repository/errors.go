// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// Not-found sentinels, one per resource.  Handlers translate them into
// HTTP 404 responses.
var (
	ErrLocationNotFound  = errors.New("location not found")
	ErrHotelNotFound     = errors.New("hotel not found")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrItineraryNotFound = errors.New("itinerary not found")
	ErrUserNotFound      = errors.New("user not found")
)

// ErrConflict is returned when a write cannot be performed because other
// rows still depend on the target, such as deleting a location that a
// hotel points at.
var ErrConflict = errors.New("conflict")

// MissingReferenceError reports a foreign key that does not resolve to an
// existing row.  Field names the offending input field (hotel_id,
// activity_id, from_location_id, ...).  ID is zero when the database
// rejected the write without telling us which row was missing.
type MissingReferenceError struct {
	Field string
	ID    uint64
}

func (e *MissingReferenceError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s does not reference an existing row", e.Field)
	}
	return fmt.Sprintf("%s %d does not exist", e.Field, e.ID)
}

// MySQL server error numbers the repositories react to.
const (
	errDuplicateEntry   = 1062
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errRowIsReferenced2 = 1217
	errNoReferencedRow2 = 1216
)

// mysqlErrNumber extracts the server error number, or 0 when err did not
// come from the MySQL server.
func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlErrNumber(err) == errDuplicateEntry }

func isMissingParent(err error) bool {
	n := mysqlErrNumber(err)
	return n == errNoReferencedRow || n == errNoReferencedRow2
}

func isStillReferenced(err error) bool {
	n := mysqlErrNumber(err)
	return n == errRowIsReferenced || n == errRowIsReferenced2
}
