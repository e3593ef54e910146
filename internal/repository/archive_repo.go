package repository

import (
	"database/sql"
	"fmt"
	"log"

	"parkmate/internal/db"
)

// ArchiveRepository persists purged bookings to Postgres. It sits outside
// the in-memory core: nothing here runs during reserve/release/extend.
type ArchiveRepository struct {
	DB *sql.DB
}

func NewArchiveRepository(database *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{DB: database}
}

// ArchiveBookings inserts the purged bookings in one transaction so a
// partial archive is never committed.
func (r *ArchiveRepository) ArchiveBookings(bookings []db.ArchivedBooking) error {
	if len(bookings) == 0 {
		return nil
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO archived_bookings
		(id, code, holder_id, holder_name, holder_email, holder_phone, vehicle_type, vehicle_plate,
		 slot_id, start_time, end_time, price_cents, location, owner_name, final_status,
		 created_at, updated_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING`

	for _, b := range bookings {
		_, err := tx.Exec(query,
			b.ID,
			b.Code,
			b.HolderID,
			b.HolderName,
			b.HolderEmail,
			b.HolderPhone,
			b.Vehicle.Type,
			b.Vehicle.Plate,
			b.SlotID,
			b.Interval.Start,
			b.Interval.End,
			b.PriceCents,
			b.Location,
			b.OwnerName,
			string(b.FinalStatus),
			b.CreatedAt,
			b.UpdatedAt,
			b.ArchivedAt,
		)
		if err != nil {
			return fmt.Errorf("archiving booking %s: %w", b.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive transaction: %w", err)
	}
	log.Printf("Archived %d bookings", len(bookings))
	return nil
}

// ListArchived returns archived bookings, newest first, for the admin view.
func (r *ArchiveRepository) ListArchived(limit int) ([]db.ArchivedBooking, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, code, holder_id, holder_name, holder_email, holder_phone, vehicle_type, vehicle_plate,
		       slot_id, start_time, end_time, price_cents, location, owner_name, final_status,
		       created_at, updated_at, archived_at
		FROM archived_bookings
		ORDER BY archived_at DESC
		LIMIT $1`

	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying archived bookings: %w", err)
	}
	defer rows.Close()

	var out []db.ArchivedBooking
	for rows.Next() {
		var b db.ArchivedBooking
		var status string
		err := rows.Scan(
			&b.ID, &b.Code, &b.HolderID, &b.HolderName, &b.HolderEmail, &b.HolderPhone,
			&b.Vehicle.Type, &b.Vehicle.Plate,
			&b.SlotID, &b.Interval.Start, &b.Interval.End, &b.PriceCents,
			&b.Location, &b.OwnerName, &status,
			&b.CreatedAt, &b.UpdatedAt, &b.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning archived booking: %w", err)
		}
		b.FinalStatus = db.Status(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archived bookings: %w", err)
	}
	return out, nil
}
