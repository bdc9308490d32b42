package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements executed by Migrate, parents first.
// Child collections of an itinerary are removed by ON DELETE CASCADE;
// reference data is protected by RESTRICT so deleting an itinerary never
// touches locations, hotels or activities.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		full_name     VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti        CHAR(36)    NOT NULL PRIMARY KEY,
		username   VARCHAR(64) NOT NULL,
		expires_at DATETIME    NOT NULL,
		created_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_revoked_tokens_expires (expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS locations (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		region      ENUM('Phuket','Krabi') NOT NULL,
		category    ENUM('city','attraction','hotel','airport') NULL,
		description TEXT NULL,
		latitude    DOUBLE NULL,
		longitude   DOUBLE NULL,
		KEY idx_locations_region (region)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS hotels (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name            VARCHAR(150) NOT NULL,
		location_id     BIGINT UNSIGNED NOT NULL,
		rating          DOUBLE NOT NULL,
		price_per_night DOUBLE NOT NULL,
		description     TEXT NULL,
		amenities       TEXT NULL,
		CONSTRAINT fk_hotels_location FOREIGN KEY (location_id) REFERENCES locations (id) ON DELETE RESTRICT,
		CONSTRAINT chk_hotels_rating CHECK (rating >= 0 AND rating <= 5),
		CONSTRAINT chk_hotels_price CHECK (price_per_night >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS activities (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name           VARCHAR(150) NOT NULL,
		location_id    BIGINT UNSIGNED NOT NULL,
		type           ENUM('sightseeing','adventure','relaxation','cultural','dining','shopping','other') NOT NULL,
		duration_hours DOUBLE NOT NULL,
		price          DOUBLE NOT NULL DEFAULT 0,
		description    TEXT NULL,
		CONSTRAINT fk_activities_location FOREIGN KEY (location_id) REFERENCES locations (id) ON DELETE RESTRICT,
		CONSTRAINT chk_activities_duration CHECK (duration_hours > 0),
		CONSTRAINT chk_activities_price CHECK (price >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS itineraries (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name            VARCHAR(150) NOT NULL,
		duration_nights INT UNSIGNED NOT NULL,
		region          ENUM('Phuket','Krabi') NOT NULL,
		description     TEXT NULL,
		is_recommended  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_itineraries_recommended (is_recommended, duration_nights, region),
		CONSTRAINT chk_itineraries_nights CHECK (duration_nights >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS accommodations (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		itinerary_id   BIGINT UNSIGNED NOT NULL,
		hotel_id       BIGINT UNSIGNED NOT NULL,
		day_number     INT UNSIGNED NOT NULL,
		check_in_date  DATE NULL,
		check_out_date DATE NULL,
		KEY idx_accommodations_itinerary (itinerary_id, day_number),
		CONSTRAINT fk_accommodations_itinerary FOREIGN KEY (itinerary_id) REFERENCES itineraries (id) ON DELETE CASCADE,
		CONSTRAINT fk_accommodations_hotel FOREIGN KEY (hotel_id) REFERENCES hotels (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transfers (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		itinerary_id     BIGINT UNSIGNED NOT NULL,
		day_number       INT UNSIGNED NOT NULL,
		from_location_id BIGINT UNSIGNED NOT NULL,
		to_location_id   BIGINT UNSIGNED NOT NULL,
		transfer_type    ENUM('car','bus','ferry','flight','train','walking','van','boat','other') NOT NULL,
		duration_hours   DOUBLE NOT NULL,
		departure_time   TIME NULL,
		KEY idx_transfers_itinerary (itinerary_id, day_number),
		CONSTRAINT fk_transfers_itinerary FOREIGN KEY (itinerary_id) REFERENCES itineraries (id) ON DELETE CASCADE,
		CONSTRAINT fk_transfers_from FOREIGN KEY (from_location_id) REFERENCES locations (id) ON DELETE RESTRICT,
		CONSTRAINT fk_transfers_to FOREIGN KEY (to_location_id) REFERENCES locations (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS itinerary_activities (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		itinerary_id BIGINT UNSIGNED NOT NULL,
		activity_id  BIGINT UNSIGNED NOT NULL,
		day_number   INT UNSIGNED NOT NULL,
		start_time   TIME NULL,
		KEY idx_itinerary_activities_itinerary (itinerary_id, day_number),
		CONSTRAINT fk_itinerary_activities_itinerary FOREIGN KEY (itinerary_id) REFERENCES itineraries (id) ON DELETE CASCADE,
		CONSTRAINT fk_itinerary_activities_activity FOREIGN KEY (activity_id) REFERENCES activities (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  Statements are idempotent so it is
// safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
