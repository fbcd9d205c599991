package db

import (
	"context"
	"database/sql"
	"fmt"
)

type tableDDL struct {
	name   string
	mysql  string
	sqlite []string
}

var schema = []tableDDL{
	{
		name: "users",
		mysql: `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	bio TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	status TEXT NOT NULL DEFAULT 'active',
	bio TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`},
	},
	{
		name: "vehicles",
		mysql: `
CREATE TABLE IF NOT EXISTS vehicles (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	owner_id BIGINT NOT NULL,
	make VARCHAR(100) NOT NULL,
	model VARCHAR(100) NOT NULL,
	color VARCHAR(50) NOT NULL DEFAULT '',
	plate_number VARCHAR(20) NOT NULL,
	seats INT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE KEY uniq_vehicles_plate (plate_number),
	KEY idx_vehicles_owner (owner_id),
	CONSTRAINT fk_vehicles_owner FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS vehicles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	plate_number TEXT NOT NULL UNIQUE,
	seats INTEGER NOT NULL,
	created_at DATETIME NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_vehicles_owner ON vehicles(owner_id)`,
		},
	},
	{
		name: "trips",
		mysql: `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	driver_id BIGINT NOT NULL,
	vehicle_id BIGINT NULL,
	departure_location VARCHAR(255) NOT NULL,
	arrival_location VARCHAR(255) NOT NULL,
	departure_lat DOUBLE NULL,
	departure_lng DOUBLE NULL,
	arrival_lat DOUBLE NULL,
	arrival_lng DOUBLE NULL,
	departure_time DATETIME NOT NULL,
	available_seats INT NOT NULL,
	price_per_seat DECIMAL(10,2) NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	description TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	KEY idx_trips_driver (driver_id),
	KEY idx_trips_status_departure (status, departure_time),
	CONSTRAINT chk_trips_seats CHECK (available_seats >= 1),
	CONSTRAINT fk_trips_driver FOREIGN KEY (driver_id) REFERENCES users(id) ON DELETE CASCADE,
	CONSTRAINT fk_trips_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS trips (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	driver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	vehicle_id INTEGER NULL REFERENCES vehicles(id) ON DELETE SET NULL,
	departure_location TEXT NOT NULL,
	arrival_location TEXT NOT NULL,
	departure_lat REAL NULL,
	departure_lng REAL NULL,
	arrival_lat REAL NULL,
	arrival_lng REAL NULL,
	departure_time DATETIME NOT NULL,
	available_seats INTEGER NOT NULL CHECK (available_seats >= 1),
	price_per_seat TEXT NOT NULL DEFAULT '0',
	status TEXT NOT NULL DEFAULT 'active',
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_trips_driver ON trips(driver_id)`,
			`CREATE INDEX IF NOT EXISTS idx_trips_status_departure ON trips(status, departure_time)`,
		},
	},
	{
		name: "bookings",
		mysql: `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	passenger_id BIGINT NOT NULL,
	seats_booked INT NOT NULL,
	total_price DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_bookings_trip_passenger (trip_id, passenger_id),
	KEY idx_bookings_passenger (passenger_id),
	CONSTRAINT chk_bookings_seats CHECK (seats_booked >= 1),
	CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE,
	CONSTRAINT fk_bookings_passenger FOREIGN KEY (passenger_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	passenger_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	seats_booked INTEGER NOT NULL CHECK (seats_booked >= 1),
	total_price TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	payment_status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (trip_id, passenger_id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_passenger ON bookings(passenger_id)`,
		},
	},
	{
		name: "reviews",
		mysql: `
CREATE TABLE IF NOT EXISTS reviews (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	reviewer_id BIGINT NOT NULL,
	reviewee_id BIGINT NOT NULL,
	rating TINYINT NOT NULL,
	comment TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE KEY uniq_reviews_trip_pair (trip_id, reviewer_id, reviewee_id),
	KEY idx_reviews_reviewee (reviewee_id),
	CONSTRAINT chk_reviews_rating CHECK (rating BETWEEN 1 AND 5),
	CONSTRAINT fk_reviews_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	reviewer_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	reviewee_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	UNIQUE (trip_id, reviewer_id, reviewee_id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_reviews_reviewee ON reviews(reviewee_id)`,
		},
	},
	{
		name: "messages",
		mysql: `
CREATE TABLE IF NOT EXISTS messages (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	sender_id BIGINT NOT NULL,
	receiver_id BIGINT NOT NULL,
	trip_id BIGINT NULL,
	content TEXT NOT NULL,
	is_read TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	KEY idx_messages_pair (sender_id, receiver_id),
	KEY idx_messages_receiver_read (receiver_id, is_read),
	CONSTRAINT fk_messages_sender FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
	CONSTRAINT fk_messages_receiver FOREIGN KEY (receiver_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	receiver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	trip_id INTEGER NULL REFERENCES trips(id) ON DELETE SET NULL,
	content TEXT NOT NULL,
	is_read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_receiver_read ON messages(receiver_id, is_read)`,
		},
	},
}

// Migrate creates missing tables. It returns the names of tables it created.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) ([]string, error) {
	created := []string{}
	for _, t := range schema {
		exists, err := HasTable(ctx, db, d, t.name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		stmts := t.sqlite
		if d == DialectMySQL {
			stmts = []string{t.mysql}
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return created, fmt.Errorf("create %s: %w", t.name, err)
			}
		}
		created = append(created, t.name)
	}
	return created, nil
}
