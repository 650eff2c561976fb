package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/gatherhq/gather-api/config"
	"github.com/gatherhq/gather-api/pkg/helpers"
)

// Seeds a demo organizer, a demo attendee and one event with a pending
// invitation so the front-end has something to show on a fresh database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	organizerID := seedUser(db, "demoOrganizer", "organizer@example.com", "password123")
	attendeeID := seedUser(db, "demoAttendee", "attendee@example.com", "password123")

	eventDate := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	var eventID string
	err = db.QueryRow(`
		INSERT INTO events (title, event_date, event_time, location, description, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, "Board game night", eventDate, "19:00", "Community hall", "Bring your favourite game.", organizerID).Scan(&eventID)
	if err != nil {
		log.Fatalf("failed to seed event: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO participations (event_id, user_id, role, status)
		VALUES ($1, $2, 'organizer', 'going')
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, organizerID); err != nil {
		log.Fatalf("failed to seed organizer participation: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO participations (event_id, user_id, role, status)
		VALUES ($1, $2, 'attendee', 'maybe')
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, attendeeID); err != nil {
		log.Fatalf("failed to seed invitation: %v", err)
	}

	fmt.Printf("seeded event %s with organizer %s and invited attendee %s\n", eventID, organizerID, attendeeID)
	fmt.Println("demo accounts: organizer@example.com / attendee@example.com, password: password123")
}

func seedUser(db *sql.DB, username, email, password string) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(email)) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	fmt.Printf("seeded user: id=%s email=%s\n", id, email)
	return id
}
