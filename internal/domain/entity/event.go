package entity

import (
	"time"
)

// Role is the relationship between a user and an event.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// Status is an attendee's RSVP answer. It is meaningless for organizer
// participations and defaults to StatusMaybe when an invitation is created.
type Status string

const (
	StatusGoing    Status = "going"
	StatusMaybe    Status = "maybe"
	StatusNotGoing Status = "not going"
)

// Valid reports whether s is one of the three recognized RSVP values.
func (s Status) Valid() bool {
	switch s {
	case StatusGoing, StatusMaybe, StatusNotGoing:
		return true
	}
	return false
}

// Layouts for the calendar date and time-of-day fields as they travel over
// the wire (HTML date/time inputs on the front-end).
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is the aggregate root for the roster domain. Date and Time are kept
// as separate wire-format strings; StartsAt combines them.
type Event struct {
	ID          string
	Title       string
	Date        string // DateLayout
	Time        string // TimeLayout
	Location    string
	Description string
	OrganizerID string
	CreatedAt   time.Time
}

// StartsAt combines Date and Time into a single instant in the given
// location. Seconds in the time component are tolerated.
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+"T"+TimeLayout, e.Date+"T"+e.Time, loc)
	if err != nil {
		t, err = time.ParseInLocation(DateLayout+"T"+TimeLayout+":05", e.Date+"T"+e.Time, loc)
	}
	return t, err
}

// Participation relates one Event to one User. There is exactly one organizer
// participation per event and at most one participation per (event, user).
type Participation struct {
	ID        string
	EventID   string
	UserID    string
	Role      Role
	Status    Status
	InvitedAt time.Time
}

// EventWithRole is the read model returned by viewer-scoped listings: the
// event plus the viewer's relationship to it and query-time projections of
// the organizer's display name and the roster size.
type EventWithRole struct {
	Event
	OrganizerName    string
	ViewerRole       Role
	ViewerStatus     Status // empty unless ViewerRole == RoleAttendee
	ParticipantCount int
}

// Participant is a Participation denormalized with the user's identity for
// the organizer-facing roster listing.
type Participant struct {
	Participation
	Username string
	Email    string
}
