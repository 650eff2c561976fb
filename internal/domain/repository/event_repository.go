package repository

import (
	"context"

	"github.com/gatherhq/gather-api/internal/domain/entity"
)

// EventRepository owns events and their participation roster.
type EventRepository interface {
	// CreateWithOrganizer inserts the event and its organizer participation
	// in a single transaction; both rows exist afterwards or neither does.
	CreateWithOrganizer(ctx context.Context, e *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	// Delete removes the event; participations cascade.
	Delete(ctx context.Context, id string) error

	// CreateParticipation inserts an attendee row. Returns ErrDuplicate when
	// a participation already exists for (EventID, UserID) — the uniqueness
	// constraint is what serializes concurrent invitations.
	CreateParticipation(ctx context.Context, p *entity.Participation) error
	GetParticipation(ctx context.Context, eventID, userID string) (*entity.Participation, error)
	UpdateParticipationStatus(ctx context.Context, eventID, userID string, status entity.Status) (*entity.Participation, error)

	ListOrganized(ctx context.Context, userID string) ([]entity.EventWithRole, error)
	ListInvited(ctx context.Context, userID string) ([]entity.EventWithRole, error)
	ListParticipants(ctx context.Context, eventID string) ([]entity.Participant, error)
}
