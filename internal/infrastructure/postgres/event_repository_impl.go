package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhq/gather-api/internal/domain/entity"
	"github.com/gatherhq/gather-api/internal/domain/repository"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) CreateWithOrganizer(ctx context.Context, e *entity.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO events (title, event_date, event_time, location, description, organizer_id)
		VALUES ($1, $2::date, $3::time, $4, $5, $6)
		RETURNING id, created_at
	`, e.Title, e.Date, e.Time, e.Location, e.Description, e.OrganizerID)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO participations (event_id, user_id, role)
		VALUES ($1, $2, 'organizer')
	`, e.ID, e.OrganizerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	e := &entity.Event{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, title, to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI'),
		       location, description, organizer_id, created_at
		FROM events
		WHERE id = $1
	`, id)

	if err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location,
		&e.Description, &e.OrganizerID, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return e, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *EventRepository) CreateParticipation(ctx context.Context, p *entity.Participation) error {
	if p.Status == "" {
		p.Status = entity.StatusMaybe
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO participations (event_id, user_id, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, invited_at
	`, p.EventID, p.UserID, p.Role, p.Status)

	if err := row.Scan(&p.ID, &p.InvitedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *EventRepository) GetParticipation(ctx context.Context, eventID, userID string) (*entity.Participation, error) {
	p := &entity.Participation{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, event_id, user_id, role, status, invited_at
		FROM participations
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)

	if err := row.Scan(&p.ID, &p.EventID, &p.UserID, &p.Role, &p.Status, &p.InvitedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *EventRepository) UpdateParticipationStatus(ctx context.Context, eventID, userID string, status entity.Status) (*entity.Participation, error) {
	p := &entity.Participation{}

	row := r.pool.QueryRow(ctx, `
		UPDATE participations
		SET status = $1
		WHERE event_id = $2 AND user_id = $3 AND role = 'attendee'
		RETURNING id, event_id, user_id, role, status, invited_at
	`, status, eventID, userID)

	if err := row.Scan(&p.ID, &p.EventID, &p.UserID, &p.Role, &p.Status, &p.InvitedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

const eventWithRoleColumns = `
	e.id, e.title, to_char(e.event_date, 'YYYY-MM-DD'), to_char(e.event_time, 'HH24:MI'),
	e.location, e.description, e.organizer_id, e.created_at,
	u.username,
	(SELECT count(*) FROM participations pc WHERE pc.event_id = e.id)
`

func (r *EventRepository) ListOrganized(ctx context.Context, userID string) ([]entity.EventWithRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventWithRoleColumns+`
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		WHERE e.organizer_id = $1
		ORDER BY e.event_date DESC, e.event_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.EventWithRole{}
	for rows.Next() {
		var it entity.EventWithRole
		if err := rows.Scan(&it.ID, &it.Title, &it.Date, &it.Time, &it.Location,
			&it.Description, &it.OrganizerID, &it.CreatedAt,
			&it.OrganizerName, &it.ParticipantCount); err != nil {
			return nil, err
		}
		it.ViewerRole = entity.RoleOrganizer
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *EventRepository) ListInvited(ctx context.Context, userID string) ([]entity.EventWithRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventWithRoleColumns+`, p.status
		FROM participations p
		JOIN events e ON e.id = p.event_id
		JOIN users u ON u.id = e.organizer_id
		WHERE p.user_id = $1 AND p.role = 'attendee'
		ORDER BY e.event_date DESC, e.event_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.EventWithRole{}
	for rows.Next() {
		var it entity.EventWithRole
		if err := rows.Scan(&it.ID, &it.Title, &it.Date, &it.Time, &it.Location,
			&it.Description, &it.OrganizerID, &it.CreatedAt,
			&it.OrganizerName, &it.ParticipantCount, &it.ViewerStatus); err != nil {
			return nil, err
		}
		it.ViewerRole = entity.RoleAttendee
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *EventRepository) ListParticipants(ctx context.Context, eventID string) ([]entity.Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.event_id, p.user_id, p.role, p.status, p.invited_at,
		       u.username, u.email
		FROM participations p
		JOIN users u ON u.id = p.user_id
		WHERE p.event_id = $1
		ORDER BY p.role DESC, p.invited_at
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Participant{}
	for rows.Next() {
		var p entity.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Role, &p.Status,
			&p.InvitedAt, &p.Username, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.EventRepository = (*EventRepository)(nil)
