// internal/connections/repository.go

package connections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

// Repository defines the connections data access interface
type Repository interface {
	CreateInvite(ctx context.Context, invite *Invite) error
	GetInvite(ctx context.Context, id int64) (*Invite, error)
	HasPendingInvite(ctx context.Context, fromUserID int64, toUserID *int64, toEmail string, circleID int64) (bool, error)
	SentInvites(ctx context.Context, userID int64) ([]*Invite, error)
	ReceivedInvites(ctx context.Context, userID int64) ([]*Invite, error)

	// AcceptInvite atomically marks the invite accepted and creates the
	// reciprocal memberships: the invitee joins the inviter's circle and
	// the inviter joins the invitee's circle of the same name, creating
	// it if it does not exist yet.
	AcceptInvite(ctx context.Context, invite *Invite, accepterID int64) error
	DeclineInvite(ctx context.Context, inviteID int64) error

	// RemoveConnection tears a connection down for one circle type:
	// both reciprocal memberships go away and so do the ratings the two
	// users exchanged in that circle.
	RemoveConnection(ctx context.Context, ownerID, targetID int64, name circles.Name) error

	Suggestions(ctx context.Context, userID int64, limit int) ([]*SuggestedUser, error)

	// UserIDByEmail returns 0 when no account exists for the email.
	UserIDByEmail(ctx context.Context, email string) (int64, error)
	ContactByID(ctx context.Context, id int64) (*ContactInfo, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateInvite(ctx context.Context, invite *Invite) error {
	query := `
		INSERT INTO invites (from_user_id, to_user_id, to_email, circle_id, circle_name, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, status, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		invite.FromUserID, invite.ToUserID, invite.ToEmail, invite.CircleID, invite.CircleName,
	).Scan(&invite.ID, &invite.Status, &invite.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetInvite(ctx context.Context, id int64) (*Invite, error) {
	var invite Invite
	query := `
		SELECT id, from_user_id, to_user_id, to_email, circle_id, circle_name, status, created_at
		FROM invites WHERE id = $1`

	if err := r.db.GetContext(ctx, &invite, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &invite, nil
}

func (r *postgresRepository) HasPendingInvite(ctx context.Context, fromUserID int64, toUserID *int64, toEmail string, circleID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM invites
			WHERE from_user_id = $1 AND circle_id = $2 AND status = 'pending'
			AND (($3::bigint IS NOT NULL AND to_user_id = $3)
				OR ($4 <> '' AND LOWER(to_email) = LOWER($4)))
		)`

	if err := r.db.GetContext(ctx, &exists, query, fromUserID, circleID, toUserID, toEmail); err != nil {
		return false, fmt.Errorf("failed to check pending invite: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) SentInvites(ctx context.Context, userID int64) ([]*Invite, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT i.id, i.from_user_id, i.to_user_id, i.to_email, i.circle_id, i.circle_name,
			i.status, i.created_at,
			u.id, u.display_name, u.photo_url
		FROM invites i
		LEFT JOIN users u ON u.id = i.to_user_id
		WHERE i.from_user_id = $1 AND i.status = 'pending'
		ORDER BY i.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sent invites: %w", err)
	}
	defer rows.Close()

	return scanInvites(rows, false)
}

func (r *postgresRepository) ReceivedInvites(ctx context.Context, userID int64) ([]*Invite, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT i.id, i.from_user_id, i.to_user_id, i.to_email, i.circle_id, i.circle_name,
			i.status, i.created_at,
			u.id, u.display_name, u.photo_url
		FROM invites i
		JOIN users u ON u.id = i.from_user_id
		WHERE i.status = 'pending'
			AND (i.to_user_id = $1
				OR LOWER(i.to_email) = (SELECT LOWER(email) FROM users WHERE id = $1))
		ORDER BY i.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get received invites: %w", err)
	}
	defer rows.Close()

	return scanInvites(rows, true)
}

func scanInvites(rows *sqlx.Rows, joinedIsSender bool) ([]*Invite, error) {
	var invites []*Invite
	for rows.Next() {
		var invite Invite
		var joinedID sql.NullInt64
		var displayName, photoURL sql.NullString
		err := rows.Scan(
			&invite.ID, &invite.FromUserID, &invite.ToUserID, &invite.ToEmail,
			&invite.CircleID, &invite.CircleName, &invite.Status, &invite.CreatedAt,
			&joinedID, &displayName, &photoURL,
		)
		if err != nil {
			return nil, err
		}
		if joinedID.Valid {
			info := &ContactInfo{
				ID:          joinedID.Int64,
				DisplayName: displayName.String,
				PhotoURL:    photoURL.String,
			}
			if joinedIsSender {
				invite.FromUser = info
			} else {
				invite.ToUser = info
			}
		}
		invites = append(invites, &invite)
	}
	return invites, rows.Err()
}

func (r *postgresRepository) AcceptInvite(ctx context.Context, invite *Invite, accepterID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE invites SET status = 'accepted', to_user_id = $1
		WHERE id = $2 AND status = 'pending'`,
		accepterID, invite.ID)
	if err != nil {
		return fmt.Errorf("failed to update invite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInviteResolved
	}

	// Find or create the accepter's circle of the same name.
	var theirCircleID int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO circles (owner_id, name) VALUES ($1, $2)
		ON CONFLICT (owner_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		accepterID, invite.CircleName,
	).Scan(&theirCircleID)
	if err != nil {
		return fmt.Errorf("failed to find or create circle: %w", err)
	}

	memberships := []struct {
		circleID int64
		userID   int64
	}{
		{invite.CircleID, accepterID},
		{theirCircleID, accepterID}, // owner membership in case the circle is fresh
		{theirCircleID, invite.FromUserID},
	}
	for _, m := range memberships {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO circle_members (circle_id, user_id) VALUES ($1, $2)
			ON CONFLICT (circle_id, user_id) DO NOTHING`,
			m.circleID, m.userID)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) DeclineInvite(ctx context.Context, inviteID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites SET status = 'declined'
		WHERE id = $1 AND status = 'pending'`, inviteID)
	if err != nil {
		return fmt.Errorf("failed to decline invite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInviteResolved
	}
	return nil
}

func (r *postgresRepository) RemoveConnection(ctx context.Context, ownerID, targetID int64, name circles.Name) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM circle_members cm
		USING circles c
		WHERE cm.circle_id = c.id AND c.name = $1
			AND ((c.owner_id = $2 AND cm.user_id = $3)
				OR (c.owner_id = $3 AND cm.user_id = $2))`,
		name, ownerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove memberships: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM ratings
		WHERE circle_name = $1
			AND ((from_user_id = $2 AND to_user_id = $3)
				OR (from_user_id = $3 AND to_user_id = $2))`,
		name, ownerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove ratings: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) Suggestions(ctx context.Context, userID int64, limit int) ([]*SuggestedUser, error) {
	// First-degree connections are members of the user's owned circles;
	// a suggestion is a member of a connection's circle of a type the
	// user already shares with that connection.
	query := `
		WITH mine AS (
			SELECT cm.user_id AS connection_id, c.name AS circle_name
			FROM circles c
			JOIN circle_members cm ON cm.circle_id = c.id
			WHERE c.owner_id = $1 AND cm.user_id <> $1
		),
		connected AS (
			SELECT DISTINCT connection_id FROM mine
		)
		SELECT DISTINCT ON (s.id)
			s.id, s.display_name, s.photo_url,
			v.id, v.display_name, v.photo_url,
			m.circle_name
		FROM mine m
		JOIN circles tc ON tc.owner_id = m.connection_id AND tc.name = m.circle_name
		JOIN circle_members tcm ON tcm.circle_id = tc.id
		JOIN users s ON s.id = tcm.user_id
		JOIN users v ON v.id = m.connection_id
		WHERE tcm.user_id <> $1
			AND tcm.user_id <> m.connection_id
			AND tcm.user_id NOT IN (SELECT connection_id FROM connected)
		ORDER BY s.id
		LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*SuggestedUser
	for rows.Next() {
		var s SuggestedUser
		err := rows.Scan(
			&s.User.ID, &s.User.DisplayName, &s.User.PhotoURL,
			&s.ViaUser.ID, &s.ViaUser.DisplayName, &s.ViaUser.PhotoURL,
			&s.ViaCircle,
		)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, &s)
	}
	return suggestions, rows.Err()
}

func (r *postgresRepository) UserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to look up email: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) ContactByID(ctx context.Context, id int64) (*ContactInfo, error) {
	var info ContactInfo
	err := r.db.GetContext(ctx, &info, `SELECT id, display_name, photo_url FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &info, nil
}
