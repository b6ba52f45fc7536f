package circles

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Circles
	FindOrCreate(ctx context.Context, ownerID int64, name Name) (*Circle, error)
	GetByID(ctx context.Context, id int64) (*Circle, error)
	GetOwnedByUser(ctx context.Context, ownerID int64) ([]*Circle, error)
	ProvisionDefaults(ctx context.Context, tx *sqlx.Tx, ownerID int64) error

	// Membership
	AddMember(ctx context.Context, circleID, userID int64) (bool, error)
	RemoveMember(ctx context.Context, circleID, userID int64) error
	MemberIDs(ctx context.Context, circleID int64) ([]int64, error)
	MemberCount(ctx context.Context, ownerID int64, name Name) (int, error)
	IsMember(ctx context.Context, circleID, userID int64) (bool, error)
	IsMemberOfOwnedCircle(ctx context.Context, ownerID int64, name Name, userID int64) (bool, error)
	IsConnected(ctx context.Context, ownerID, targetID int64) (bool, error)
	CirclesContaining(ctx context.Context, userID int64) ([]*Circle, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) FindOrCreate(ctx context.Context, ownerID int64, name Name) (*Circle, error) {
	// The unique (owner_id, name) index makes the insert side of this race-free;
	// concurrent callers both land on the same row.
	insert := `
        INSERT INTO circles (owner_id, name)
        VALUES ($1, $2)
        ON CONFLICT (owner_id, name) DO NOTHING
        RETURNING id, owner_id, name, created_at
    `

	var circle Circle
	err := r.db.QueryRowxContext(ctx, insert, ownerID, name).StructScan(&circle)
	if err == nil {
		// Freshly created: the owner is always a member of their own circle.
		if _, err := r.AddMember(ctx, circle.ID, ownerID); err != nil {
			return nil, err
		}
		return &circle, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	query := `SELECT id, owner_id, name, created_at FROM circles WHERE owner_id = $1 AND name = $2`
	if err := r.db.GetContext(ctx, &circle, query, ownerID, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}
	return &circle, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Circle, error) {
	var circle Circle
	query := `SELECT id, owner_id, name, created_at FROM circles WHERE id = $1`
	if err := r.db.GetContext(ctx, &circle, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}
	return &circle, nil
}

func (r *postgresRepository) GetOwnedByUser(ctx context.Context, ownerID int64) ([]*Circle, error) {
	var circles []*Circle
	query := `SELECT id, owner_id, name, created_at FROM circles WHERE owner_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &circles, query, ownerID); err != nil {
		return nil, err
	}
	return circles, nil
}

// ProvisionDefaults creates the four default circles for a new user inside the
// caller's transaction, with the owner as sole initial member.
func (r *postgresRepository) ProvisionDefaults(ctx context.Context, tx *sqlx.Tx, ownerID int64) error {
	for _, name := range AllNames {
		var circleID int64
		err := tx.QueryRowxContext(ctx, `
            INSERT INTO circles (owner_id, name)
            VALUES ($1, $2)
            ON CONFLICT (owner_id, name) DO NOTHING
            RETURNING id
        `, ownerID, name).Scan(&circleID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO circle_members (circle_id, user_id)
            VALUES ($1, $2)
            ON CONFLICT DO NOTHING
        `, circleID, ownerID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRepository) AddMember(ctx context.Context, circleID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        INSERT INTO circle_members (circle_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `, circleID, userID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postgresRepository) RemoveMember(ctx context.Context, circleID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM circle_members WHERE circle_id = $1 AND user_id = $2`,
		circleID, userID)
	return err
}

func (r *postgresRepository) MemberIDs(ctx context.Context, circleID int64) ([]int64, error) {
	var ids []int64
	query := `SELECT user_id FROM circle_members WHERE circle_id = $1 ORDER BY added_at`
	if err := r.db.SelectContext(ctx, &ids, query, circleID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postgresRepository) MemberCount(ctx context.Context, ownerID int64, name Name) (int, error) {
	var count int
	query := `
        SELECT COUNT(*)
        FROM circle_members cm
        JOIN circles c ON c.id = cm.circle_id
        WHERE c.owner_id = $1 AND c.name = $2
    `
	if err := r.db.GetContext(ctx, &count, query, ownerID, name); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresRepository) IsMember(ctx context.Context, circleID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM circle_members WHERE circle_id = $1 AND user_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, circleID, userID)
	return exists, err
}

func (r *postgresRepository) IsMemberOfOwnedCircle(ctx context.Context, ownerID int64, name Name, userID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1
            FROM circle_members cm
            JOIN circles c ON c.id = cm.circle_id
            WHERE c.owner_id = $1 AND c.name = $2 AND cm.user_id = $3
        )
    `
	err := r.db.GetContext(ctx, &exists, query, ownerID, name, userID)
	return exists, err
}

func (r *postgresRepository) IsConnected(ctx context.Context, ownerID, targetID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1
            FROM circle_members cm
            JOIN circles c ON c.id = cm.circle_id
            WHERE c.owner_id = $1 AND cm.user_id = $2
        )
    `
	err := r.db.GetContext(ctx, &exists, query, ownerID, targetID)
	return exists, err
}

func (r *postgresRepository) CirclesContaining(ctx context.Context, userID int64) ([]*Circle, error) {
	var circles []*Circle
	query := `
        SELECT c.id, c.owner_id, c.name, c.created_at
        FROM circles c
        JOIN circle_members cm ON cm.circle_id = c.id
        WHERE cm.user_id = $1
        ORDER BY c.id
    `
	if err := r.db.SelectContext(ctx, &circles, query, userID); err != nil {
		return nil, err
	}
	return circles, nil
}
