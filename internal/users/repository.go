package users

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdatePhotoURL(ctx context.Context, id int64, url string) error
	SetSelfScores(ctx context.Context, id int64, kind string, scores SelfScores) error
	SetPremium(ctx context.Context, id int64, premium bool) error

	// Token balance. The reset is a single conditional statement so
	// concurrent callers can never double-reset; debits go through
	// DebitToken inside the spending transaction.
	ResetTokensIfDue(ctx context.Context, id int64, allotment int) (bool, error)

	SearchByNamePrefix(ctx context.Context, prefix string, excludeID int64, limit int) ([]*User, error)
	ListOrderedByName(ctx context.Context, afterName string, afterID int64, limit int) ([]*User, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `
    id, email, display_name, display_name_lowercase, first_name, last_name,
    photo_url, is_premium, is_admin, reveal_tokens, last_token_reset,
    eco_scores, family_scores, password_hash, created_at, updated_at
`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*User, error) {
	result := make(map[int64]*User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var rows []*User
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, user := range rows {
		result[user.ID] = user
	}
	return result, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
        UPDATE users
        SET display_name = $2,
            display_name_lowercase = $3,
            first_name = $4,
            last_name = $5,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.DisplayName, strings.ToLower(user.DisplayName),
		user.FirstName, user.LastName)
	return err
}

func (r *postgresRepository) UpdatePhotoURL(ctx context.Context, id int64, url string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET photo_url = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, url)
	return err
}

func (r *postgresRepository) SetSelfScores(ctx context.Context, id int64, kind string, scores SelfScores) error {
	column := "eco_scores"
	if kind == "family" {
		column = "family_scores"
	}
	query := `UPDATE users SET ` + column + ` = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, scores)
	return err
}

func (r *postgresRepository) SetPremium(ctx context.Context, id int64, premium bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_premium = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, premium)
	return err
}

// DebitToken performs the guarded atomic decrement, the sole debit path
// for the token economy. Callers pass their own transaction so the debit
// commits or rolls back with the spend it pays for. Returns false when
// the balance was already zero; the balance can never go negative.
func DebitToken(ctx context.Context, ex sqlx.ExecerContext, id int64) (bool, error) {
	result, err := ex.ExecContext(ctx, `
        UPDATE users
        SET reveal_tokens = reveal_tokens - 1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND reveal_tokens >= 1
    `, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ResetTokensIfDue applies the lazy monthly reset as one conditional update:
// only premium users whose last reset predates the current calendar month are
// touched, so concurrent loads cannot double-reset.
func (r *postgresRepository) ResetTokensIfDue(ctx context.Context, id int64, allotment int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET reveal_tokens = $2,
            last_token_reset = CURRENT_TIMESTAMP,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
          AND is_premium = TRUE
          AND (last_token_reset IS NULL
               OR date_trunc('month', last_token_reset) < date_trunc('month', CURRENT_TIMESTAMP))
    `, id, allotment)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postgresRepository) SearchByNamePrefix(ctx context.Context, prefix string, excludeID int64, limit int) ([]*User, error) {
	var found []*User
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE display_name_lowercase LIKE $1 || '%' AND id != $2
        ORDER BY display_name_lowercase
        LIMIT $3
    `
	err := r.db.SelectContext(ctx, &found, query, strings.ToLower(prefix), excludeID, limit)
	return found, err
}

// ListOrderedByName pages on the (display_name_lowercase, id) tuple;
// the name alone is not unique, so paging on it would skip rows that
// share the boundary name.
func (r *postgresRepository) ListOrderedByName(ctx context.Context, afterName string, afterID int64, limit int) ([]*User, error) {
	var found []*User
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE (display_name_lowercase, id) > ($1, $2)
        ORDER BY display_name_lowercase, id
        LIMIT $3
    `
	err := r.db.SelectContext(ctx, &found, query, afterName, afterID, limit)
	return found, err
}
