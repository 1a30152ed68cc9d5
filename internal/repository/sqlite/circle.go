package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/socialcircles/server/internal/domain"
)

// CircleRepository implements domain.CircleRepository using SQLite.
type CircleRepository struct {
	db *sql.DB
}

// NewCircleRepository creates a new SQLite-backed CircleRepository.
func NewCircleRepository(db *DB) *CircleRepository {
	return &CircleRepository{db: db.SqlDB}
}

// Create inserts the circle and its owner membership in one transaction so a
// circle can never exist without an owner.
func (r *CircleRepository) Create(ctx context.Context, circle *domain.Circle, ownerID int64) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO circles (name, description, created_at) VALUES (?, ?, ?)`,
		circle.Name, circle.Description, now,
	)
	if err != nil {
		return fmt.Errorf("insert circle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO circle_members (circle_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		id, ownerID, domain.RoleOwner, now,
	); err != nil {
		return fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	circle.ID = id
	circle.CreatedAt = now
	return nil
}

func (r *CircleRepository) GetByID(ctx context.Context, id int64) (*domain.Circle, error) {
	circle := &domain.Circle{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM circles WHERE id = ?`, id,
	).Scan(&circle.ID, &circle.Name, &circle.Description, &circle.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query circle: %w", err)
	}

	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	circle.Members = members
	return circle, nil
}

func (r *CircleRepository) loadMembers(ctx context.Context, circleID int64) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cm.circle_id, cm.user_id, u.username, cm.role, cm.joined_at
		 FROM circle_members cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.circle_id = ?
		 ORDER BY cm.joined_at, cm.user_id`, circleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var role string
		if err := rows.Scan(&m.CircleID, &m.UserID, &m.Username, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role, err = domain.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("member %d in circle %d: %w", m.UserID, circleID, err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *CircleRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Circle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.description, c.created_at
		 FROM circles c
		 JOIN circle_members cm ON cm.circle_id = c.id
		 WHERE cm.user_id = ?
		 ORDER BY c.created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query circles by user: %w", err)
	}
	defer rows.Close()

	var circles []domain.Circle
	for rows.Next() {
		var c domain.Circle
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan circle: %w", err)
		}
		circles = append(circles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range circles {
		members, err := r.loadMembers(ctx, circles[i].ID)
		if err != nil {
			return nil, err
		}
		circles[i].Members = members
	}
	return circles, nil
}

func (r *CircleRepository) Rename(ctx context.Context, id int64, name string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE circles SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename circle: %w", err)
	}
	return requireRow(result)
}

func (r *CircleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM circles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete circle: %w", err)
	}
	return requireRow(result)
}

func (r *CircleRepository) AddMember(ctx context.Context, circleID, userID int64, role domain.Role) (*domain.Member, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO circle_members (circle_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		circleID, userID, role, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrDuplicateMember
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return r.getMember(ctx, circleID, userID)
}

func (r *CircleRepository) RemoveMember(ctx context.Context, circleID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM circle_members WHERE circle_id = ? AND user_id = ?`, circleID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return requireRow(result)
}

func (r *CircleRepository) UpdateMemberRole(ctx context.Context, circleID, userID int64, role domain.Role) (*domain.Member, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE circle_members SET role = ? WHERE circle_id = ? AND user_id = ?`,
		role, circleID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return r.getMember(ctx, circleID, userID)
}

func (r *CircleRepository) getMember(ctx context.Context, circleID, userID int64) (*domain.Member, error) {
	m := &domain.Member{}
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT cm.circle_id, cm.user_id, u.username, cm.role, cm.joined_at
		 FROM circle_members cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.circle_id = ? AND cm.user_id = ?`, circleID, userID,
	).Scan(&m.CircleID, &m.UserID, &m.Username, &role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query member: %w", err)
	}
	m.Role, err = domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// requireRow maps a zero-row mutation to ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
