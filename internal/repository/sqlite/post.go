package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/socialcircles/server/internal/domain"
)

// PostRepository implements domain.PostRepository using SQLite.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLite-backed PostRepository.
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db.SqlDB}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC()
	var circleID any
	if post.CircleID != nil {
		circleID = *post.CircleID
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, circle_id, title, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.UserID, circleID, post.Title, post.Content, now,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	post.ID = id
	post.CreatedAt = now
	return nil
}

const postColumns = `p.id, p.user_id, u.username, p.circle_id, p.title, p.content, p.created_at`

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	post := &domain.Post{}
	var circleID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id = ?`, id,
	).Scan(&post.ID, &post.UserID, &post.AuthorUsername, &circleID, &post.Title, &post.Content, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	if circleID.Valid {
		post.CircleID = &circleID.Int64
	}
	return post, nil
}

func (r *PostRepository) ListFeed(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error) {
	return r.list(ctx,
		`SELECT `+postColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.circle_id IS NULL
		    OR p.circle_id IN (SELECT circle_id FROM circle_members WHERE user_id = ?)
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
}

func (r *PostRepository) ListByCircle(ctx context.Context, circleID int64, limit, offset int) ([]domain.Post, error) {
	return r.list(ctx,
		`SELECT `+postColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.circle_id = ?
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		circleID, limit, offset,
	)
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		var circleID sql.NullInt64
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.AuthorUsername, &circleID,
			&post.Title, &post.Content, &post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if circleID.Valid {
			post.CircleID = &circleID.Int64
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireRow(result)
}
