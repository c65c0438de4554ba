package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/models"
)

const postColumns = `id, creator_id, title, content, media_url, created_at, updated_at`

// PostInput represents the post create payload
// @Description Post create structure
type PostInput struct {
	Title    string  `json:"title" validate:"required,max=200" example:"New song out now"`
	Content  string  `json:"content" validate:"required" example:"Thanks to everyone who supported the recording."`
	MediaURL *string `json:"media_url,omitempty" validate:"omitempty,url" example:"https://cdn.example.com/cover.jpg"`
}

// PostUpdate carries optional fields; nil means unchanged.
// @Description Post update structure
type PostUpdate struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content,omitempty" validate:"omitempty,min=1"`
	MediaURL *string `json:"media_url,omitempty" validate:"omitempty,url"`
}

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.CreatorID, &p.Title, &p.Content, &p.MediaURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

type PostService struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPostService(db *sql.DB, log zerolog.Logger) *PostService {
	return &PostService{
		db:  db,
		log: log.With().Str("component", "posts").Logger(),
	}
}

func (s *PostService) Create(ctx context.Context, creatorID string, in PostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (creator_id, title, content, media_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+postColumns,
		creatorID, title, content, in.MediaURL)
	post, err := scanPost(row)
	if err != nil {
		return nil, storageError("create post", err)
	}
	s.log.Info().Str("post_id", post.ID).Str("creator_id", creatorID).Msg("Post created")
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	if !IsValidAccountID(id) {
		return nil, fmt.Errorf("%w: malformed post id", ErrInvalidInput)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		return nil, storageError("find post", err)
	}
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context, page models.Page) ([]models.Post, models.Pagination, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, models.Pagination{}, storageError("count posts", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, page.Limit, page.Offset())
	if err != nil {
		return nil, models.Pagination{}, storageError("list posts", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return posts, page.Paginate(total), nil
}

func (s *PostService) ListByCreator(ctx context.Context, creatorID string, page models.Page) ([]models.Post, models.Pagination, error) {
	if !IsValidAccountID(creatorID) {
		return nil, models.Pagination{}, fmt.Errorf("%w: malformed account id", ErrInvalidInput)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE creator_id = $1`, creatorID).Scan(&total); err != nil {
		return nil, models.Pagination{}, storageError("count posts", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, creatorID, page.Limit, page.Offset())
	if err != nil {
		return nil, models.Pagination{}, storageError("list posts", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return posts, page.Paginate(total), nil
}

// Update applies in to a post owned by requesterID.
func (s *PostService) Update(ctx context.Context, requesterID, id string, in PostUpdate) (*models.Post, error) {
	if err := s.authorize(ctx, requesterID, id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    media_url = COALESCE($4, media_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+postColumns,
		id, in.Title, in.Content, in.MediaURL)
	post, err := scanPost(row)
	if err != nil {
		return nil, storageError("update post", err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, requesterID, id string) error {
	if err := s.authorize(ctx, requesterID, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return storageError("delete post", err)
	}
	s.log.Info().Str("post_id", id).Msg("Post deleted")
	return nil
}

func (s *PostService) authorize(ctx context.Context, requesterID, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.CreatorID != requesterID {
		return fmt.Errorf("%w: post belongs to another account", ErrForbidden)
	}
	return nil
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, storageError("scan post", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list posts", err)
	}
	return posts, nil
}
