package repo

import (
	"context"
	"fmt"
)

const blogColumns = `id, title, slug, excerpt, content, cover_image, is_published, published_at, created_at, updated_at`

func scanBlogPost(row rowScanner) (BlogPost, error) {
	var b BlogPost
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content, &b.CoverImage, &b.IsPublished, &b.PublishedAt, &b.CreatedAt, &b.UpdatedAt)
	if b.PublishedAt != nil {
		t := b.PublishedAt.UTC()
		b.PublishedAt = &t
	}
	return b, err
}

// ListBlogPosts returns posts. Published listings are ordered by publish
// date; the full listing by creation date.
func (q *queries) ListBlogPosts(ctx context.Context, filter BlogPostFilter) ([]BlogPost, error) {
	stmt := `SELECT ` + blogColumns + ` FROM blog_posts`
	var args []any
	if filter.PublishedOnly {
		stmt += ` WHERE is_published = ? ORDER BY published_at DESC, created_at DESC`
		args = append(args, true)
	} else {
		stmt += ` ORDER BY created_at DESC`
	}
	stmt, args = limitClause(stmt, args, filter.Limit)

	rows, err := q.db.query(ctx, stmt, args...)
	if err != nil {
		return nil, classify("list blog posts", err)
	}
	defer rows.Close()

	out := []BlogPost{}
	for rows.Next() {
		b, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blog posts: %w", err)
	}
	return out, nil
}

// GetBlogPost loads a post by id regardless of publish state.
func (q *queries) GetBlogPost(ctx context.Context, id string) (*BlogPost, error) {
	b, err := scanBlogPost(q.db.queryRow(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get blog post", err)
	}
	return &b, nil
}

// GetBlogPostBySlug loads a post by slug, optionally requiring it to be published.
func (q *queries) GetBlogPostBySlug(ctx context.Context, slug string, publishedOnly bool) (*BlogPost, error) {
	stmt := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = ?`
	args := []any{slug}
	if publishedOnly {
		stmt += ` AND is_published = ?`
		args = append(args, true)
	}
	b, err := scanBlogPost(q.db.queryRow(ctx, stmt, args...))
	if err != nil {
		return nil, classify("get blog post by slug", err)
	}
	return &b, nil
}

// CreateBlogPost inserts a post.
func (q *queries) CreateBlogPost(ctx context.Context, in BlogPostInput) (*BlogPost, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO blog_posts (id, title, slug, excerpt, content, cover_image, is_published, published_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Slug, in.Excerpt, in.Content, in.CoverImage, in.IsPublished, in.PublishedAt, ts, ts)
	if err != nil {
		return nil, classify("create blog post", err)
	}
	return q.GetBlogPost(ctx, id)
}

// UpdateBlogPost overwrites a post including its publish state.
func (q *queries) UpdateBlogPost(ctx context.Context, id string, in BlogPostInput) (*BlogPost, error) {
	n, err := q.db.exec(ctx, `
UPDATE blog_posts
SET title = ?, slug = ?, excerpt = ?, content = ?, cover_image = ?, is_published = ?, published_at = ?, updated_at = ?
WHERE id = ?`,
		in.Title, in.Slug, in.Excerpt, in.Content, in.CoverImage, in.IsPublished, in.PublishedAt, now(), id)
	if err != nil {
		return nil, classify("update blog post", err)
	}
	if err := notFoundIfNone("update blog post", n); err != nil {
		return nil, err
	}
	return q.GetBlogPost(ctx, id)
}

// DeleteBlogPost removes a post.
func (q *queries) DeleteBlogPost(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return classify("delete blog post", err)
	}
	return notFoundIfNone("delete blog post", n)
}
