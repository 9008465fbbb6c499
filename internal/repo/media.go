package repo

import (
	"context"
	"fmt"
)

const galleryColumns = `id, title, description, image_url, display_order, created_at, updated_at`

func scanGalleryImage(row rowScanner) (GalleryImage, error) {
	var g GalleryImage
	err := row.Scan(&g.ID, &g.Title, &g.Description, &g.ImageURL, &g.DisplayOrder, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// ListGalleryImages returns gallery entries in display order.
func (q *queries) ListGalleryImages(ctx context.Context) ([]GalleryImage, error) {
	rows, err := q.db.query(ctx, `SELECT `+galleryColumns+` FROM gallery ORDER BY display_order ASC, created_at DESC`)
	if err != nil {
		return nil, classify("list gallery", err)
	}
	defer rows.Close()

	out := []GalleryImage{}
	for rows.Next() {
		g, err := scanGalleryImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery: %w", err)
	}
	return out, nil
}

// GetGalleryImage loads a gallery entry by id.
func (q *queries) GetGalleryImage(ctx context.Context, id string) (*GalleryImage, error) {
	g, err := scanGalleryImage(q.db.queryRow(ctx, `SELECT `+galleryColumns+` FROM gallery WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get gallery image", err)
	}
	return &g, nil
}

// CreateGalleryImage inserts a gallery entry.
func (q *queries) CreateGalleryImage(ctx context.Context, in GalleryImageInput) (*GalleryImage, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO gallery (id, title, description, image_url, display_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Description, in.ImageURL, in.DisplayOrder, ts, ts)
	if err != nil {
		return nil, classify("create gallery image", err)
	}
	return q.GetGalleryImage(ctx, id)
}

// UpdateGalleryImage overwrites a gallery entry.
func (q *queries) UpdateGalleryImage(ctx context.Context, id string, in GalleryImageInput) (*GalleryImage, error) {
	n, err := q.db.exec(ctx, `
UPDATE gallery
SET title = ?, description = ?, image_url = ?, display_order = ?, updated_at = ?
WHERE id = ?`,
		in.Title, in.Description, in.ImageURL, in.DisplayOrder, now(), id)
	if err != nil {
		return nil, classify("update gallery image", err)
	}
	if err := notFoundIfNone("update gallery image", n); err != nil {
		return nil, err
	}
	return q.GetGalleryImage(ctx, id)
}

// DeleteGalleryImage removes a gallery entry.
func (q *queries) DeleteGalleryImage(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM gallery WHERE id = ?`, id)
	if err != nil {
		return classify("delete gallery image", err)
	}
	return notFoundIfNone("delete gallery image", n)
}

const testimonialColumns = `id, name, company, content, rating, image_url, is_featured, created_at, updated_at`

func scanTestimonial(row rowScanner) (Testimonial, error) {
	var t Testimonial
	err := row.Scan(&t.ID, &t.Name, &t.Company, &t.Content, &t.Rating, &t.ImageURL, &t.IsFeatured, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTestimonials returns testimonials, newest first.
func (q *queries) ListTestimonials(ctx context.Context, filter TestimonialFilter) ([]Testimonial, error) {
	stmt := `SELECT ` + testimonialColumns + ` FROM testimonials`
	var args []any
	if filter.FeaturedOnly {
		stmt += ` WHERE is_featured = ?`
		args = append(args, true)
	}
	stmt += ` ORDER BY created_at DESC`
	stmt, args = limitClause(stmt, args, filter.Limit)

	rows, err := q.db.query(ctx, stmt, args...)
	if err != nil {
		return nil, classify("list testimonials", err)
	}
	defer rows.Close()

	out := []Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate testimonials: %w", err)
	}
	return out, nil
}

// GetTestimonial loads a testimonial by id.
func (q *queries) GetTestimonial(ctx context.Context, id string) (*Testimonial, error) {
	t, err := scanTestimonial(q.db.queryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get testimonial", err)
	}
	return &t, nil
}

// CreateTestimonial inserts a testimonial.
func (q *queries) CreateTestimonial(ctx context.Context, in TestimonialInput) (*Testimonial, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO testimonials (id, name, company, content, rating, image_url, is_featured, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Company, in.Content, in.Rating, in.ImageURL, in.IsFeatured, ts, ts)
	if err != nil {
		return nil, classify("create testimonial", err)
	}
	return q.GetTestimonial(ctx, id)
}

// UpdateTestimonial overwrites a testimonial.
func (q *queries) UpdateTestimonial(ctx context.Context, id string, in TestimonialInput) (*Testimonial, error) {
	n, err := q.db.exec(ctx, `
UPDATE testimonials
SET name = ?, company = ?, content = ?, rating = ?, image_url = ?, is_featured = ?, updated_at = ?
WHERE id = ?`,
		in.Name, in.Company, in.Content, in.Rating, in.ImageURL, in.IsFeatured, now(), id)
	if err != nil {
		return nil, classify("update testimonial", err)
	}
	if err := notFoundIfNone("update testimonial", n); err != nil {
		return nil, err
	}
	return q.GetTestimonial(ctx, id)
}

// DeleteTestimonial removes a testimonial.
func (q *queries) DeleteTestimonial(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM testimonials WHERE id = ?`, id)
	if err != nil {
		return classify("delete testimonial", err)
	}
	return notFoundIfNone("delete testimonial", n)
}
