package repo

import (
	"context"
	"fmt"
)

const serviceColumns = `id, title, description, icon, features, display_order, created_at, updated_at`

func scanService(row rowScanner) (Service, error) {
	var (
		s        Service
		features stringList
	)
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Icon, &features, &s.DisplayOrder, &s.CreatedAt, &s.UpdatedAt)
	s.Features = features
	return s, err
}

// ListServices returns services in display order.
func (q *queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.query(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY display_order ASC, created_at ASC`)
	if err != nil {
		return nil, classify("list services", err)
	}
	defer rows.Close()

	out := []Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return out, nil
}

// GetService loads a service by id.
func (q *queries) GetService(ctx context.Context, id string) (*Service, error) {
	s, err := scanService(q.db.queryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get service", err)
	}
	return &s, nil
}

// CreateService inserts a service.
func (q *queries) CreateService(ctx context.Context, in ServiceInput) (*Service, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO services (id, title, description, icon, features, display_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Description, in.Icon, stringList(in.Features), in.DisplayOrder, ts, ts)
	if err != nil {
		return nil, classify("create service", err)
	}
	return q.GetService(ctx, id)
}

// UpdateService overwrites a service.
func (q *queries) UpdateService(ctx context.Context, id string, in ServiceInput) (*Service, error) {
	n, err := q.db.exec(ctx, `
UPDATE services
SET title = ?, description = ?, icon = ?, features = ?, display_order = ?, updated_at = ?
WHERE id = ?`,
		in.Title, in.Description, in.Icon, stringList(in.Features), in.DisplayOrder, now(), id)
	if err != nil {
		return nil, classify("update service", err)
	}
	if err := notFoundIfNone("update service", n); err != nil {
		return nil, err
	}
	return q.GetService(ctx, id)
}

// DeleteService removes a service.
func (q *queries) DeleteService(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return classify("delete service", err)
	}
	return notFoundIfNone("delete service", n)
}

const faqColumns = `id, question, answer, display_order, created_at, updated_at`

func scanFAQ(row rowScanner) (FAQ, error) {
	var f FAQ
	err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.DisplayOrder, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// ListFAQs returns FAQs in display order.
func (q *queries) ListFAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := q.db.query(ctx, `SELECT `+faqColumns+` FROM faqs ORDER BY display_order ASC, created_at ASC`)
	if err != nil {
		return nil, classify("list faqs", err)
	}
	defer rows.Close()

	out := []FAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return out, nil
}

// GetFAQ loads a FAQ by id.
func (q *queries) GetFAQ(ctx context.Context, id string) (*FAQ, error) {
	f, err := scanFAQ(q.db.queryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get faq", err)
	}
	return &f, nil
}

// CreateFAQ inserts a FAQ.
func (q *queries) CreateFAQ(ctx context.Context, in FAQInput) (*FAQ, error) {
	id, ts := newID(), now()
	_, err := q.db.exec(ctx, `
INSERT INTO faqs (id, question, answer, display_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.Question, in.Answer, in.DisplayOrder, ts, ts)
	if err != nil {
		return nil, classify("create faq", err)
	}
	return q.GetFAQ(ctx, id)
}

// UpdateFAQ overwrites a FAQ.
func (q *queries) UpdateFAQ(ctx context.Context, id string, in FAQInput) (*FAQ, error) {
	n, err := q.db.exec(ctx, `
UPDATE faqs
SET question = ?, answer = ?, display_order = ?, updated_at = ?
WHERE id = ?`,
		in.Question, in.Answer, in.DisplayOrder, now(), id)
	if err != nil {
		return nil, classify("update faq", err)
	}
	if err := notFoundIfNone("update faq", n); err != nil {
		return nil, err
	}
	return q.GetFAQ(ctx, id)
}

// DeleteFAQ removes a FAQ.
func (q *queries) DeleteFAQ(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM faqs WHERE id = ?`, id)
	if err != nil {
		return classify("delete faq", err)
	}
	return notFoundIfNone("delete faq", n)
}
