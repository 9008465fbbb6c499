package repo

import (
	"context"
	"fmt"
	"time"
)

const contactColumns = `id, name, email, phone, subject, message, is_read, created_at`

func scanContactMessage(row rowScanner) (ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt)
	return m, err
}

// ListContactMessages returns messages, newest first.
func (q *queries) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := q.db.query(ctx, `SELECT `+contactColumns+` FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify("list contact messages", err)
	}
	defer rows.Close()

	out := []ContactMessage{}
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact messages: %w", err)
	}
	return out, nil
}

// CreateContactMessage stores a new unread message.
func (q *queries) CreateContactMessage(ctx context.Context, in ContactMessageInput) (*ContactMessage, error) {
	msg := ContactMessage{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: now(),
	}
	_, err := q.db.exec(ctx, `
INSERT INTO contact_messages (id, name, email, phone, subject, message, is_read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message, false, msg.CreatedAt)
	if err != nil {
		return nil, classify("create contact message", err)
	}
	return &msg, nil
}

// SetContactMessageRead flips the read flag.
func (q *queries) SetContactMessageRead(ctx context.Context, id string, read bool) error {
	n, err := q.db.exec(ctx, `UPDATE contact_messages SET is_read = ? WHERE id = ?`, read, id)
	if err != nil {
		return classify("mark contact message", err)
	}
	return notFoundIfNone("mark contact message", n)
}

// DeleteContactMessage removes a message.
func (q *queries) DeleteContactMessage(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return classify("delete contact message", err)
	}
	return notFoundIfNone("delete contact message", n)
}

const inquiryColumns = `id, company_name, contact_name, email, payload, is_read, created_at`

func scanInquiry(row rowScanner) (Inquiry, error) {
	var (
		inq     Inquiry
		payload jsonDocument
	)
	err := row.Scan(&inq.ID, &inq.CompanyName, &inq.ContactName, &inq.Email, &payload, &inq.IsRead, &inq.CreatedAt)
	inq.Payload = payload
	return inq, err
}

// ListInquiries returns inquiries, newest first.
func (q *queries) ListInquiries(ctx context.Context) ([]Inquiry, error) {
	rows, err := q.db.query(ctx, `SELECT `+inquiryColumns+` FROM quartz_inquiries ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify("list inquiries", err)
	}
	defer rows.Close()

	out := []Inquiry{}
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		out = append(out, inq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inquiries: %w", err)
	}
	return out, nil
}

// GetInquiry loads an inquiry by id.
func (q *queries) GetInquiry(ctx context.Context, id string) (*Inquiry, error) {
	inq, err := scanInquiry(q.db.queryRow(ctx, `SELECT `+inquiryColumns+` FROM quartz_inquiries WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get inquiry", err)
	}
	return &inq, nil
}

// CreateInquiry stores a new unread inquiry. The creation time is taken from
// the input when set so callers control the server timestamp.
func (q *queries) CreateInquiry(ctx context.Context, in NewInquiry) (*Inquiry, error) {
	created := in.CreatedAt.UTC().Truncate(time.Microsecond)
	if in.CreatedAt.IsZero() {
		created = now()
	}
	inq := Inquiry{
		ID:          newID(),
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Email:       in.Email,
		Payload:     in.Payload,
		CreatedAt:   created,
	}
	_, err := q.db.exec(ctx, `
INSERT INTO quartz_inquiries (id, company_name, contact_name, email, payload, is_read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inq.ID, inq.CompanyName, inq.ContactName, inq.Email, jsonDocument(inq.Payload), false, inq.CreatedAt)
	if err != nil {
		return nil, classify("create inquiry", err)
	}
	return &inq, nil
}

// SetInquiryRead flips the read flag.
func (q *queries) SetInquiryRead(ctx context.Context, id string, read bool) error {
	n, err := q.db.exec(ctx, `UPDATE quartz_inquiries SET is_read = ? WHERE id = ?`, read, id)
	if err != nil {
		return classify("mark inquiry", err)
	}
	return notFoundIfNone("mark inquiry", n)
}

// DeleteInquiry removes an inquiry.
func (q *queries) DeleteInquiry(ctx context.Context, id string) error {
	n, err := q.db.exec(ctx, `DELETE FROM quartz_inquiries WHERE id = ?`, id)
	if err != nil {
		return classify("delete inquiry", err)
	}
	return notFoundIfNone("delete inquiry", n)
}
