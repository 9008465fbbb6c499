package wa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quartz-site/internal/repo"

	"go.mau.fi/whatsmeow/types"
)

// TextSender delivers a text message to a WhatsApp JID.
type TextSender interface {
	SendText(ctx context.Context, to types.JID, text string) error
}

// Notifier sends lead summaries to the staff number.
type Notifier struct {
	sender   TextSender
	to       types.JID
	adminURL string
}

// NewNotifier targets the given phone number. adminURL, when set, is used to
// link each summary to its back office page.
func NewNotifier(sender TextSender, number, adminURL string) (*Notifier, error) {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil, errors.New("notify number has no digits")
	}
	return &Notifier{
		sender:   sender,
		to:       types.NewJID(digits.String(), types.DefaultUserServer),
		adminURL: strings.TrimRight(adminURL, "/"),
	}, nil
}

// NotifyInquiry sends a short summary of a quartz inquiry.
func (n *Notifier) NotifyInquiry(ctx context.Context, inq *repo.Inquiry) error {
	var b strings.Builder
	b.WriteString("New quartz inquiry\n")
	fmt.Fprintf(&b, "Company: %s\n", inq.CompanyName)
	fmt.Fprintf(&b, "Contact: %s\n", inq.ContactName)
	fmt.Fprintf(&b, "Email: %s\n", inq.Email)
	if buyer, ok := inq.Payload["section1_buyerCompanyDetails"].(map[string]any); ok {
		if phone, _ := buyer["mobileWhatsApp"].(string); phone != "" {
			fmt.Fprintf(&b, "Mobile: %s\n", phone)
		}
		if country, _ := buyer["country"].(string); country != "" {
			fmt.Fprintf(&b, "Country: %s\n", country)
		}
	}
	if quantity, ok := inq.Payload["section4_quantityRequirement"].(map[string]any); ok {
		if qty, _ := quantity["requiredQuantity"].(string); qty != "" {
			unit, _ := quantity["quantityUnit"].(string)
			fmt.Fprintf(&b, "Quantity: %s %s\n", qty, unit)
		}
	}
	if n.adminURL != "" {
		fmt.Fprintf(&b, "%s/admin/inquiries/%s", n.adminURL, inq.ID)
	}
	return n.send(ctx, b.String())
}

// NotifyContactMessage sends a short summary of a contact page message.
func (n *Notifier) NotifyContactMessage(ctx context.Context, msg *repo.ContactMessage) error {
	var b strings.Builder
	b.WriteString("New contact message\n")
	fmt.Fprintf(&b, "From: %s <%s>\n", msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	}
	if msg.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	}
	b.WriteString(truncate(msg.Message, 500))
	return n.send(ctx, b.String())
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := n.sender.SendText(ctx, n.to, strings.TrimSpace(text)); err != nil {
		return fmt.Errorf("notify %s: %w", n.to.User, err)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
