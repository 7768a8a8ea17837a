package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"ecommerce-backend/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/ticket.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/ticket.txt.tmpl"))
)

// Message is one outgoing e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type ticketView struct {
	Code        string
	PurchasedAt string
	Total       string
	Pending     bool
	Lines       []lineView
}

type lineView struct {
	Title     string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

// TicketMessage renders the purchase confirmation for t.
func TicketMessage(t domain.Ticket) (Message, error) {
	view := ticketView{
		Code:        t.Code,
		PurchasedAt: t.PurchasedAt.UTC().Format(time.RFC1123),
		Total:       FormatCents(t.AmountCents),
		Pending:     t.Status == domain.TicketPending,
	}
	for _, l := range t.Lines {
		view.Lines = append(view.Lines, lineView{
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: FormatCents(l.UnitPriceCents),
			Subtotal:  FormatCents(l.SubtotalCents()),
		})
	}

	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, "html", view); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := textTemplates.ExecuteTemplate(&text, "text", view); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{
		To:      t.Purchaser,
		Subject: "Purchase confirmation - Ticket " + t.Code,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// FormatCents renders an amount in cents as $D.CC.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
