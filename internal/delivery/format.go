package delivery

import (
	"grouporder/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with thousands separators, e.g. 85000 -> "85,000".
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

type ParticipantView struct {
	domain.ParticipantSummary
	Email        string `json:"email,omitempty"`
	SubtotalText string `json:"subtotal_text"`
}

type RosterView struct {
	domain.RosterEntry
	PriceText string `json:"price_text"`
}

type SummaryView struct {
	OrderID        string            `json:"order_id"`
	Participants   []ParticipantView `json:"participants"`
	Roster         []RosterView      `json:"roster"`
	GrandTotal     int64             `json:"grand_total"`
	GrandTotalText string            `json:"grand_total_text"`
}

// NewSummaryView decorates a summary with formatted amounts and, when known,
// participant emails.
func NewSummaryView(s domain.Summary, emails map[string]string) SummaryView {
	view := SummaryView{
		OrderID:        s.OrderID,
		Participants:   make([]ParticipantView, 0, len(s.Participants)),
		Roster:         make([]RosterView, 0, len(s.Roster)),
		GrandTotal:     s.GrandTotal,
		GrandTotalText: FormatAmount(s.GrandTotal),
	}
	for _, p := range s.Participants {
		view.Participants = append(view.Participants, ParticipantView{
			ParticipantSummary: p,
			Email:              emails[p.UserID],
			SubtotalText:       FormatAmount(p.Subtotal),
		})
	}
	for _, r := range s.Roster {
		view.Roster = append(view.Roster, RosterView{
			RosterEntry: r,
			PriceText:   FormatAmount(r.Price),
		})
	}
	return view
}
