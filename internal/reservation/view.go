package reservation

import "github.com/example/burger-helsinki/internal/calendar"

// View is what the reservation page renders. Every flag is derived from the
// draft so the gating rules live in one place.
type View struct {
	Status Status `json:"status"`
	Guests int    `json:"guests"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`

	TimeInputVisible bool `json:"timeInputVisible"`
	ProceedVisible   bool `json:"proceedVisible"`
	FormVisible      bool `json:"formVisible"`
	SubmitEnabled    bool `json:"submitEnabled"`

	MessageVisible bool        `json:"messageVisible"`
	Message        string      `json:"message,omitempty"`
	MessageKind    MessageKind `json:"messageKind,omitempty"`
	ConfirmationID string      `json:"confirmationId,omitempty"`
}

func (d *Draft) View() View {
	v := View{
		Status:         d.Status,
		Guests:         d.Guests,
		Time:           d.Time,
		Message:        d.Message,
		MessageKind:    d.MessageKind,
		MessageVisible: d.Message != "",
		ConfirmationID: d.ConfirmationID,
	}
	if d.HasDate() {
		v.Date = d.Date.Format(calendar.DateLayout)
	}
	v.TimeInputVisible = d.Guests > 0 && d.HasDate()
	v.ProceedVisible = v.TimeInputVisible && ValidTime(d.Time)
	v.FormVisible = d.Status.rank() >= StatusAwaitingContact.rank()
	v.SubmitEnabled = v.FormVisible && ValidTime(d.Time) && !d.Submitting && d.Status != StatusSubmitted
	return v
}
