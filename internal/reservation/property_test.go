package reservation

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// TestGatingProperties drives a draft with arbitrary event sequences and
// checks the visibility rules after every step.
func TestGatingProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := NewDraft("prop", now)
		prevRank := d.Status.rank()

		t.Repeat(map[string]func(*rapid.T){
			"guests": func(t *rapid.T) {
				_ = d.SelectGuests(rapid.IntRange(-1, 12).Draw(t, "guests"), 10)
			},
			"date": func(t *rapid.T) {
				day := october.Days[rapid.IntRange(0, len(october.Days)-1).Draw(t, "day")]
				before := d.Date
				err := d.SelectDate(day)
				if !day.IsSelectable() {
					if !errors.Is(err, ErrDayNotSelectable) || !d.Date.Equal(before) {
						t.Fatalf("placeholder %s changed the draft (err=%v)", day.Key(), err)
					}
				}
			},
			"time": func(t *rapid.T) {
				raw := rapid.SampledFrom([]string{"18:30", "9:15", "", "25:61", "noon", "12:00"}).Draw(t, "time")
				_ = d.SetTime(raw)
			},
			"proceed": func(t *rapid.T) { _ = d.Proceed() },
			"submit": func(t *rapid.T) {
				if err := d.BeginSubmit(john); err == nil {
					if d.BeginSubmit(john) != ErrSubmissionInFlight {
						t.Fatal("second submission accepted while pending")
					}
					if rapid.Bool().Draw(t, "ok") {
						d.CompleteSubmit("BH-1", nil)
					} else {
						d.CompleteSubmit("", errors.New("backend down"))
					}
				}
			},
			"": func(t *rapid.T) {
				v := d.View()
				if v.TimeInputVisible != (d.Guests > 0 && d.HasDate()) {
					t.Fatalf("time input visible=%v with guests=%d date=%v", v.TimeInputVisible, d.Guests, d.HasDate())
				}
				if v.ProceedVisible != (v.TimeInputVisible && ValidTime(d.Time)) {
					t.Fatalf("proceed visible=%v with time=%q", v.ProceedVisible, d.Time)
				}
				if d.Time != "" && !d.HasDate() {
					t.Fatal("time set without a date")
				}
				if d.Contact != nil && (!d.HasDate() || d.Time == "") {
					t.Fatal("contact set before date and time")
				}
				r := d.Status.rank()
				if r < prevRank && (d.Status != StatusAwaitingTime || d.Time != "") {
					t.Fatalf("status moved backwards to %s", d.Status)
				}
				if v.FormVisible && !ValidTime(d.Time) {
					t.Fatalf("contact form visible with time=%q", d.Time)
				}
				if v.SubmitEnabled && !v.FormVisible {
					t.Fatal("submit enabled without the contact form")
				}
				prevRank = r
				if d.Status == StatusSubmitted || d.Status == StatusFailed {
					if !v.MessageVisible {
						t.Fatalf("no outcome message in %s", d.Status)
					}
				}
			},
		})
	})
}
