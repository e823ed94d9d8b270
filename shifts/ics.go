package shifts

import (
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"
)

const productID = "-//nightwatch//nursepay//EN"

// WriteICS writes the shifts as an iCalendar feed so nurses and families can
// subscribe from their phone calendar. Cancelled shifts are left out.
func WriteICS(w io.Writer, calendarName string, list []Shift) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	if calendarName != "" {
		cal.Props.SetText("X-WR-CALNAME", calendarName)
	}

	for _, s := range list {
		if s.Status == StatusCancelled {
			continue
		}
		stamp := s.CreatedAt
		if stamp.IsZero() {
			stamp = time.Now()
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, s.ID+"@nursepay")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, s.Start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, s.End.UTC())
		event.Props.SetText(ical.PropSummary, summary(s))
		if s.Notes != "" {
			event.Props.SetText(ical.PropDescription, s.Notes)
		}
		if s.Status == StatusCompleted {
			event.Props.SetText(ical.PropStatus, "CONFIRMED")
		} else {
			event.Props.SetText(ical.PropStatus, "TENTATIVE")
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func summary(s Shift) string {
	title := "Night shift"
	if s.Twins {
		title = "Night shift (twins)"
	}
	if s.FamilyID != "" {
		title += " - " + s.FamilyID
	}
	return title
}
