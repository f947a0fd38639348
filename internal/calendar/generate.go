// Package calendar publishes the upcoming New Year instants of every region as an
// iCalendar feed.
package calendar

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/greetings"
	"github.com/tartampluch/go-countdown/internal/region"
)

// Generator renders the calendar of a region list.
type Generator struct {
	Regions []region.Region

	// AlarmTrigger is an ISO 8601 duration (e.g. "-PT10M"). Empty disables alarms.
	AlarmTrigger string
}

// Generate builds a VCALENDAR with one VEVENT per region, starting at the UTC
// instant of the region's next New Year and lasting the celebration window.
func (g *Generator) Generate(now time.Time, l *greetings.Localizer) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)

	// Set name manually to avoid "VALUE=TEXT" param
	nameProp := ical.NewProp(config.PropXWRCalName)
	nameProp.Value = l.Text(config.TKeyCalName, config.FallbackCalName)
	cal.Props.Set(nameProp)

	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, r := range g.Regions {
		loc, err := region.Location(r.Timezone)
		if err != nil {
			slog.Debug(config.MsgEntryOmitted,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyCode, r.Code,
				config.LogKeyError, err,
			)
			continue
		}

		event := g.createEvent(r, engine.NextNewYear(loc, now), l)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	// An empty VCALENDAR still has to be a valid object for clients.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyLang, l.Lang(),
		config.LogKeyCount, len(cal.Children),
	)
	return buf.Bytes(), nil
}

// createEvent expects start in the region's zone, so its Year is the local year.
func (g *Generator) createEvent(r region.Region, start time.Time, l *greetings.Localizer) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, UID(r.Code, start.Year()))

	summary := l.Name(config.TKeyEvtSummary, config.FallbackEvtSummary, r.Name)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropLocation, r.Timezone)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDateTime(start.UTC())
	event.Props.Set(dtStartProp)

	durationProp := ical.NewProp(config.PropDuration)
	durationProp.SetDuration(config.CelebrationWindow)
	event.Props.Set(durationProp)

	if g.AlarmTrigger != "" {
		addAlarm(event, g.AlarmTrigger, l.Name(config.TKeyEvtAlarm, config.FallbackEvtAlarm, r.Name))
	}
	return event
}

// UID is stable for a region and year so that clients update events in place
// across refreshes.
func UID(code string, year int) string {
	input := fmt.Sprintf(config.FormatHashInput, code, year, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), year, config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
