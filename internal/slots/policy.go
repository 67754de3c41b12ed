package slots

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/viera97/calendar-appointments/internal/catalog"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/utils"
)

// Window is the half-open interval [Start, End) in minutes from midnight on Date.
type Window struct {
	Date  string
	Start int
	End   int
}

// Policy decides whether a candidate window can be booked.
type Policy interface {
	Available(w Window) bool
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(w Window) bool

func (f PolicyFunc) Available(w Window) bool { return f(w) }

// AllAvailable marks every window as bookable.
func AllAvailable() Policy {
	return PolicyFunc(func(Window) bool { return true })
}

// DenyList marks windows starting at one of the given HH:MM times as occupied.
func DenyList(times ...string) Policy {
	occupied := make(map[int]bool, len(times))
	for _, t := range times {
		if m, err := utils.ParseTimeToMinutes(t); err == nil {
			occupied[m] = true
		}
	}
	return PolicyFunc(func(w Window) bool { return !occupied[w.Start] })
}

// Random marks roughly rate of all windows as available. A nil r uses a time seeded source.
func Random(rate float64, r *rand.Rand) Policy {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return PolicyFunc(func(Window) bool { return r.Float64() < rate })
}

// All is available only when every policy agrees.
func All(policies ...Policy) Policy {
	return PolicyFunc(func(w Window) bool {
		for _, p := range policies {
			if p != nil && !p.Available(w) {
				return false
			}
		}
		return true
	})
}

// Cutoff marks windows that already started, relative to now in loc, as unavailable.
func Cutoff(now time.Time, loc *time.Location) Policy {
	local := now.In(loc)
	today := local.Format(constants.DateFormat)
	minute := local.Hour()*60 + local.Minute()
	return PolicyFunc(func(w Window) bool {
		if w.Date < today {
			return false
		}
		return w.Date > today || w.Start > minute
	})
}

type interval struct {
	start int
	end   int
}

// Ledger marks windows overlapping a scheduled appointment as occupied.
// durations maps service ids to minutes; unknown services count as FallbackDurationMin.
func Ledger(appointments []models.Appointment, durations map[string]int) Policy {
	busy := make(map[string][]interval)
	for _, appt := range appointments {
		if appt.Status != models.StatusScheduled {
			continue
		}
		start, err := utils.ParseTimeToMinutes(appt.Time)
		if err != nil {
			continue
		}
		d, ok := durations[appt.ServiceID]
		if !ok || d <= 0 {
			d = constants.FallbackDurationMin
		}
		busy[appt.Date] = append(busy[appt.Date], interval{start: start, end: start + d})
	}

	return PolicyFunc(func(w Window) bool {
		for _, b := range busy[w.Date] {
			// [w.Start,w.End) overlaps [b.start,b.end) iff w.Start < b.end && b.start < w.End
			if w.Start < b.end && b.start < w.End {
				return false
			}
		}
		return true
	})
}

// PolicySource yields the policy that applies to a date.
type PolicySource interface {
	PolicyFor(ctx context.Context, date string) (Policy, error)
}

type staticSource struct{ p Policy }

func (s staticSource) PolicyFor(context.Context, string) (Policy, error) { return s.p, nil }

// Static wraps a fixed policy as a PolicySource.
func Static(p Policy) PolicySource {
	return staticSource{p: p}
}

// AppointmentLister is implemented by the local record stores.
type AppointmentLister interface {
	GetAppointments() ([]models.Appointment, error)
}

// LedgerSource builds a Ledger policy from the booked appointments at query time.
type LedgerSource struct {
	Store    AppointmentLister
	Services catalog.Catalog
	// ExcludeID leaves one appointment out of the ledger, used when rescheduling it.
	ExcludeID string
}

func (s LedgerSource) PolicyFor(ctx context.Context, date string) (Policy, error) {
	appts, err := s.Store.GetAppointments()
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	sameDay := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Date == date && a.ID != s.ExcludeID {
			sameDay = append(sameDay, a)
		}
	}

	durations := map[string]int{}
	if s.Services != nil && len(sameDay) > 0 {
		services, err := s.Services.Services(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load services: %w", err)
		}
		for _, svc := range services {
			durations[svc.ID] = svc.DurationMin
		}
	}

	return Ledger(sameDay, durations), nil
}

// SourceFromSettings picks the availability policy named in the settings.
func SourceFromSettings(settings models.Settings, store AppointmentLister, services catalog.Catalog, r *rand.Rand) (PolicySource, error) {
	switch settings.AvailabilityPolicy {
	case "", constants.PolicyLedger:
		return LedgerSource{Store: store, Services: services}, nil
	case constants.PolicyDenyList:
		return Static(DenyList(settings.DenyList...)), nil
	case constants.PolicyRandom:
		return Static(Random(settings.RandomAvailability, r)), nil
	case constants.PolicyOpen:
		return Static(AllAvailable()), nil
	default:
		return nil, fmt.Errorf("unknown availability policy %q", settings.AvailabilityPolicy)
	}
}
