package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viera97/calendar-appointments/internal/catalog"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/utils"
)

// Generate computes the candidate slots of a service on a date.
// Starts step by granularityMin from the opening hour and are kept only when
// the service ends no later than closing. A nil or mismatching service, a
// non-positive granularity or invalid hours yield no slots.
func Generate(serviceID, date string, svc *models.Service, hours models.BusinessHours, granularityMin int, policy Policy) []models.TimeSlot {
	if svc == nil || svc.ID != serviceID || svc.DurationMin <= 0 {
		return []models.TimeSlot{}
	}
	if granularityMin <= 0 || hours.Validate() != nil {
		return []models.TimeSlot{}
	}
	if policy == nil {
		policy = AllAvailable()
	}

	closing := hours.CloseMinutes()
	result := []models.TimeSlot{}
	for start := hours.OpenMinutes(); start < closing; start += granularityMin {
		end := start + svc.DurationMin
		if end > closing {
			break
		}
		t := utils.FormatMinutes(start)
		result = append(result, models.TimeSlot{
			ID:        fmt.Sprintf("%s-%s-%s", serviceID, date, t),
			Time:      t,
			Available: policy.Available(Window{Date: date, Start: start, End: end}),
			ServiceID: serviceID,
			Date:      date,
		})
	}
	return result
}

// Available filters the bookable slots.
func Available(slots []models.TimeSlot) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the slot starting at t.
func Find(slots []models.TimeSlot, t string) (models.TimeSlot, bool) {
	for _, s := range slots {
		if s.Time == t {
			return s, true
		}
	}
	return models.TimeSlot{}, false
}

// Generator produces slots for services looked up in a catalog.
type Generator struct {
	services    catalog.Catalog
	hours       models.BusinessHours
	granularity int
	policies    PolicySource
	loc         *time.Location
	now         func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock sets the clock used to hide slots that already started today.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLocation sets the business timezone.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

// NewGenerator creates a Generator. A nil policy source makes every slot available.
func NewGenerator(services catalog.Catalog, hours models.BusinessHours, granularityMin int, policies PolicySource, opts ...Option) *Generator {
	if policies == nil {
		policies = Static(AllAvailable())
	}
	g := &Generator{
		services:    services,
		hours:       hours,
		granularity: granularityMin,
		policies:    policies,
		loc:         time.Local,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Slots returns the slots of serviceID on date. An unknown service yields an empty list.
func (g *Generator) Slots(ctx context.Context, serviceID, date string) ([]models.TimeSlot, error) {
	svc, err := g.services.Service(ctx, serviceID)
	if errors.Is(err, catalog.ErrUnknownService) {
		return []models.TimeSlot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up service %s: %w", serviceID, err)
	}

	policy, err := g.policies.PolicyFor(ctx, date)
	if err != nil {
		return nil, err
	}

	return Generate(serviceID, date, &svc, g.hours, g.granularity, All(policy, Cutoff(g.now(), g.loc))), nil
}

// Hours returns the business hours the generator works with.
func (g *Generator) Hours() models.BusinessHours {
	return g.hours
}
