package schedule

import "sort"

// Default rendering grid. The defaults follow the clinic business hours and
// can be changed per deployment through the configuration file.
const (
	DefaultGranularityMinutes = 30
	DefaultDayStart           = TimeOfDay(8 * 60)  // 08:00
	DefaultDayEnd             = TimeOfDay(21 * 60) // 21:00
)

// BuildSlots produces the ordered sequence of slot start times a calendar view
// must render: the fixed-granularity sequence from dayStart through dayEnd,
// both inclusive, widened with extra granularity-aligned slots whenever an
// appointment starts or ends outside the nominal hours. The sequence is
// recomputed on every call; the appointment set is its only variable input and
// may change between renders, so nothing is cached.
func BuildSlots(appointments []Appointment, granularity int, dayStart, dayEnd TimeOfDay) []TimeOfDay {
	if granularity <= 0 {
		granularity = DefaultGranularityMinutes
	}
	known := make(map[TimeOfDay]struct{})
	slots := make([]TimeOfDay, 0, (dayEnd.Minutes()-dayStart.Minutes())/granularity+1)
	for slot := dayStart; !slot.After(dayEnd); slot = slot.Add(granularity) {
		known[slot] = struct{}{}
		slots = append(slots, slot)
	}
	for _, appointment := range appointments {
		end := appointment.EffectiveEnd(granularity)
		for slot := appointment.StartTime.Truncate(granularity); slot.Before(end); slot = slot.Add(granularity) {
			if _, exists := known[slot]; exists {
				continue
			}
			known[slot] = struct{}{}
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// DefaultCatalog enumerates the bookable start times offered to patients: one
// per granularity step within business hours. Bookability checks never invent
// times beyond this catalog; grid widening is purely a rendering concern.
func DefaultCatalog(granularity int, dayStart, dayEnd TimeOfDay) []TimeOfDay {
	if granularity <= 0 {
		granularity = DefaultGranularityMinutes
	}
	catalog := make([]TimeOfDay, 0, (dayEnd.Minutes()-dayStart.Minutes())/granularity+1)
	for slot := dayStart; !slot.After(dayEnd); slot = slot.Add(granularity) {
		catalog = append(catalog, slot)
	}
	return catalog
}
