package schedule

import "sort"

// PositionedAppointment is an appointment placed on the rendering grid: the
// slot it starts in keys it, SpanSlots tells how many consecutive slots it
// visually occupies and Order resolves stacking when several appointments
// share a start slot.
type PositionedAppointment struct {
	Appointment Appointment `json:"appointment"`
	SpanSlots   int         `json:"span_slots"`
	Order       int         `json:"order"`
}

// Layout groups the given appointments by the slot in which they start. Every
// appointment appears under exactly one key, its start time truncated to the
// grid granularity, and is never duplicated into the slots it spans. Same-slot
// appointments are stacked in creation order. Appointments ending past the
// known slot sequence have their span clamped to the remaining slots.
func Layout(appointments []Appointment, slots []TimeOfDay, granularity int) map[TimeOfDay][]PositionedAppointment {
	if granularity <= 0 {
		granularity = DefaultGranularityMinutes
	}
	layout := make(map[TimeOfDay][]PositionedAppointment)
	if len(slots) == 0 {
		return layout
	}
	for _, appointment := range appointments {
		key := startSlotFor(appointment.StartTime, slots, granularity)
		layout[key] = append(layout[key], PositionedAppointment{
			Appointment: appointment,
			SpanSlots:   spanSlots(appointment, key, slots, granularity),
		})
	}
	for key, stack := range layout {
		sort.SliceStable(stack, func(i, j int) bool {
			return stack[i].Appointment.ID < stack[j].Appointment.ID
		})
		for order := range stack {
			stack[order].Order = order
		}
		layout[key] = stack
	}
	return layout
}

// startSlotFor resolves the slot an appointment belongs to. With a grid built
// by BuildSlots the truncated start always exists; against a narrower grid the
// appointment is kept on the nearest earlier slot instead of being dropped.
func startSlotFor(start TimeOfDay, slots []TimeOfDay, granularity int) TimeOfDay {
	truncated := start.Truncate(granularity)
	key := slots[0]
	for _, slot := range slots {
		if truncated.Before(slot) {
			break
		}
		key = slot
	}
	return key
}

// spanSlots counts the grid slots covered by [startSlot, end). An appointment
// ending exactly on a slot boundary does not bleed into that next slot, and
// the span never drops below one slot.
func spanSlots(appointment Appointment, startSlot TimeOfDay, slots []TimeOfDay, granularity int) int {
	end := appointment.EffectiveEnd(granularity)
	span := 0
	for _, slot := range slots {
		if slot.Before(startSlot) {
			continue
		}
		if !slot.Before(end) {
			break
		}
		span++
	}
	if span < 1 {
		span = 1
	}
	return span
}

// Position derives the absolute placement of an appointment for the day and
// week renderings: the offset from the top of the grid and the rendered
// height, both in pixels for the given row height.
func Position(appointment Appointment, dayStart TimeOfDay, granularity int, rowHeight float64) (top float64, height float64) {
	if granularity <= 0 {
		granularity = DefaultGranularityMinutes
	}
	end := appointment.EffectiveEnd(granularity)
	top = float64(appointment.StartTime.Minutes()-dayStart.Minutes()) / float64(granularity) * rowHeight
	height = float64(end.Minutes()-appointment.StartTime.Minutes()) / float64(granularity) * rowHeight
	if height < rowHeight {
		height = rowHeight
	}
	return top, height
}

// MonthCell bounds how many appointments a month cell shows inline. It
// returns the first maxInline appointments ordered by start time and creation
// order, plus how many remained hidden ("+K more").
func MonthCell(appointments []Appointment, maxInline int) ([]Appointment, int) {
	ordered := make([]Appointment, len(appointments))
	copy(ordered, appointments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartTime != ordered[j].StartTime {
			return ordered[i].StartTime.Before(ordered[j].StartTime)
		}
		return ordered[i].ID < ordered[j].ID
	})
	if maxInline < 0 {
		maxInline = 0
	}
	if len(ordered) <= maxInline {
		return ordered, 0
	}
	return ordered[:maxInline], len(ordered) - maxInline
}
