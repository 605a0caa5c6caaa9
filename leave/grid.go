package leave

import "github.com/warp/leave-composer/generic"

// =============================================================================
// MONTH GRID BUILDER
// =============================================================================

// GridInput is everything a month grid is derived from. BuildGrid keeps no
// state, so the grid can be rebuilt on every render.
type GridInput struct {
	Month      generic.TimePoint
	Draft      *DateRange
	Booked     []LeaveRequestItem
	Categories CategoryTable
	Today      generic.TimePoint

	// Hover is a rendering hint only: while the draft has no end it shades
	// the provisional span up to the hovered date.
	Hover *generic.TimePoint
}

// BookedHalves describes the booked part of a cell.
type BookedHalves struct {
	AM          bool          `json:"am"`
	PM          bool          `json:"pm"`
	LeaveTypeID string        `json:"leave_type_id,omitempty"`
	Category    LeaveCategory `json:"category,omitempty"`
}

// DayCell is one square of the calendar.
type DayCell struct {
	Date        generic.TimePoint `json:"date"`
	InMonth     bool              `json:"in_month"`
	IsToday     bool              `json:"is_today"`
	IsWeekend   bool              `json:"is_weekend"`
	Interactive bool              `json:"interactive"`

	Booked BookedHalves `json:"booked"`

	// Selected halves never overlap booked halves.
	SelectedAM bool `json:"selected_am"`
	SelectedPM bool `json:"selected_pm"`

	InRange bool `json:"in_range"`
}

// MonthGrid is a Monday-first grid of whole weeks covering one month.
type MonthGrid struct {
	Month generic.TimePoint `json:"month"`
	Cells []DayCell         `json:"cells"`
}

// Weeks slices the cells into rows of seven.
func (g MonthGrid) Weeks() [][]DayCell {
	var weeks [][]DayCell
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// BuildGrid expands the month containing in.Month into whole weeks from the
// Monday on or before the 1st to the Sunday on or after the last day.
func BuildGrid(in GridInput) MonthGrid {
	monthStart := generic.StartOfMonth(in.Month.Year(), in.Month.Month())
	monthEnd := generic.EndOfMonth(in.Month.Year(), in.Month.Month())
	first := generic.StartOfWeek(monthStart)
	last := generic.EndOfWeek(monthEnd)

	cells := make([]DayCell, 0, generic.DaysBetween(first, last)+1)
	for day := first; day.BeforeOrEqual(last); day = day.AddDays(1) {
		cells = append(cells, buildCell(in, monthStart, day))
	}
	return MonthGrid{Month: monthStart, Cells: cells}
}

func buildCell(in GridInput, monthStart, day generic.TimePoint) DayCell {
	booked := CombineBooked(in.Booked, day)
	cell := DayCell{
		Date:        day,
		InMonth:     day.SameMonth(monthStart),
		IsToday:     day.Equal(in.Today),
		IsWeekend:   day.IsWeekend(),
		Interactive: day.IsWorkday(),
		Booked: BookedHalves{
			AM:          booked.AM,
			PM:          booked.PM,
			LeaveTypeID: booked.LeaveTypeID,
		},
	}
	if booked.LeaveTypeID != "" {
		cell.Booked.Category = in.Categories.Category(booked.LeaveTypeID)
	}

	if in.Draft == nil {
		return cell
	}

	selected := OccupancyOf(*in.Draft, day)
	cell.SelectedAM = selected.AM && !booked.AM
	cell.SelectedPM = selected.PM && !booked.PM
	cell.InRange = selected.FullyInRange

	if !cell.InRange && in.Draft.IsOpen() && in.Hover != nil {
		from := in.Draft.From
		cell.InRange = day.After(from) && day.BeforeOrEqual(*in.Hover)
	}
	return cell
}
