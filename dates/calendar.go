package dates

// MonthDays returns every day of the month containing ref, in order.
func MonthDays(ref Date) []Date {
	return Period{Start: StartOfMonth(ref), End: EndOfMonth(ref)}.Days()
}

// MonthGrid returns the calendar cells for the month containing ref.
// The week starts on Sunday: the slice is prefixed with zero Dates so the
// first day of the month lands on its weekday column. Pure function of ref.
func MonthGrid(ref Date) []Date {
	first := StartOfMonth(ref)
	cells := make([]Date, 0, 31+6)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, Date{})
	}
	return append(cells, MonthDays(ref)...)
}
