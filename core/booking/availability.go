package booking

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that only share an endpoint do not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ComputeAvailability partitions the business day (09:00-18:00) of the given
// date into nine contiguous one-hour slots and marks each one available
// unless it overlaps an approved booking or the resource itself is out of
// service. The result always has exactly 9 slots in chronological order.
func ComputeAvailability(res Resource, date time.Time, approved []Booking) []TimeSlot {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	slots := make([]TimeSlot, 0, BusinessCloseHour-BusinessOpenHour)
	for hour := BusinessOpenHour; hour < BusinessCloseHour; hour++ {
		slotStart := day.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)

		free := true
		for _, b := range approved {
			if b.OverlapsInterval(slotStart, slotEnd) {
				free = false
				break
			}
		}

		slots = append(slots, TimeSlot{
			StartTime:   slotStart.Format("15:04"),
			EndTime:     slotEnd.Format("15:04"),
			IsAvailable: free && res.Status == ResourceAvailable,
		})
	}
	return slots
}
