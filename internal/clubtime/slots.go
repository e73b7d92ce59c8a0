package clubtime

// The daily schedule is a fixed grid of nine 90-minute slots across four
// courts. Slot indices are 1-based and stable; only the index is persisted.
const (
	SlotCount  = 9
	CourtCount = 4
)

type slotTimes struct {
	start string
	end   string
	label string
}

var slotGrid = [SlotCount]slotTimes{
	{"08:30", "10:00", "8:30 - 10:00 am"},
	{"10:00", "11:30", "10:00 - 11:30 am"},
	{"11:30", "13:00", "11:30 - 1:00 pm"},
	{"13:00", "14:30", "1:00 - 2:30 pm"},
	{"14:30", "16:00", "2:30 - 4:00 pm"},
	{"16:00", "17:30", "4:00 - 5:30 pm"},
	{"17:30", "19:00", "5:30 - 7:00 pm"},
	{"19:00", "20:30", "7:00 - 8:30 pm"},
	{"20:30", "22:00", "8:30 - 10:00 pm"},
}

// ValidSlot reports whether slot is a valid 1-based slot index.
func ValidSlot(slot int) bool {
	return slot >= 1 && slot <= SlotCount
}

// ValidCourt reports whether court is a valid court number.
func ValidCourt(court int) bool {
	return court >= 1 && court <= CourtCount
}

// SlotStart returns the HH:MM local start of the given slot index.
func SlotStart(slot int) string {
	return slotGrid[slot-1].start
}

// SlotEnd returns the HH:MM local end of the given slot index.
func SlotEnd(slot int) string {
	return slotGrid[slot-1].end
}

// SlotLabel returns the display label of the given slot index.
func SlotLabel(slot int) string {
	return slotGrid[slot-1].label
}
