package checkpoint

// Meta describes one scheduled intraday capture slot (time in IST)
type Meta struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Time  string `json:"time"`
}

// Checkpoints are the seven Indian market capture slots
var Checkpoints = []Meta{
	{ID: "0915", Label: "Market Open", Time: "09:15"},
	{ID: "0930", Label: "Opening Range", Time: "09:30"},
	{ID: "1000", Label: "Morning Trend", Time: "10:00"},
	{ID: "1130", Label: "Mid-Morning", Time: "11:30"},
	{ID: "1300", Label: "Lunch Lull", Time: "13:00"},
	{ID: "1400", Label: "Afternoon Setup", Time: "14:00"},
	{ID: "1500", Label: "Power Hour", Time: "15:00"},
}

// ValidID reports whether id names a known checkpoint slot
func ValidID(id string) bool {
	for _, cp := range Checkpoints {
		if cp.ID == id {
			return true
		}
	}
	return false
}

// ValidIDs returns the sorted list of known checkpoint ids
func ValidIDs() []string {
	ids := make([]string, 0, len(Checkpoints))
	for _, cp := range Checkpoints {
		ids = append(ids, cp.ID)
	}
	return ids
}
