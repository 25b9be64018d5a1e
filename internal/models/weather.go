package models

// ConditionUnknown is the condition label of a sentinel Snapshot
const ConditionUnknown = "unknown"

// Snapshot is one current-conditions reading. OK is false when the reading
// is the sentinel returned after a failed fetch.
type Snapshot struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
	TempMax     float64 `json:"temp_max"`
	TempMin     float64 `json:"temp_min"`
	OK          bool    `json:"ok"`
}

// UnknownSnapshot returns the sentinel reading
func UnknownSnapshot() Snapshot {
	return Snapshot{Condition: ConditionUnknown, Description: ConditionUnknown}
}
