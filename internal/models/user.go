package models

// UserRecord is the registry entry for one chat user. Nil coordinates mean
// the user followed the bot but has not shared a location yet.
type UserRecord struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
}

// NewUserRecord builds a record with known coordinates
func NewUserRecord(lat, lon float64) UserRecord {
	return UserRecord{Latitude: &lat, Longitude: &lon}
}

// HasLocation reports whether both coordinates are present
func (u UserRecord) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
