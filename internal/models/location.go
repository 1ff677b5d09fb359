package models

// GeoPoint is a GeoJSON point as stored by MongoDB 2dsphere indexes.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"omitempty,len=2"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
	}
}

// Origin is the default ride location before the first tracking update.
func Origin() GeoPoint {
	return NewGeoPoint(0, 0)
}
