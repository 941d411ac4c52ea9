package rooms

import (
	"time"
)

// Room is a named, independent planning surface. Every room carries its own
// task set, engine and persistence namespace.
type Room struct {
	Code      string    `json:"code" bson:"_id" validate:"required,max=64"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
