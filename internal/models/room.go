package models

import "time"

// RoomType classifies what a room can host.
type RoomType string

const (
	RoomTypeRegular RoomType = "REGULAR"
	RoomTypeLab     RoomType = "LAB"
	RoomTypeHall    RoomType = "HALL"
)

// Room represents a schedulable room. Practical sessions may only use
// lab-type rooms.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      RoomType  `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Building  string    `db:"building" json:"building"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BuildingPriority ranks buildings for room selection. Lower is better.
// Buildings not listed rank last.
var BuildingPriority = map[string]int{
	"Lab Block":      1,
	"Main Block":     2,
	"Academic Block": 3,
	"Admin Block":    4,
}

// PriorityRank returns the room's building rank for candidate ordering.
func (r *Room) PriorityRank() int {
	if rank, ok := BuildingPriority[r.Building]; ok {
		return rank
	}
	return len(BuildingPriority) + 1
}
