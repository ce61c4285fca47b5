package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSlot       = errors.New("slot is outside the garden grid")
	ErrSlotOccupied      = errors.New("slot already holds a flower")
	ErrUnknownFlowerType = errors.New("unknown flower type")
)

// GardenSlots is the fixed size of the planting grid.
const GardenSlots = 12

type FlowerType string

const (
	FlowerLeaf   FlowerType = "leaf"
	FlowerShrub  FlowerType = "shrub"
	FlowerFlower FlowerType = "flower"
)

// FlowerSpec is a catalog entry: what a flower looks like and what it
// costs to plant.
type FlowerSpec struct {
	Type  FlowerType `json:"type"`
	Emoji string     `json:"emoji"`
	Cost  int        `json:"cost"`
}

var flowerCatalog = map[FlowerType]FlowerSpec{
	FlowerLeaf:   {Type: FlowerLeaf, Emoji: "🌿", Cost: 5},
	FlowerShrub:  {Type: FlowerShrub, Emoji: "🌳", Cost: 50},
	FlowerFlower: {Type: FlowerFlower, Emoji: "🌷", Cost: 20},
}

// FlowerSpecFor looks up a catalog entry by type.
func FlowerSpecFor(t FlowerType) (FlowerSpec, error) {
	spec, ok := flowerCatalog[t]
	if !ok {
		return FlowerSpec{}, ErrUnknownFlowerType
	}
	return spec, nil
}

// FlowerCatalog returns the full price list in a stable order.
func FlowerCatalog() []FlowerSpec {
	return []FlowerSpec{
		flowerCatalog[FlowerLeaf],
		flowerCatalog[FlowerFlower],
		flowerCatalog[FlowerShrub],
	}
}

// PlantedFlower occupies one grid slot. Flowers are created by a
// successful plant transaction and never mutated or uprooted afterwards.
// At most one flower exists per (user, position).
type PlantedFlower struct {
	ID       string     `json:"id" db:"id"`
	UserID   string     `json:"user_id" db:"user_id"`
	Position int        `json:"position" db:"position"`
	Type     FlowerType `json:"flower_type" db:"flower_type"`
	Emoji    string     `json:"emoji" db:"emoji"`

	PlantedDate time.Time `json:"planted_date" db:"planted_date"`
}

func NewPlantedFlower(userID string, position int, spec FlowerSpec, now time.Time) (*PlantedFlower, error) {
	if position < 0 || position >= GardenSlots {
		return nil, ErrInvalidSlot
	}

	return &PlantedFlower{
		ID:          uuid.NewString(),
		UserID:      userID,
		Position:    position,
		Type:        spec.Type,
		Emoji:       spec.Emoji,
		PlantedDate: now,
	}, nil
}
