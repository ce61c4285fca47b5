package services

import (
	"context"
	"errors"

	"github.com/grovelab/grove-engine/internal/core/domain"
)

type GardenService struct {
	gardenRepo domain.GardenRepository
	userRepo   domain.UserRepository
	atomic     domain.Atomic
	clock      domain.Clock
}

func NewGardenService(gardenRepo domain.GardenRepository, userRepo domain.UserRepository, atomic domain.Atomic, clock domain.Clock) *GardenService {
	return &GardenService{
		gardenRepo: gardenRepo,
		userRepo:   userRepo,
		atomic:     atomic,
		clock:      clock,
	}
}

type GardenView struct {
	TotalSlots int                     `json:"total_slots"`
	Planted    int                     `json:"planted"`
	Flowers    []*domain.PlantedFlower `json:"flowers"`
}

func (s *GardenService) View(ctx context.Context, userID string) (*GardenView, error) {
	flowers, err := s.gardenRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GardenView{
		TotalSlots: domain.GardenSlots,
		Planted:    len(flowers),
		Flowers:    flowers,
	}, nil
}

type PlantResult struct {
	Flower   *domain.PlantedFlower
	Diamonds int
}

// Plant buys a flower from the catalog and puts it in an empty slot.
// Precondition checks run in order: slot bounds, slot occupancy, wallet
// balance. The debit and the new flower commit together; any failed
// precondition leaves both the wallet and the garden untouched.
func (s *GardenService) Plant(ctx context.Context, userID string, slot int, flowerType domain.FlowerType) (*PlantResult, error) {
	spec, err := domain.FlowerSpecFor(flowerType)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var result *PlantResult
	err = s.atomic.RunAtomic(ctx, func(ctx context.Context) error {
		flower, err := domain.NewPlantedFlower(userID, slot, spec, now)
		if err != nil {
			return err
		}

		_, err = s.gardenRepo.GetBySlot(ctx, userID, slot)
		if err == nil {
			return domain.ErrSlotOccupied
		}
		if !errors.Is(err, domain.ErrFlowerNotFound) {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := user.Debit(spec.Cost); err != nil {
			return err
		}

		if err := s.gardenRepo.Create(ctx, flower); err != nil {
			return err
		}
		if err := s.userRepo.UpdateWallet(ctx, user); err != nil {
			return err
		}

		result = &PlantResult{Flower: flower, Diamonds: user.Diamonds}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
