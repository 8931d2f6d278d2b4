package services

import (
	"context"
	"fmt"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateVehicleRequest struct {
	Make         string `json:"make" validate:"required,max=50"`
	Model        string `json:"model" validate:"required,max=50"`
	Color        string `json:"color" validate:"max=30"`
	LicensePlate string `json:"license_plate" validate:"required,license_plate"`
	Seats        int    `json:"seats" validate:"required,seat_count"`
}

type VehicleService interface {
	CreateVehicle(ctx context.Context, ownerID primitive.ObjectID, req *CreateVehicleRequest) (*models.Vehicle, error)
	GetOwnerVehicles(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID, ownerID primitive.ObjectID) error
}

type vehicleService struct {
	vehicleRepo interfaces.VehicleRepository
	logger      *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, logger *logger.Logger) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		logger:      logger,
	}
}

func (s *vehicleService) CreateVehicle(ctx context.Context, ownerID primitive.ObjectID, req *CreateVehicleRequest) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		OwnerID:      ownerID,
		Make:         req.Make,
		Model:        req.Model,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		Seats:        req.Seats,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.WithUserID(ownerID).Info("vehicle registered")

	return vehicle, nil
}

func (s *vehicleService) GetOwnerVehicles(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Vehicle, error) {
	return s.vehicleRepo.GetByOwner(ctx, ownerID)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, vehicleID, ownerID primitive.ObjectID) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.OwnerID != ownerID {
		return fmt.Errorf("vehicle belongs to another user: %w", models.ErrForbidden)
	}

	return s.vehicleRepo.Delete(ctx, vehicleID)
}
