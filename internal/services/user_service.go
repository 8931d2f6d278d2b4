package services

import (
	"context"

	"seatpool/internal/models"
	"seatpool/internal/repositories/interfaces"
	"seatpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=100"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,url"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
}

type UserService interface {
	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (map[string]interface{}, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *UpdateProfileRequest) (*models.User, error)
}

type userService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetProfile returns the public view of a user, suitable for showing to
// strangers browsing rides.
func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (map[string]interface{}, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}

	return s.userRepo.GetByID(ctx, userID)
}
