package handlers

import (
	"seatpool/internal/services"
	"seatpool/internal/utils"
	"seatpool/internal/validators"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// CreateReview rates a driver after a ride
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request services.CreateReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), reviewerID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review created successfully", review)
}

// GetDriverReviews lists reviews for a driver
func (h *ReviewHandler) GetDriverReviews(c *gin.Context) {
	driverID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.GetDriverReviews(c.Request.Context(), driverID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(reviews),
	}
	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, meta)
}

// GetRideReviews lists reviews on a ride
func (h *ReviewHandler) GetRideReviews(c *gin.Context) {
	rideID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetRideReviews(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reviews retrieved successfully", reviews)
}
