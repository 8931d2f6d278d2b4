package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"seatpool/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validation functions
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("currency_code", validateCurrencyCode)
	validate.RegisterValidation("license_plate", validateLicensePlate)
	validate.RegisterValidation("future_date", validateFutureDate)
	validate.RegisterValidation("fare_amount", validateFareAmount)
	validate.RegisterValidation("seat_count", validateSeatCount)
}

// Common validation errors
var (
	ErrInvalidObjectID     = errors.New("invalid object ID format")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidLicensePlate = errors.New("invalid license plate format")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidFareAmount   = errors.New("invalid fare amount")
	ErrInvalidSeatCount    = errors.New("invalid seat count")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "currency_code":
		return "Invalid currency code"
	case "license_plate":
		return "Invalid license plate format"
	case "future_date":
		return "Date must be in the future"
	case "fare_amount":
		return fmt.Sprintf("Fare must be between %.2f and %.2f", utils.MinFarePerSeat, utils.MaxFarePerSeat)
	case "seat_count":
		return fmt.Sprintf("Seats must be between 1 and %d", utils.MaxSeatsPerRide)
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// Custom validation functions
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" {
		return true
	}
	validCurrencies := []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CNY", "INR", "BRL", "MXN"}

	for _, currency := range validCurrencies {
		if code == currency {
			return true
		}
	}
	return false
}

func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if plate == "" {
		return true
	}

	// Basic license plate validation - can be customized per region
	plateRegex := regexp.MustCompile(`^[A-Z0-9\-\s]{2,10}$`)
	return plateRegex.MatchString(strings.ToUpper(plate))
}

func validateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return date.After(time.Now())
}

func validateFareAmount(fl validator.FieldLevel) bool {
	fare := fl.Field().Float()
	return fare >= utils.MinFarePerSeat && fare <= utils.MaxFarePerSeat
}

func validateSeatCount(fl validator.FieldLevel) bool {
	seats := fl.Field().Int()
	return seats >= 1 && seats <= utils.MaxSeatsPerRide
}
