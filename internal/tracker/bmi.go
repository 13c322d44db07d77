// ABOUTME: Body mass index from the latest weight and height readings.
// ABOUTME: Classifies the unrounded value into the standard adult bands.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
)

var (
	// ErrInsufficientData means a weight or height reading is missing.
	ErrInsufficientData = errors.New("weight and height readings are required")
	// ErrInvalidHeight means the latest height is not positive.
	ErrInvalidHeight = errors.New("latest height is not a positive value")
)

// Style tiers for presenting a BMI category.
const (
	StyleInfo    = "info"
	StyleWarning = "warning"
	StyleDanger  = "danger"
)

// BMIResult is a computed BMI with the readings it came from.
type BMIResult struct {
	Value    float64
	Display  string
	Category string
	Style    string
	WeightKg float64
	HeightCm float64
	WeightAt time.Time
	HeightAt time.Time
}

// ClassifyBMI returns the category and style tier for bmi.
func ClassifyBMI(bmi float64) (category, style string) {
	switch {
	case bmi < 18.5:
		return "Underweight", StyleWarning
	case bmi < 25:
		return "Healthy weight", StyleInfo
	case bmi < 30:
		return "Overweight", StyleWarning
	case bmi < 35:
		return "Obesity Class I", StyleDanger
	case bmi < 40:
		return "Obesity Class II", StyleDanger
	default:
		return "Obesity Class III (severe)", StyleDanger
	}
}

// ComputeBMI derives the BMI of userID from their latest weight and height.
func (s *Service) ComputeBMI(ctx context.Context, userID uuid.UUID) (*BMIResult, error) {
	weight, err := s.latest(ctx, userID, models.KindWeight)
	if err != nil {
		return nil, err
	}
	height, err := s.latest(ctx, userID, models.KindHeight)
	if err != nil {
		return nil, err
	}

	cm := height.Value()
	if cm <= 0 {
		return nil, ErrInvalidHeight
	}

	meters := cm / 100
	bmi := weight.Value() / (meters * meters)
	category, style := ClassifyBMI(bmi)

	return &BMIResult{
		Value:    bmi,
		Display:  fmt.Sprintf("%.2f", bmi),
		Category: category,
		Style:    style,
		WeightKg: weight.Value(),
		HeightCm: cm,
		WeightAt: weight.Timestamp,
		HeightAt: height.Timestamp,
	}, nil
}

func (s *Service) latest(ctx context.Context, userID uuid.UUID, kind models.Kind) (*models.Measurement, error) {
	m, err := s.repo.LatestMeasurement(ctx, userID, kind)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInsufficientData
	}
	if err != nil {
		return nil, s.fail("latest "+string(kind), err)
	}
	return m, nil
}
