package dto

import (
	"fmt"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/days"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/reservation"
)

// Trip описывает параметры поездки в запросах создания и изменения брони.
// Даты передаются в формате YYYY-MM-DD.
type Trip struct {
	StartDate    string  `json:"start_date" validate:"required"`
	EndDate      string  `json:"end_date" validate:"required"`
	Adults       int     `json:"adults" validate:"gte=1,max=50"`
	Children     int     `json:"children" validate:"gte=0,max=49"`
	SpecialNeeds *string `json:"special_needs,omitempty" validate:"omitempty,max=1000"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Input превращает запрос в параметры менеджера броней.
func (t Trip) Input(packageID int64) (reservation.CreateInput, error) {
	start, err := days.Parse(t.StartDate)
	if err != nil {
		return reservation.CreateInput{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", models.ErrValidation)
	}
	end, err := days.Parse(t.EndDate)
	if err != nil {
		return reservation.CreateInput{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", models.ErrValidation)
	}
	return reservation.CreateInput{
		PackageID:    packageID,
		StartDate:    start,
		EndDate:      end,
		Adults:       t.Adults,
		Children:     t.Children,
		SpecialNeeds: t.SpecialNeeds,
		Notes:        t.Notes,
	}, nil
}
