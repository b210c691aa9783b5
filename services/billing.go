package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"gymdesk/models"
)

// ValidatePlan trims the plan name and features and checks the numeric fields.
func ValidatePlan(p *models.Plan) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > 255 {
		return errors.New("name is required and must be under 255 chars")
	}
	if p.DurationMonths <= 0 {
		return errors.New("duration must be a positive number of months")
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return errors.New("price must be non-negative")
	}

	features := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	p.Features = features
	return nil
}

// ApplyPlan moves the member onto p starting at start.
func ApplyPlan(u *models.User, p models.Plan, start time.Time) {
	end := start.AddDate(0, p.DurationMonths, 0)
	u.CurrentPlan = p.Name
	u.PlanStartDate = start
	u.PlanEndDate = &end
}

// DaysBetween counts whole days from a to b, negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}
