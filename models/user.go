package models

import (
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "Paid"
	FeeStatusPending FeeStatus = "Pending"
)

func (s FeeStatus) Valid() bool {
	return s == FeeStatusPaid || s == FeeStatusPending
}

const (
	DefaultPlanName = "Trial Plan"
	// DefaultPlanPeriod is assumed when a member has no plan end date.
	DefaultPlanPeriod = 30 * 24 * time.Hour
)

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	FeeStatus     FeeStatus  `json:"feeStatus"`
	CurrentPlan   string     `json:"currentPlan"`
	PlanStartDate time.Time  `json:"planStartDate"`
	PlanEndDate   *time.Time `json:"planEndDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// EffectivePlanEndDate returns the stored end date, or start + 30 days.
func (u User) EffectivePlanEndDate() time.Time {
	if u.PlanEndDate != nil {
		return *u.PlanEndDate
	}
	return u.PlanStartDate.Add(DefaultPlanPeriod)
}
