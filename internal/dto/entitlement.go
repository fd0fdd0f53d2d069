package dto

import "time"

type EntitlementResponseDTO struct {
	Status     string     `json:"status" example:"active"`
	Plan       string     `json:"plan,omitempty" example:"pro_monthly"`
	PeriodEnd  *time.Time `json:"periodEnd,omitempty" example:"2024-11-01T00:00:00Z"`
	Premium    bool       `json:"premium" example:"true"`
	GraceUntil *time.Time `json:"graceUntil,omitempty"`
}
