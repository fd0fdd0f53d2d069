package dto

import "time"

type BalanceResponseDTO struct {
	Stacks int64 `json:"stacks" example:"20"`
}

type SpendRequestDTO struct {
	Amount      int64  `json:"amount" validate:"gte=1" example:"5"`
	Operation   string `json:"operation" validate:"omitempty,max=64" example:"ASK_QUESTION"`
	Description string `json:"description" validate:"max=500" example:"Asked a question"`
}

type SpendResponseDTO struct {
	Success         bool  `json:"success" example:"true"`
	RemainingStacks int64 `json:"remainingStacks" example:"15"`
}

// InsufficientStacksDTO is the 402 body of a rejected charge.
type InsufficientStacksDTO struct {
	Success   bool   `json:"success" example:"false"`
	Code      string `json:"code" example:"INSUFFICIENT_STACKS"`
	Error     string `json:"error" example:"insufficient balance: available 15, required 20"`
	Available int64  `json:"available" example:"15"`
	Required  int64  `json:"required" example:"20"`
}

type TransactionResponseDTO struct {
	ID               string    `json:"id" example:"01920c4e-8d2a-7b3c-9f1e-5a6b7c8d9e0f"`
	Delta            int64     `json:"delta" example:"-5"`
	ResultingBalance int64     `json:"resultingBalance" example:"15"`
	Operation        string    `json:"operation" example:"spend"`
	Description      string    `json:"description" example:"ASK_QUESTION"`
	CreatedAt        time.Time `json:"created_at" example:"2024-10-01T16:09:57Z"`
}

type GrantRequestDTO struct {
	AccountID string            `json:"accountId" validate:"required,accountid" example:"user_2abc"`
	Amount    int64             `json:"amount" validate:"gte=1" example:"100"`
	Operation string            `json:"operation" validate:"omitempty,oneof=grant refund credit_purchase subscription_bonus" example:"grant"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type GrantResponseDTO struct {
	Success    bool  `json:"success" example:"true"`
	NewBalance int64 `json:"newBalance" example:"120"`
}
