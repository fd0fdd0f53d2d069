package dto

type OperationRequestDTO struct {
	Input string `json:"input" validate:"required,max=20000" example:"What is the derivative of x^2?"`
}

type UsageDTO struct {
	Model        string `json:"model,omitempty" example:"gpt-4o-mini"`
	InputTokens  int    `json:"inputTokens" example:"42"`
	OutputTokens int    `json:"outputTokens" example:"128"`
	Charged      int64  `json:"charged" example:"5"`
}

type OperationResponseDTO struct {
	Result          string   `json:"result" example:"The derivative is 2x."`
	Usage           UsageDTO `json:"usage"`
	RemainingStacks int64    `json:"remainingStacks" example:"10"`
}

// DownstreamFailedDTO is the 502 body when the charge went through but the
// operation did not.
type DownstreamFailedDTO struct {
	Success         bool   `json:"success" example:"false"`
	Code            string `json:"code" example:"DOWNSTREAM_FAILED"`
	Error           string `json:"error" example:"Operation failed"`
	Charged         int64  `json:"charged" example:"5"`
	Refunded        bool   `json:"refunded" example:"false"`
	RemainingStacks int64  `json:"remainingStacks" example:"10"`
}

type OperationCostDTO struct {
	Operation string `json:"operation" example:"ASK_QUESTION"`
	Cost      int64  `json:"cost" example:"5"`
}
