package dto

// ConsumptionRequest logs that the caller ate quantity units of a product.
type ConsumptionRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Duration  string  `json:"duration"`
}

// CronAnalyzeResponse is the body of the scheduled analysis trigger.
type CronAnalyzeResponse struct {
	Success  bool `json:"success"`
	Analyzed int  `json:"analyzed"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
}
