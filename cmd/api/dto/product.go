package dto

// SubmitProductRequest is the body of POST /products.
type SubmitProductRequest struct {
	URL string `json:"url" binding:"required"`
}

// SubmitProductResponse reports either the stored product (sync mode)
// or the queued request (async mode).
type SubmitProductResponse struct {
	Status    string `json:"status" example:"created"`
	ProductID string `json:"product_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	SubmitStatusCreated = "created"
	SubmitStatusQueued  = "queued"
)

type CategoriesDTO struct {
	Categories []string `json:"categories"`
}

type NamesDTO struct {
	Names []string `json:"names"`
}
