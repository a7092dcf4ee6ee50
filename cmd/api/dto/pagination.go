package dto

// Pagination is the envelope for list results.
// Page is 1-based; PageSize is the requested page size.
type Pagination[T any] struct {
	Data     []T `json:"data"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
