package model

// Envelope is the response wrapper used by every backend endpoint.
type Envelope[T any] struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    T            `json:"data"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page" yaml:"page"`
	Limit int `json:"limit" yaml:"limit"`
	Total int `json:"total" yaml:"total"`
	Pages int `json:"pages" yaml:"pages"`
}

// ListParams are the common query parameters of list endpoints.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	// Filters holds endpoint specific filters (status, type, role, ...).
	Filters map[string]string
}

// Stats is an opaque statistics document; the dashboard renders it as-is.
type Stats map[string]any

// BulkResult is returned by bulk endpoints.
type BulkResult struct {
	Matched  int `json:"matchedCount,omitempty" yaml:"matched"`
	Modified int `json:"modifiedCount,omitempty" yaml:"modified"`
	Deleted  int `json:"deletedCount,omitempty" yaml:"deleted"`
}
