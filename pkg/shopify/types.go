package shopify

// StagedParameter is one signed form field for the staged upload POST.
// Order matters: the storage endpoint validates the signature over the
// fields exactly as given.
type StagedParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedTarget is a negotiated short-lived upload destination. Single-use:
// it expires if unused and must never be cached across files.
type StagedTarget struct {
	URL         string            `json:"url"`
	ResourceURL string            `json:"resourceUrl"`
	Parameters  []StagedParameter `json:"parameters"`
}

// UserError is a field-level validation error reported inside an otherwise
// successful GraphQL reply.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// MediaRecord is the confirmation copy of a media item created on a product.
type MediaRecord struct {
	ID          string `json:"id"`
	Alt         string `json:"alt"`
	ContentType string `json:"mediaContentType"`
	Status      string `json:"status"`
}
