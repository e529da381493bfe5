package dto

type QueryResponse struct {
	ElasticsearchQuery map[string]any `json:"elasticsearch_query" swaggertype:"object"`
	Explanation        string         `json:"explanation"`
	// Optimized is true when the optimization stage supplied the query.
	Optimized bool `json:"optimized"`
	// Fallback is true when an earlier stage or the safe default stood in.
	Fallback bool `json:"fallback"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"log-query-translator"`
}

type FieldCatalogResponse struct {
	IndexPattern string            `json:"index_pattern"`
	Fields       map[string]string `json:"fields"`
	FieldCount   int               `json:"field_count"`
	UpdatedAt    string            `json:"updated_at"`
}
