package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorDetailResponse error con datos adicionales (p. ej. el cliente que ya tiene el teléfono).
type ErrorDetailResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Ledger  bool   `json:"ledger"`
}
