package dto

import "github.com/jhoicas/pos-fel/internal/domain/entity"

// CustomerResponse cliente de la tienda.
type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CheckPhoneResponse salida de GET /api/customers/check-phone.
type CheckPhoneResponse struct {
	Exists   bool              `json:"exists"`
	Customer *CustomerResponse `json:"customer,omitempty"`
}

// NewCustomerResponse convierte un cliente de la tienda.
func NewCustomerResponse(c *entity.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{ID: c.ID, Name: c.DisplayName(), Email: c.Email, Phone: c.Phone}
}
