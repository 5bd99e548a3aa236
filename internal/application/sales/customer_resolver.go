package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

// Etiquetas de los clientes creados desde la caja.
var newCustomerTags = []string{"POS", "FEL", "NUEVO"}

// CustomerResolver obtiene el cliente de la venta en la tienda.
// La verificación de teléfono y la creación son dos llamadas separadas: dos ventas simultáneas
// con el mismo teléfono nuevo pueden crear dos clientes.
type CustomerResolver struct {
	platform CommercePlatform
}

// NewCustomerResolver construye el resolvedor.
func NewCustomerResolver(platform CommercePlatform) *CustomerResolver {
	return &CustomerResolver{platform: platform}
}

// FindByPhone devuelve el cliente que ya tiene el teléfono, o nil.
func (r *CustomerResolver) FindByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: teléfono requerido", domain.ErrInvalidInput)
	}
	found, err := r.platform.FindCustomersByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente por teléfono: %w", err)
	}
	for _, c := range found {
		if entity.SamePhone(c.Phone, phone) {
			return &c, nil
		}
	}
	return nil, nil
}

// Resolve existing: usa la referencia recibida. new: rechaza teléfonos ya registrados y crea el cliente.
func (r *CustomerResolver) Resolve(ctx context.Context, req entity.SaleRequest) (entity.ResolvedCustomer, error) {
	if req.CustomerMode == entity.CustomerExisting {
		return entity.NewResolvedCustomer(req.CustomerID, req.Phone, req.Email, req.Tax, false), nil
	}

	owner, err := r.FindByPhone(ctx, req.Phone)
	if err != nil {
		return entity.ResolvedCustomer{}, fmt.Errorf("%w: %v", domain.ErrCustomerWriteFailed, err)
	}
	if owner != nil {
		return entity.ResolvedCustomer{}, &domain.DuplicatePhoneError{
			CustomerID: owner.ID,
			Name:       owner.DisplayName(),
			Phone:      owner.Phone,
		}
	}

	resolved := entity.NewResolvedCustomer("", req.Phone, req.Email, req.Tax, true)
	in := NewCustomerInput{
		FirstName: resolved.Name,
		LastName:  resolved.TaxCode,
		Phone:     resolved.Phone,
		Email:     resolved.Email,
		TaxCode:   resolved.TaxCode,
		Tags:      newCustomerTags,
	}
	if !req.Tax.Address.IsZero() {
		addr := req.Tax.Address
		in.Address = &addr
	}
	id, err := r.platform.CreateCustomer(ctx, in)
	if err != nil {
		return entity.ResolvedCustomer{}, fmt.Errorf("%w: %v", domain.ErrCustomerWriteFailed, err)
	}
	resolved.ID = id
	return resolved, nil
}

// UpdatePhone guarda el teléfono de la venta en un cliente existente.
func (r *CustomerResolver) UpdatePhone(ctx context.Context, customerID, phone string) error {
	if err := r.platform.UpdateCustomerPhone(ctx, customerID, strings.TrimSpace(phone)); err != nil {
		return fmt.Errorf("actualizar teléfono del cliente: %w", err)
	}
	return nil
}
