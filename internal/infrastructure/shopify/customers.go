package shopify

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

const customersByPhoneQuery = `query customersByPhone($query: String!) {
  customers(first: 5, query: $query) {
    nodes { id firstName lastName email phone }
  }
}`

const customerCreateMutation = `mutation customerCreate($input: CustomerInput!) {
  customerCreate(input: $input) {
    customer { id }
    userErrors { field message }
  }
}`

const customerUpdateMutation = `mutation customerUpdate($input: CustomerInput!) {
  customerUpdate(input: $input) {
    customer { id }
    userErrors { field message }
  }
}`

// phoneSearchTerm quita separadores que romperían la sintaxis de búsqueda.
var phoneSearchTerm = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

type customerNode struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FindCustomersByPhone busca clientes con filtro "phone:". La tienda hace coincidencia parcial;
// la comparación exacta la hace quien llama.
func (c *Client) FindCustomersByPhone(ctx context.Context, phone string) ([]entity.Customer, error) {
	var out struct {
		Customers struct {
			Nodes []customerNode `json:"nodes"`
		} `json:"customers"`
	}
	vars := map[string]interface{}{"query": "phone:" + phoneSearchTerm.Replace(strings.TrimSpace(phone))}
	if err := c.do(ctx, "customers", customersByPhoneQuery, vars, &out); err != nil {
		return nil, err
	}
	res := make([]entity.Customer, 0, len(out.Customers.Nodes))
	for _, n := range out.Customers.Nodes {
		res = append(res, entity.Customer{
			ID:        n.ID,
			FirstName: n.FirstName,
			LastName:  n.LastName,
			Email:     n.Email,
			Phone:     n.Phone,
		})
	}
	return res, nil
}

// CreateCustomer registra el cliente con su NIT en el metafield custom.nit.
func (c *Client) CreateCustomer(ctx context.Context, in sales.NewCustomerInput) (string, error) {
	input := map[string]interface{}{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"phone":     in.Phone,
		"tags":      in.Tags,
		"metafields": []map[string]interface{}{{
			"namespace": "custom",
			"key":       "nit",
			"value":     in.TaxCode,
			"type":      "single_line_text_field",
		}},
	}
	if in.Email != "" {
		input["email"] = in.Email
	}
	if in.Address != nil {
		input["addresses"] = []map[string]interface{}{addressInput(*in.Address)}
	}

	var out struct {
		CustomerCreate struct {
			Customer   *struct{ ID string `json:"id"` } `json:"customer"`
			UserErrors []userError                     `json:"userErrors"`
		} `json:"customerCreate"`
	}
	if err := c.do(ctx, "customerCreate", customerCreateMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return "", err
	}
	if err := userErrorsErr("customerCreate", out.CustomerCreate.UserErrors); err != nil {
		return "", err
	}
	if out.CustomerCreate.Customer == nil || out.CustomerCreate.Customer.ID == "" {
		return "", fmt.Errorf("shopify: customerCreate: respuesta sin cliente")
	}
	return out.CustomerCreate.Customer.ID, nil
}

// UpdateCustomerPhone actualiza el teléfono de un cliente existente.
func (c *Client) UpdateCustomerPhone(ctx context.Context, customerID, phone string) error {
	var out struct {
		CustomerUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"customerUpdate"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"id": customerID, "phone": phone}}
	if err := c.do(ctx, "customerUpdate", customerUpdateMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsErr("customerUpdate", out.CustomerUpdate.UserErrors)
}

// addressInput MailingAddressInput con los valores por defecto de Guatemala.
func addressInput(a entity.Address) map[string]interface{} {
	city, state, zip := a.City, a.State, a.Zip
	if city == "" {
		city = "Guatemala"
	}
	if state == "" {
		state = "Guatemala"
	}
	if zip == "" {
		zip = "01001"
	}
	return map[string]interface{}{
		"address1":    a.Street,
		"city":        city,
		"province":    state,
		"zip":         zip,
		"countryCode": "GT",
	}
}
