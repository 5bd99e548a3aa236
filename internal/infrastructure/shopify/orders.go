package shopify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-fel/internal/application/sales"
	"github.com/jhoicas/pos-fel/internal/domain/entity"
)

const draftOrderFields = `id name totalPrice`

const orderFields = `id name displayFinancialStatus totalPriceSet { shopMoney { amount } }`

const draftOrderCreateMutation = `mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder { ` + draftOrderFields + ` }
    userErrors { field message }
  }
}`

const draftOrderUpdateMutation = `mutation draftOrderUpdate($id: ID!, $input: DraftOrderInput!) {
  draftOrderUpdate(id: $id, input: $input) {
    draftOrder { ` + draftOrderFields + ` }
    userErrors { field message }
  }
}`

const draftOrderDeleteMutation = `mutation draftOrderDelete($input: DraftOrderDeleteInput!) {
  draftOrderDelete(input: $input) {
    deletedId
    userErrors { field message }
  }
}`

const draftOrderCompleteMutation = `mutation draftOrderComplete($id: ID!, $paymentPending: Boolean) {
  draftOrderComplete(id: $id, paymentPending: $paymentPending) {
    draftOrder { order { ` + orderFields + ` } }
    userErrors { field message }
  }
}`

const orderMarkAsPaidMutation = `mutation orderMarkAsPaid($input: OrderMarkAsPaidInput!) {
  orderMarkAsPaid(input: $input) {
    order { ` + orderFields + ` }
    userErrors { field message }
  }
}`

const fulfillmentOrdersQuery = `query fulfillmentOrders($id: ID!) {
  order(id: $id) {
    fulfillmentOrders(first: 10) { nodes { id status } }
  }
}`

const fulfillmentCreateMutation = `mutation fulfillmentCreate($fulfillment: FulfillmentInput!) {
  fulfillmentCreate(fulfillment: $fulfillment) {
    fulfillment { id status }
    userErrors { field message }
  }
}`

const orderNameQuery = `query orderName($id: ID!) {
  order(id: $id) { name }
}`

type draftOrderNode struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (n draftOrderNode) toEntity() entity.DraftOrder {
	return entity.DraftOrder{ID: n.ID, Name: n.Name, TotalPrice: n.TotalPrice}
}

type orderNode struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	DisplayFinancialStatus string `json:"displayFinancialStatus"`
	TotalPriceSet          struct {
		ShopMoney struct {
			Amount decimal.Decimal `json:"amount"`
		} `json:"shopMoney"`
	} `json:"totalPriceSet"`
}

func (n orderNode) toEntity() entity.Order {
	return entity.Order{
		ID:              n.ID,
		Name:            n.Name,
		FinancialStatus: n.DisplayFinancialStatus,
		TotalPrice:      n.TotalPriceSet.ShopMoney.Amount,
	}
}

// CreateDraftOrder crea el borrador. Las líneas de catálogo van por variantId; las libres con
// título y precio propio.
func (c *Client) CreateDraftOrder(ctx context.Context, in sales.DraftOrderInput) (entity.DraftOrder, error) {
	lines := make([]map[string]interface{}, 0, len(in.Items))
	for _, it := range in.Items {
		if it.IsCustom() {
			lines = append(lines, map[string]interface{}{
				"title":             it.Title,
				"quantity":          it.Quantity,
				"originalUnitPrice": it.UnitPrice.StringFixed(2),
				"taxable":           true,
			})
			continue
		}
		lines = append(lines, map[string]interface{}{
			"variantId": it.VariantID,
			"quantity":  it.Quantity,
		})
	}
	input := map[string]interface{}{
		"customerId": in.CustomerID,
		"lineItems":  lines,
		"tags":       in.Tags,
		"note":       in.Note,
	}
	if in.PaymentTermsTemplateID != "" {
		input["paymentTerms"] = map[string]interface{}{"paymentTermsTemplateId": in.PaymentTermsTemplateID}
	}

	var out struct {
		DraftOrderCreate struct {
			DraftOrder *draftOrderNode `json:"draftOrder"`
			UserErrors []userError     `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}
	if err := c.do(ctx, "draftOrderCreate", draftOrderCreateMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return entity.DraftOrder{}, err
	}
	if err := userErrorsErr("draftOrderCreate", out.DraftOrderCreate.UserErrors); err != nil {
		return entity.DraftOrder{}, err
	}
	if out.DraftOrderCreate.DraftOrder == nil {
		return entity.DraftOrder{}, fmt.Errorf("shopify: draftOrderCreate: respuesta sin borrador")
	}
	return out.DraftOrderCreate.DraftOrder.toEntity(), nil
}

// ApplyDraftDiscount aplica el descuento global como FIXED_AMOUNT y devuelve el nuevo total.
func (c *Client) ApplyDraftDiscount(ctx context.Context, draftID string, amount decimal.Decimal, title string) (entity.DraftOrder, error) {
	vars := map[string]interface{}{
		"id": draftID,
		"input": map[string]interface{}{
			"appliedDiscount": map[string]interface{}{
				"title":     title,
				"value":     amount.Round(2).InexactFloat64(),
				"valueType": "FIXED_AMOUNT",
			},
		},
	}
	var out struct {
		DraftOrderUpdate struct {
			DraftOrder *draftOrderNode `json:"draftOrder"`
			UserErrors []userError     `json:"userErrors"`
		} `json:"draftOrderUpdate"`
	}
	if err := c.do(ctx, "draftOrderUpdate", draftOrderUpdateMutation, vars, &out); err != nil {
		return entity.DraftOrder{}, err
	}
	if err := userErrorsErr("draftOrderUpdate", out.DraftOrderUpdate.UserErrors); err != nil {
		return entity.DraftOrder{}, err
	}
	if out.DraftOrderUpdate.DraftOrder == nil {
		return entity.DraftOrder{}, fmt.Errorf("shopify: draftOrderUpdate: respuesta sin borrador")
	}
	return out.DraftOrderUpdate.DraftOrder.toEntity(), nil
}

// DeleteDraftOrder elimina un borrador que no llegó a completarse.
func (c *Client) DeleteDraftOrder(ctx context.Context, draftID string) error {
	var out struct {
		DraftOrderDelete struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"draftOrderDelete"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"id": draftID}}
	if err := c.do(ctx, "draftOrderDelete", draftOrderDeleteMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsErr("draftOrderDelete", out.DraftOrderDelete.UserErrors)
}

// CompleteDraftOrder convierte el borrador en orden. paymentPending deja la orden sin pagar (crédito).
func (c *Client) CompleteDraftOrder(ctx context.Context, draftID string, paymentPending bool) (entity.Order, error) {
	var out struct {
		DraftOrderComplete struct {
			DraftOrder *struct {
				Order *orderNode `json:"order"`
			} `json:"draftOrder"`
			UserErrors []userError `json:"userErrors"`
		} `json:"draftOrderComplete"`
	}
	vars := map[string]interface{}{"id": draftID, "paymentPending": paymentPending}
	if err := c.do(ctx, "draftOrderComplete", draftOrderCompleteMutation, vars, &out); err != nil {
		return entity.Order{}, err
	}
	if err := userErrorsErr("draftOrderComplete", out.DraftOrderComplete.UserErrors); err != nil {
		return entity.Order{}, err
	}
	d := out.DraftOrderComplete.DraftOrder
	if d == nil || d.Order == nil {
		return entity.Order{}, fmt.Errorf("shopify: draftOrderComplete: respuesta sin orden")
	}
	return d.Order.toEntity(), nil
}

// MarkOrderPaid registra el pago en efectivo.
func (c *Client) MarkOrderPaid(ctx context.Context, orderID string) (entity.Order, error) {
	var out struct {
		OrderMarkAsPaid struct {
			Order      *orderNode  `json:"order"`
			UserErrors []userError `json:"userErrors"`
		} `json:"orderMarkAsPaid"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"id": orderID}}
	if err := c.do(ctx, "orderMarkAsPaid", orderMarkAsPaidMutation, vars, &out); err != nil {
		return entity.Order{}, err
	}
	if err := userErrorsErr("orderMarkAsPaid", out.OrderMarkAsPaid.UserErrors); err != nil {
		return entity.Order{}, err
	}
	if out.OrderMarkAsPaid.Order == nil {
		return entity.Order{}, fmt.Errorf("shopify: orderMarkAsPaid: respuesta sin orden")
	}
	return out.OrderMarkAsPaid.Order.toEntity(), nil
}

// FulfillmentOrders órdenes de preparación de la orden.
func (c *Client) FulfillmentOrders(ctx context.Context, orderID string) ([]entity.FulfillmentOrder, error) {
	var out struct {
		Order *struct {
			FulfillmentOrders struct {
				Nodes []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"nodes"`
			} `json:"fulfillmentOrders"`
		} `json:"order"`
	}
	if err := c.do(ctx, "fulfillmentOrders", fulfillmentOrdersQuery, map[string]interface{}{"id": orderID}, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, fmt.Errorf("shopify: orden %s no encontrada", orderID)
	}
	res := make([]entity.FulfillmentOrder, 0, len(out.Order.FulfillmentOrders.Nodes))
	for _, n := range out.Order.FulfillmentOrders.Nodes {
		res = append(res, entity.FulfillmentOrder{ID: n.ID, Status: n.Status})
	}
	return res, nil
}

// CreateFulfillment marca como entregada una orden de preparación, sin notificar al cliente.
func (c *Client) CreateFulfillment(ctx context.Context, fulfillmentOrderID string, tracking sales.TrackingInfo) error {
	fulfillment := map[string]interface{}{
		"lineItemsByFulfillmentOrder": []map[string]interface{}{{"fulfillmentOrderId": fulfillmentOrderID}},
		"notifyCustomer":              false,
	}
	if tracking.Company != "" || tracking.Number != "" {
		info := map[string]interface{}{"company": tracking.Company, "number": tracking.Number}
		if tracking.URL != "" {
			info["url"] = tracking.URL
		}
		fulfillment["trackingInfo"] = info
	}
	var out struct {
		FulfillmentCreate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"fulfillmentCreate"`
	}
	if err := c.do(ctx, "fulfillmentCreate", fulfillmentCreateMutation, map[string]interface{}{"fulfillment": fulfillment}, &out); err != nil {
		return err
	}
	return userErrorsErr("fulfillmentCreate", out.FulfillmentCreate.UserErrors)
}

// OrderName número visible de la orden. Acepta el id numérico del webhook.
func (c *Client) OrderName(ctx context.Context, orderID string) (string, error) {
	var out struct {
		Order *struct {
			Name string `json:"name"`
		} `json:"order"`
	}
	if err := c.do(ctx, "order", orderNameQuery, map[string]interface{}{"id": OrderGID(orderID)}, &out); err != nil {
		return "", err
	}
	if out.Order == nil {
		return "", fmt.Errorf("shopify: orden %s no encontrada", orderID)
	}
	return out.Order.Name, nil
}
