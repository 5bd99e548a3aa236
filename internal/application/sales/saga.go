package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-fel/internal/domain/entity"
	"github.com/jhoicas/pos-fel/internal/domain/sale"
)

var tracer = otel.Tracer("github.com/jhoicas/pos-fel/internal/application/sales")

// Pasos de la venta, en orden.
const (
	StepResolveCustomer = "resolve_customer"
	StepUpdatePhone     = "update_phone"
	StepCreateOrder     = "create_order"
	StepApplyDiscount   = "apply_discount"
	StepIssueInvoice    = "issue_invoice"
	StepCompleteOrder   = "complete_order"
	StepSettlePayment   = "settle_payment"
	StepFulfillOrder    = "fulfill_order"
	StepNotifyCustomer  = "notify_customer"
	StepWriteLedger     = "write_ledger"
)

// Estado de pago reportado al cajero.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentUnknown = "unknown"
)

// SagaConfig opciones de la venta.
type SagaConfig struct {
	// VoidDraftOnInvoiceFailure elimina el borrador cuando la factura es rechazada.
	// Apagado, la orden queda en la tienda sin factura y debe revisarse a mano.
	VoidDraftOnInvoiceFailure bool
}

// Warning problema no fatal de un paso.
type Warning struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// StepError fallo de un paso fatal. La venta se detiene sin devolver referencias.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// SaleResult resultado de una venta exitosa (la factura quedó certificada).
type SaleResult struct {
	SaleID        string
	OrderID       string
	OrderNumber   string
	Total         decimal.Decimal
	Invoice       entity.TaxInvoice
	PaymentStatus string
	Fulfilled     bool
	Delivery      string // template | text | vacío si no se notificó
	LedgerWritten bool
	Warnings      []Warning
}

// saleRun estado de una ejecución. Cada paso lee lo que produjeron los anteriores.
type saleRun struct {
	id        string
	req       entity.SaleRequest
	customer  entity.ResolvedCustomer
	draft     entity.DraftOrder
	order     entity.Order
	completed bool
	invoice   entity.TaxInvoice
	discounts []decimal.Decimal
	lifecycle *sale.OrderLifecycle
	result    SaleResult
}

type sagaStep struct {
	name       string
	fatal      bool
	skip       func(*saleRun) bool
	run        func(context.Context, *saleRun) error
	compensate func(context.Context, *saleRun) error
}

// ProcessSaleUseCase orquesta la venta: cliente → orden → descuento → factura → pago y entrega →
// notificación → libro. Los pasos fatales detienen la venta; los demás se registran como advertencias.
type ProcessSaleUseCase struct {
	customers *CustomerResolver
	orders    *OrderBuilder
	invoices  *InvoiceIssuer
	payment   *PaymentFulfillment
	notifier  *NotificationDispatcher
	ledger    *LedgerWriter
	cfg       SagaConfig
	log       zerolog.Logger
	steps     []sagaStep
}

// NewProcessSaleUseCase construye el caso de uso. ledger puede ser nil (libro no configurado).
func NewProcessSaleUseCase(
	customers *CustomerResolver,
	orders *OrderBuilder,
	invoices *InvoiceIssuer,
	payment *PaymentFulfillment,
	notifier *NotificationDispatcher,
	ledger *LedgerWriter,
	cfg SagaConfig,
	log zerolog.Logger,
) *ProcessSaleUseCase {
	uc := &ProcessSaleUseCase{
		customers: customers,
		orders:    orders,
		invoices:  invoices,
		payment:   payment,
		notifier:  notifier,
		ledger:    ledger,
		cfg:       cfg,
		log:       log,
	}
	uc.steps = uc.buildSteps()
	return uc
}

func (uc *ProcessSaleUseCase) buildSteps() []sagaStep {
	createOrder := sagaStep{name: StepCreateOrder, fatal: true, run: uc.createOrder}
	if uc.cfg.VoidDraftOnInvoiceFailure {
		createOrder.compensate = uc.voidDraft
	}
	return []sagaStep{
		{name: StepResolveCustomer, fatal: true, run: uc.resolveCustomer},
		{name: StepUpdatePhone, skip: skipPhoneUpdate, run: uc.updatePhone},
		createOrder,
		{name: StepApplyDiscount, skip: func(r *saleRun) bool { return r.req.Discount.IsZero() }, run: uc.applyDiscount},
		{name: StepIssueInvoice, fatal: true, run: uc.issueInvoice},
		{name: StepCompleteOrder, run: uc.completeOrder},
		{name: StepSettlePayment, skip: notCompleted, run: uc.settlePayment},
		{name: StepFulfillOrder, skip: notCompleted, run: uc.fulfillOrder},
		{name: StepNotifyCustomer, skip: skipNotification, run: uc.notifyCustomer},
		{name: StepWriteLedger, skip: func(*saleRun) bool { return !uc.ledger.Enabled() }, run: uc.writeLedger},
	}
}

// Execute procesa la venta. Error: validación, teléfono duplicado o *StepError de un paso fatal.
func (uc *ProcessSaleUseCase) Execute(ctx context.Context, req entity.SaleRequest) (*SaleResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	run := &saleRun{
		id:        uuid.New().String(),
		req:       req,
		lifecycle: sale.NewOrderLifecycle(req.Credit),
	}
	run.result.SaleID = run.id
	run.result.PaymentStatus = PaymentUnknown

	ctx, span := tracer.Start(ctx, "sale.process", trace.WithAttributes(
		attribute.String("sale.id", run.id),
		attribute.String("sale.customer_mode", string(req.CustomerMode)),
		attribute.Bool("sale.credit", req.Credit),
		attribute.Int("sale.items", len(req.Items)),
	))
	defer span.End()

	log := uc.log.With().Str("sale_id", run.id).Logger()
	log.Info().
		Str("customer_mode", string(req.CustomerMode)).
		Str("subtotal", req.Subtotal().StringFixed(2)).
		Str("discount", req.Discount.StringFixed(2)).
		Bool("credit", req.Credit).
		Msg("venta iniciada")

	var done []sagaStep
	for _, step := range uc.steps {
		if step.skip != nil && step.skip(run) {
			log.Debug().Str("step", step.name).Msg("paso omitido")
			continue
		}
		if err := uc.runStep(ctx, log, step, run); err != nil {
			if step.fatal {
				uc.compensate(ctx, log, done, run)
				span.SetStatus(codes.Error, step.name)
				log.Error().Err(err).Str("step", step.name).Msg("venta abortada")
				return nil, &StepError{Step: step.name, Err: err}
			}
			run.result.Warnings = append(run.result.Warnings, Warning{Step: step.name, Message: err.Error()})
			log.Warn().Err(err).Str("step", step.name).Msg("paso no fatal falló, la venta continúa")
			continue
		}
		done = append(done, step)
	}

	res := run.result
	res.OrderID, res.OrderNumber = run.draft.ID, run.draft.Name
	if run.completed {
		res.OrderID, res.OrderNumber = run.order.ID, run.order.Name
	}
	res.Invoice = run.invoice
	res.Total = run.invoice.Total
	res.Fulfilled = run.lifecycle.State() == sale.StateFulfilled

	log.Info().
		Str("order", res.OrderNumber).
		Str("invoice_uuid", res.Invoice.UUID).
		Str("payment", res.PaymentStatus).
		Int("warnings", len(res.Warnings)).
		Msg("venta completada")
	return &res, nil
}

func (uc *ProcessSaleUseCase) runStep(ctx context.Context, log zerolog.Logger, step sagaStep, run *saleRun) error {
	ctx, span := tracer.Start(ctx, "sale."+step.name, trace.WithAttributes(
		attribute.String("sale.id", run.id),
		attribute.String("saga.step", step.name),
		attribute.Bool("saga.fatal", step.fatal),
	))
	defer span.End()

	start := time.Now()
	err := step.run(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	log.Debug().Str("step", step.name).Dur("elapsed", time.Since(start)).Msg("paso completado")
	return nil
}

// compensate ejecuta en orden inverso las compensaciones de los pasos ya completados.
func (uc *ProcessSaleUseCase) compensate(ctx context.Context, log zerolog.Logger, done []sagaStep, run *saleRun) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx, run); err != nil {
			log.Error().Err(err).Str("step", step.name).Msg("compensación fallida")
			continue
		}
		log.Info().Str("step", step.name).Msg("paso compensado")
	}
}

// ── Pasos ────────────────────────────────────────────────────────────────────

func (uc *ProcessSaleUseCase) resolveCustomer(ctx context.Context, r *saleRun) error {
	c, err := uc.customers.Resolve(ctx, r.req)
	if err != nil {
		return err
	}
	r.customer = c
	return nil
}

func skipPhoneUpdate(r *saleRun) bool {
	return r.req.CustomerMode != entity.CustomerExisting || r.req.Phone == ""
}

func (uc *ProcessSaleUseCase) updatePhone(ctx context.Context, r *saleRun) error {
	return uc.customers.UpdatePhone(ctx, r.customer.ID, r.req.Phone)
}

func (uc *ProcessSaleUseCase) createOrder(ctx context.Context, r *saleRun) error {
	draft, err := uc.orders.CreateDraft(ctx, r.customer, r.req)
	if err != nil {
		return err
	}
	r.draft = draft
	return nil
}

func (uc *ProcessSaleUseCase) voidDraft(ctx context.Context, r *saleRun) error {
	if r.completed || r.draft.ID == "" {
		return nil
	}
	return uc.orders.VoidDraft(ctx, r.draft.ID)
}

func (uc *ProcessSaleUseCase) applyDiscount(ctx context.Context, r *saleRun) error {
	updated, err := uc.orders.ApplyDiscount(ctx, r.draft, r.req.Discount)
	if err != nil {
		return err
	}
	r.draft = updated
	expected := sale.ComputeTotals(r.req.Subtotal(), r.req.Discount).Total
	if !updated.TotalPrice.IsZero() {
		if err := sale.ReconcileTotals(updated.TotalPrice, expected); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ProcessSaleUseCase) issueInvoice(ctx context.Context, r *saleRun) error {
	draft, err := uc.invoices.Prepare(r.customer, r.req)
	if err != nil {
		return err
	}
	inv, err := uc.invoices.Issue(ctx, draft)
	if err != nil {
		return err
	}
	r.invoice = inv
	r.discounts = make([]decimal.Decimal, len(draft.Lines))
	for i, l := range draft.Lines {
		r.discounts[i] = l.Discount
	}
	return nil
}

func (uc *ProcessSaleUseCase) completeOrder(ctx context.Context, r *saleRun) error {
	order, err := uc.payment.Complete(ctx, r.lifecycle, r.draft.ID)
	if err != nil {
		return err
	}
	r.order = order
	r.completed = true
	return nil
}

func notCompleted(r *saleRun) bool { return !r.completed }

func (uc *ProcessSaleUseCase) settlePayment(ctx context.Context, r *saleRun) error {
	order, err := uc.payment.Settle(ctx, r.lifecycle, r.order)
	r.order = order
	if err != nil {
		return err
	}
	if r.lifecycle.Paid() {
		r.result.PaymentStatus = PaymentPaid
	} else {
		r.result.PaymentStatus = PaymentPending
	}
	return nil
}

func (uc *ProcessSaleUseCase) fulfillOrder(ctx context.Context, r *saleRun) error {
	return uc.payment.Fulfill(ctx, r.lifecycle, r.order)
}

// skipNotification sin teléfono o sin número de orden definitivo no se notifica.
func skipNotification(r *saleRun) bool {
	return r.customer.Phone == "" || !r.completed || r.order.Name == ""
}

func (uc *ProcessSaleUseCase) notifyCustomer(ctx context.Context, r *saleRun) error {
	delivery, err := uc.notifier.Dispatch(ctx, Notification{
		Phone:        r.customer.Phone,
		CustomerName: r.customer.Name,
		OrderNumber:  r.order.Name,
		Invoice:      r.invoice,
	})
	if err != nil {
		return err
	}
	r.result.Delivery = delivery
	return nil
}

func (uc *ProcessSaleUseCase) writeLedger(ctx context.Context, r *saleRun) error {
	orderNumber := r.draft.Name
	if r.completed {
		orderNumber = r.order.Name
	} else {
		// Los reembolsos buscan por número de orden: esta fila no se encontrará sin corregirla.
		uc.log.Warn().
			Str("sale_id", r.id).
			Str("draft", r.draft.Name).
			Str("invoice_uuid", r.invoice.UUID).
			Msg("fila del libro con nombre de borrador; corregir el número de orden a mano")
	}
	discounts := make([]string, len(r.discounts))
	for i, d := range r.discounts {
		discounts[i] = d.StringFixed(2)
	}
	_, err := uc.ledger.Record(ctx, LedgerEntry{
		Request:     r.req,
		Customer:    r.customer,
		OrderNumber: orderNumber,
		Invoice:     r.invoice,
		Discounts:   discounts,
		Payment:     r.result.PaymentStatus,
		Draft:       !r.completed,
	})
	if err != nil {
		return err
	}
	r.result.LedgerWritten = true
	return nil
}
