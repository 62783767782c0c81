// Package checkout drives a session from shipping details to a placed order.
//
// Payment is always confirmed before an order is submitted. A confirmed
// payment is kept for the rest of the attempt, so when order placement
// fails the retry only re-submits the order and never charges again.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-tote-store/cart"
	"go-tote-store/catalog"
	"go-tote-store/errs"
	"go-tote-store/fulfillment"
	"go-tote-store/metrics"
	"go-tote-store/models"
	"go-tote-store/payment"
	"go-tote-store/pricing"
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	// Timeout bounds each payment and order placement call.
	Timeout  time.Duration
	Currency string
	TaxRate  decimal.Decimal
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	// Notify receives customer-facing notices. May be nil.
	Notify func(models.Notice)
}

// charge is a confirmed payment and the amount it was taken for.
type charge struct {
	conf        payment.Confirmation
	intent      payment.Context
	amountMinor int64
	quote       pricing.Quote
}

// Orchestrator is the checkout state machine of one browsing session.
type Orchestrator struct {
	cart    *cart.Ledger
	gateway payment.Gateway
	placer  fulfillment.Placer
	cfg     Config
	log     *zap.Logger
	tracer  trace.Tracer

	mu         sync.Mutex
	step       Step
	shipping   *models.Address
	billing    Billing
	method     string
	orderID    string
	estimate   string
	processing bool
	intent     *payment.Context
	charged    *charge
	epoch      uint64
}

func New(ledger *cart.Ledger, gateway payment.Gateway, placer fulfillment.Placer, cfg Config) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.TaxRate.IsZero() {
		cfg.TaxRate = catalog.TaxRate
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Orchestrator{
		cart:    ledger,
		gateway: gateway,
		placer:  placer,
		cfg:     cfg,
		log:     cfg.Log,
		tracer:  otel.Tracer("go-tote-store/checkout"),
		step:    StepShipping,
		billing: Billing{SameAsShipping: true},
	}
}

// SetShippingAddress stores a possibly partial address. It is validated
// when advancing to payment.
func (o *Orchestrator) SetShippingAddress(addr models.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editableLocked(); err != nil {
		return err
	}
	a := normalizeAddress(addr)
	o.shipping = &a
	return nil
}

func (o *Orchestrator) SetBilling(sameAsShipping bool, addr *models.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editableLocked(); err != nil {
		return err
	}
	b := Billing{SameAsShipping: sameAsShipping}
	if addr != nil && !sameAsShipping {
		a := normalizeAddress(*addr)
		b.Address = &a
	}
	o.billing = b
	return nil
}

// SetShippingMethod picks a catalog shipping method. An empty id returns to
// the flat rate. The method cannot change once a payment was taken.
func (o *Orchestrator) SetShippingMethod(methodID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editableLocked(); err != nil {
		return err
	}
	if o.charged != nil {
		return errs.New(errs.InvalidStep, "Shipping can't be changed after payment")
	}
	if methodID != "" {
		if _, ok := catalog.Method(o.productForRatesLocked(o.cart.Items()), "", methodID); !ok {
			return errs.Newf(errs.NotFound, "Unknown shipping method %q", methodID)
		}
	}
	o.method = methodID
	return nil
}

// ProceedToPayment moves from shipping to payment once the cart has items
// and the addresses are complete.
func (o *Orchestrator) ProceedToPayment() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return errs.New(errs.CheckoutInProgress, "Your order is being processed")
	}
	if o.step != StepShipping {
		return errs.Newf(errs.InvalidStep, "Checkout is already at the %s step", o.step)
	}
	if o.cart.Len() == 0 {
		return errs.New(errs.EmptyCart, "Your cart is empty")
	}
	if err := validateShipping(o.shipping); err != nil {
		return err
	}
	if err := validateBilling(o.billing); err != nil {
		return err
	}
	o.step = StepPayment
	return nil
}

// Review moves from payment to the optional review step.
func (o *Orchestrator) Review() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return errs.New(errs.CheckoutInProgress, "Your order is being processed")
	}
	if o.step != StepPayment {
		return errs.Newf(errs.InvalidStep, "Can't review the order from the %s step", o.step)
	}
	o.step = StepReview
	return nil
}

// PlaceOrder confirms payment (unless an earlier attempt already did) and
// then submits the order. A second call while one is running is rejected.
// On failure the checkout stays at its step and can be retried.
func (o *Orchestrator) PlaceOrder(ctx context.Context, customer *models.Customer) (View, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return View{}, errs.New(errs.CheckoutInProgress, "Your order is already being processed")
	}
	if o.step != StepPayment && o.step != StepReview {
		step := o.step
		o.mu.Unlock()
		return View{}, errs.Newf(errs.InvalidStep, "Can't place an order from the %s step", step)
	}
	items := o.cart.Items()
	if len(items) == 0 {
		o.mu.Unlock()
		return View{}, o.fail("rejected", errs.New(errs.EmptyCart, "Your cart is empty"))
	}
	if err := validateShipping(o.shipping); err != nil {
		o.mu.Unlock()
		return View{}, o.fail("rejected", err)
	}
	quote := o.quoteLocked(items)
	amount := pricing.MinorUnits(quote.Total)
	paid := o.charged
	// Shipping can't change after payment and a wallet address may move the
	// region, so only the items are compared against the charge.
	if paid != nil && !paid.quote.Subtotal.Equal(quote.Subtotal) {
		o.mu.Unlock()
		return View{}, o.fail("rejected", errs.New(errs.InvalidStep,
			"Your cart changed after payment. Restore it to complete this order, or start over."))
	}
	intent := o.intent
	epoch := o.epoch
	o.processing = true
	o.mu.Unlock()

	// Only the attempt that set the flag may clear it; a Reset in between
	// starts a new epoch that this attempt must leave alone.
	defer func() {
		o.mu.Lock()
		if o.epoch == epoch {
			o.processing = false
		}
		o.mu.Unlock()
	}()

	if paid == nil {
		var err error
		paid, err = o.pay(ctx, epoch, intent, amount, quote)
		if err != nil {
			return View{}, err
		}
	}

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return View{}, o.abandoned("payment confirmed", paid.conf.TransactionID)
	}
	req := fulfillment.Request{
		IdempotencyKey:  paid.conf.TransactionID,
		Customer:        customer,
		Items:           lines(items),
		ShippingAddress: *o.shipping,
		BillingAddress:  o.billingAddressLocked(),
		ShippingMethod:  o.methodNameLocked(),
		Quote:           paid.quote,
		Currency:        o.cfg.Currency,
		Payment: models.PaymentReceipt{
			TransactionID: paid.conf.TransactionID,
			Token:         paid.intent.Token,
			AmountCents:   paid.amountMinor,
			Currency:      paid.intent.Currency,
			Wallet:        paid.conf.WalletAddress != nil,
		},
	}
	o.mu.Unlock()

	res, err := o.submit(ctx, req)
	if err != nil {
		return View{}, o.fail("placement_failed", classify(err, errs.OrderPlacementFailed,
			"We couldn't place your order. Your payment went through and you won't be charged again; please try again."))
	}
	if !res.Succeeded {
		o.log.Warn("order rejected by print shop", zap.String("reason", res.FailureReason))
		return View{}, o.fail("placement_failed", errs.New(errs.OrderPlacementFailed,
			"There was a problem placing your order. Your payment went through and you won't be charged again; please try again."))
	}

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return View{}, o.abandoned("order placed", res.OrderID)
	}
	o.orderID = res.OrderID
	o.estimate = res.EstimatedDelivery
	o.step = StepConfirmation
	o.processing = false
	o.mu.Unlock()

	// Only the ordered lines leave the cart, once the placed order has been
	// observed. Items added while the order was processing stay.
	o.cart.RemoveLines(items)

	if m := o.cfg.Metrics; m != nil {
		m.OrdersPlaced.Inc()
		m.CheckoutAttempts.WithLabelValues("placed").Inc()
	}
	o.log.Info("order placed", zap.String("order_id", res.OrderID), zap.Int64("amount_minor", paid.amountMinor), zap.Bool("guest", customer == nil))
	o.notify(models.NoticeSuccess, "Order placed successfully!")
	return o.View(), nil
}

// pay creates (or reuses) a payment intent for amount and confirms it.
func (o *Orchestrator) pay(ctx context.Context, epoch uint64, intent *payment.Context, amount int64, quote pricing.Quote) (*charge, error) {
	if intent == nil || intent.AmountMinor != amount || intent.Currency != o.cfg.Currency {
		pc, err := o.initiate(ctx, amount)
		if err != nil {
			return nil, o.fail("payment_failed", classify(err, errs.PaymentFailed, "We couldn't start your payment. Please try again."))
		}
		intent = &pc

		o.mu.Lock()
		if o.epoch != epoch {
			o.mu.Unlock()
			return nil, o.abandoned("payment initiated", pc.Token)
		}
		o.intent = intent
		o.mu.Unlock()
	}

	conf, err := o.confirm(ctx, *intent)
	if err != nil {
		return nil, o.fail("payment_failed", classify(err, errs.PaymentFailed, "Payment failed. Please try again."))
	}
	if !conf.Succeeded {
		msg := "Payment failed. Please try again."
		if conf.FailureReason != "" {
			msg = conf.FailureReason
		}
		return nil, o.fail("payment_failed", errs.New(errs.PaymentFailed, msg))
	}

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return nil, o.abandoned("payment confirmed", conf.TransactionID)
	}
	paid := &charge{conf: conf, intent: *intent, amountMinor: amount, quote: quote}
	o.charged = paid
	wallet := conf.WalletAddress != nil
	if wallet {
		o.applyWalletLocked(*conf.WalletAddress)
	}
	o.mu.Unlock()

	if m := o.cfg.Metrics; m != nil {
		m.PaymentsConfirmed.Inc()
	}
	if wallet {
		o.notify(models.NoticeInfo, "Shipping address updated from your wallet")
	}
	return paid, nil
}

func (o *Orchestrator) initiate(ctx context.Context, amount int64) (payment.Context, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()
	ctx, span := o.tracer.Start(ctx, "payment.Initiate", trace.WithAttributes(
		attribute.Int64("amount_minor", amount),
		attribute.String("currency", o.cfg.Currency),
	))
	defer span.End()

	pc, err := o.gateway.Initiate(ctx, amount, o.cfg.Currency)
	recordSpan(span, err)
	return pc, err
}

func (o *Orchestrator) confirm(ctx context.Context, pc payment.Context) (payment.Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()
	ctx, span := o.tracer.Start(ctx, "payment.Confirm", trace.WithAttributes(attribute.String("token", pc.Token)))
	defer span.End()

	conf, err := o.gateway.Confirm(ctx, pc)
	recordSpan(span, err)
	if err == nil {
		span.SetAttributes(attribute.Bool("succeeded", conf.Succeeded))
	}
	return conf, err
}

func (o *Orchestrator) submit(ctx context.Context, req fulfillment.Request) (fulfillment.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()
	ctx, span := o.tracer.Start(ctx, "fulfillment.Submit", trace.WithAttributes(
		attribute.String("idempotency_key", req.IdempotencyKey),
		attribute.Int("lines", len(req.Items)),
	))
	defer span.End()

	res, err := o.placer.Submit(ctx, req)
	recordSpan(span, err)
	return res, err
}

// Reset returns to the shipping step and forgets the attempt. Results of
// calls still in flight are discarded when they arrive.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.charged != nil && o.orderID == "" {
		o.log.Warn("checkout reset after payment without an order",
			zap.String("transaction_id", o.charged.conf.TransactionID),
			zap.Int64("amount_minor", o.charged.amountMinor))
	}
	o.epoch++
	o.step = StepShipping
	o.shipping = nil
	o.billing = Billing{SameAsShipping: true}
	o.method = ""
	o.orderID = ""
	o.estimate = ""
	o.processing = false
	o.intent = nil
	o.charged = nil
	o.mu.Unlock()
}

func (o *Orchestrator) View() View {
	items := o.cart.Items()

	o.mu.Lock()
	defer o.mu.Unlock()
	v := View{
		Step:              o.step,
		Billing:           o.billing,
		ShippingMethod:    o.method,
		EstimatedDelivery: o.estimate,
		IsProcessing:      o.processing,
		PaymentConfirmed:  o.charged != nil,
	}
	if o.shipping != nil {
		a := *o.shipping
		v.ShippingAddress = &a
	}
	if o.billing.Address != nil {
		a := *o.billing.Address
		v.Billing.Address = &a
	}
	if o.orderID != "" {
		id := o.orderID
		v.OrderID = &id
	}
	if o.step == StepConfirmation && o.charged != nil {
		v.Quote = o.charged.quote
	} else {
		v.Quote = o.quoteLocked(items)
	}
	return v
}

func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

func (o *Orchestrator) editableLocked() error {
	if o.processing {
		return errs.New(errs.CheckoutInProgress, "Your order is being processed")
	}
	if o.step == StepConfirmation {
		return errs.New(errs.InvalidStep, "This order has already been placed")
	}
	return nil
}

func (o *Orchestrator) quoteLocked(items []models.LineItem) pricing.Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}
	shipping := catalog.FlatShipping
	if o.method != "" {
		region := ""
		if o.shipping != nil {
			region = o.shipping.Region
		}
		if m, ok := catalog.Method(o.productForRatesLocked(items), region, o.method); ok {
			shipping = m.Price
		}
	}
	return pricing.NewQuote(subtotal, shipping, o.cfg.TaxRate)
}

func (o *Orchestrator) productForRatesLocked(items []models.LineItem) string {
	if len(items) > 0 && items[0].ProductID != "" {
		return items[0].ProductID
	}
	return catalog.DefaultProductID
}

func (o *Orchestrator) methodNameLocked() string {
	if o.method == "" {
		return "standard"
	}
	return o.method
}

func (o *Orchestrator) billingAddressLocked() models.Address {
	if o.billing.SameAsShipping || o.billing.Address == nil {
		return *o.shipping
	}
	return *o.billing.Address
}

// applyWalletLocked overwrites the shipping address with the wallet's. The
// email is kept when the wallet does not provide one.
func (o *Orchestrator) applyWalletLocked(wallet models.Address) {
	a := normalizeAddress(wallet)
	if a.Email == "" && o.shipping != nil {
		a.Email = o.shipping.Email
	}
	o.shipping = &a
}

func (o *Orchestrator) notify(level, message string) {
	if o.cfg.Notify != nil {
		o.cfg.Notify(models.Notice{Level: level, Message: message})
	}
}

func (o *Orchestrator) fail(outcome string, err error) error {
	if m := o.cfg.Metrics; m != nil {
		m.CheckoutAttempts.WithLabelValues(outcome).Inc()
	}
	o.log.Info("checkout attempt failed", zap.String("outcome", outcome), zap.Error(err))
	o.notify(models.NoticeError, errs.MessageOf(err))
	return err
}

func (o *Orchestrator) abandoned(what, ref string) error {
	o.log.Warn(what+" after checkout was reset", zap.String("ref", ref))
	if m := o.cfg.Metrics; m != nil {
		m.CheckoutAttempts.WithLabelValues("abandoned").Inc()
	}
	return errs.New(errs.Abandoned, "This checkout was restarted")
}

// classify turns an adapter error into a taxonomy value. Timeouts become
// GatewayTimeout regardless of which adapter timed out.
func classify(err error, code errs.Code, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.GatewayTimeout, "The service took too long to respond. Please try again.", err)
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return e
	}
	return errs.Wrap(code, message, err)
}

func recordSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func lines(items []models.LineItem) []fulfillment.Line {
	out := make([]fulfillment.Line, 0, len(items))
	for _, item := range items {
		productID := item.ProductID
		if productID == "" {
			productID = catalog.DefaultProductID
		}
		variantID := item.VariantID
		if variantID == "" && productID == catalog.DefaultProductID {
			variantID = catalog.DefaultVariantID
		}
		out = append(out, fulfillment.Line{
			ProductID:       productID,
			VariantID:       variantID,
			Name:            item.Name,
			DesignReference: item.ImageReference,
			DesignPrompt:    item.DesignPrompt,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
		})
	}
	return out
}
