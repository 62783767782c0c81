package checkout

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-tote-store/errs"
	"go-tote-store/models"
	"go-tote-store/pricing"
)

// Step is a stage of the purchase flow. Steps only move forward, except
// through Reset.
type Step string

const (
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepReview       Step = "review"
	StepConfirmation Step = "confirmation"
)

// Billing is either the shipping address or a separate one.
type Billing struct {
	SameAsShipping bool            `json:"same_as_shipping"`
	Address        *models.Address `json:"address"`
}

// View is a snapshot of the checkout for the presentation layer.
type View struct {
	Step              Step            `json:"step"`
	ShippingAddress   *models.Address `json:"shipping_address"`
	Billing           Billing         `json:"billing"`
	ShippingMethod    string          `json:"shipping_method,omitempty"`
	Quote             pricing.Quote   `json:"quote"`
	OrderID           *string         `json:"order_id"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
	IsProcessing      bool            `json:"is_processing"`
	// PaymentConfirmed is true once a charge succeeded; retrying order
	// placement will reuse it instead of charging again.
	PaymentConfirmed bool `json:"payment_confirmed"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func normalizeAddress(a models.Address) models.Address {
	return models.Address{
		Name:       strings.TrimSpace(a.Name),
		Email:      strings.TrimSpace(a.Email),
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		Region:     strings.TrimSpace(a.Region),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

func validateShipping(a *models.Address) error {
	if a == nil {
		return errs.New(errs.IncompleteAddress, "Please complete all required shipping information")
	}
	return addressError("shipping", validate.Struct(a))
}

// Billing addresses need every field but the email.
func validateBilling(b Billing) error {
	if b.SameAsShipping {
		return nil
	}
	if b.Address == nil {
		return errs.New(errs.IncompleteAddress, "Please complete all required billing information")
	}
	return addressError("billing", validate.StructExcept(b.Address, "Email"))
}

func addressError(kind string, err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.Wrap(errs.IncompleteAddress, "Please complete all required "+kind+" information", err)
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(invalid, ", "))
	}
	return errs.Newf(errs.IncompleteAddress, "Please complete all required %s information (%s)", kind, strings.Join(parts, "; "))
}
