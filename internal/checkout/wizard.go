// Package checkout turns the server cart into an order.
package checkout

import (
	"strings"
	"sync"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// Wizard steps.
const (
	StepAddress = 1
	StepPayment = 2
	StepConfirm = 3
)

// StepLabels names each step for display.
var StepLabels = map[int]string{
	StepAddress: "Shipping address",
	StepPayment: "Payment method",
	StepConfirm: "Confirmation",
}

// Wizard tracks the checkout form and the current step. The step never
// goes below StepAddress or above StepConfirm. Safe for concurrent use.
type Wizard struct {
	mu      sync.Mutex
	step    int
	address domain.ShippingAddress
	payment string
}

// NewWizard starts at the first step with card payment selected.
func NewWizard() *Wizard {
	return &Wizard{step: StepAddress, payment: domain.PaymentCard}
}

// Step returns the current step.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetStep jumps to step, clamped to the valid range.
func (w *Wizard) SetStep(step int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = clamp(step)
	return w.step
}

// Next advances one step if the current step's input is valid.
func (w *Wizard) Next() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.step {
	case StepAddress:
		if err := validateAddress(w.address); err != nil {
			return w.step, err
		}
	case StepPayment:
		if err := validatePayment(w.payment); err != nil {
			return w.step, err
		}
	}
	w.step = clamp(w.step + 1)
	return w.step, nil
}

// Prev goes back one step.
func (w *Wizard) Prev() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = clamp(w.step - 1)
	return w.step
}

// Reset returns to the first step and clears the form.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepAddress
	w.address = domain.ShippingAddress{}
	w.payment = domain.PaymentCard
}

// SetAddress stores the shipping address, trimming each field.
func (w *Wizard) SetAddress(a domain.ShippingAddress) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.address = domain.ShippingAddress{
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// SetPayment stores the payment method.
func (w *Wizard) SetPayment(method string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.payment = strings.ToLower(strings.TrimSpace(method))
}

// Order returns the order the form describes.
func (w *Wizard) Order() domain.OrderCreate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.OrderCreate{ShippingAddress: w.address, PaymentMethod: w.payment}
}

func clamp(step int) int {
	if step < StepAddress {
		return StepAddress
	}
	if step > StepConfirm {
		return StepConfirm
	}
	return step
}

func validateAddress(a domain.ShippingAddress) error {
	if err := validator.Validate(a); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

func validatePayment(method string) error {
	if err := validator.Var(method, "required,oneof=card cash"); err != nil {
		return apperrors.InvalidInput("payment method must be card or cash")
	}
	return nil
}

// Validate checks the address and payment method of an order.
func Validate(in domain.OrderCreate) error {
	if err := validateAddress(in.ShippingAddress); err != nil {
		return err
	}
	return validatePayment(in.PaymentMethod)
}
