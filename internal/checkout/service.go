package checkout

import (
	"context"
	"log/slog"

	"github.com/utafrali/bookshelf/internal/cart"
	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// Notification texts.
const (
	MsgOrderPlaced        = "Order placed"
	MsgOrderFailed        = "Could not place the order"
	MsgCartEmpty          = "Your cart is empty. Add books before checking out."
	MsgOrderCancelled     = "Order cancelled"
	MsgCancelFailed       = "Could not cancel the order"
	MsgStatusUpdated      = "Order status updated"
	MsgStatusUpdateFailed = "Could not update the order status"
)

// OrderAPI is the remote orders resource.
type OrderAPI interface {
	Create(ctx context.Context, in domain.OrderCreate) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

// CartSync is the part of the cart store checkout needs.
type CartSync interface {
	Cart(ctx context.Context) (domain.Cart, error)
	Invalidate()
	Refresh(ctx context.Context) (domain.Cart, error)
}

// PromoCodes holds the promo code entered during checkout.
type PromoCodes interface {
	ClearPromoCode()
}

// Service places and cancels orders.
type Service struct {
	orders   OrderAPI
	cart     CartSync
	promo    PromoCodes
	notifier cart.Notifier
	wizard   *Wizard
	logger   *slog.Logger
}

// NewService wires checkout to the orders API and the cart store.
func NewService(orders OrderAPI, cartSync CartSync, promo PromoCodes, notifier cart.Notifier, wizard *Wizard, logger *slog.Logger) *Service {
	if wizard == nil {
		wizard = NewWizard()
	}
	return &Service{
		orders:   orders,
		cart:     cartSync,
		promo:    promo,
		notifier: notifier,
		wizard:   wizard,
		logger:   logger,
	}
}

// Wizard returns the form state.
func (s *Service) Wizard() *Wizard {
	return s.wizard
}

// PlaceOrder creates an order from the server cart. The backend empties
// the cart, so the cart store is invalidated and refetched afterwards.
func (s *Service) PlaceOrder(ctx context.Context, address domain.ShippingAddress, paymentMethod string) (*domain.Order, error) {
	in := domain.OrderCreate{ShippingAddress: address, PaymentMethod: paymentMethod}
	if err := Validate(in); err != nil {
		s.notifier.Error(MsgOrderFailed + ": " + apperrors.UserMessage(err))
		return nil, err
	}

	c, err := s.cart.Cart(ctx)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		s.notifier.Error(MsgCartEmpty)
		return nil, apperrors.InvalidInput(MsgCartEmpty)
	}

	order, err := s.orders.Create(ctx, in)
	if err != nil {
		s.logger.WarnContext(ctx, "order creation failed", slog.String("error", err.Error()))
		s.notifier.Error(apperrors.UserMessage(err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("items", len(order.Items)),
		slog.String("total", order.TotalAmount.String()),
	)
	s.notifier.Success(MsgOrderPlaced)

	s.cart.Invalidate()
	if _, err := s.cart.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "cart refetch after order failed", slog.String("error", err.Error()))
	}
	s.promo.ClearPromoCode()
	s.wizard.Reset()
	return order, nil
}

// Submit places the order held by the wizard. The wizard must be on the
// confirmation step.
func (s *Service) Submit(ctx context.Context) (*domain.Order, error) {
	if s.wizard.Step() != StepConfirm {
		return nil, apperrors.InvalidInput("finish the previous checkout steps first")
	}
	in := s.wizard.Order()
	return s.PlaceOrder(ctx, in.ShippingAddress, in.PaymentMethod)
}

// Cancel cancels a pending order.
func (s *Service) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.Cancel(ctx, orderID)
	if err != nil {
		s.notifier.Error(MsgCancelFailed + ": " + apperrors.UserMessage(err))
		return nil, err
	}
	s.notifier.Success(MsgOrderCancelled)
	return order, nil
}

// SetStatus moves an order to status. Admin only.
func (s *Service) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		err := apperrors.InvalidInput("unknown order status " + string(status))
		s.notifier.Error(MsgStatusUpdateFailed + ": " + err.Message)
		return nil, err
	}
	order, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		s.notifier.Error(MsgStatusUpdateFailed + ": " + apperrors.UserMessage(err))
		return nil, err
	}
	s.notifier.Success(MsgStatusUpdated)
	return order, nil
}
