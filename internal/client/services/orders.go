package services

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/store"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// OrderService lists and inspects orders. Orders are placed through
// store.Store.Checkout, which also clears the cart.
type OrderService struct {
	api     client.OrdersAPI
	session SessionReader
	log     logging.Logger
}

func NewOrderService(api client.OrdersAPI, session SessionReader, log logging.Logger) *OrderService {
	if log == nil {
		log = logging.Nop()
	}
	return &OrderService{api: api, session: session, log: log.With("component", "orders")}
}

// ListOrders returns the user's orders; for an admin the backend returns all.
func (s *OrderService) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	const op = "list_orders"
	if err := requireUser(s.session); err != nil {
		return nil, store.Classify(op, err)
	}
	out, err := s.api.ListOrders(ctx, skip, limit)
	return out, store.Classify(op, err)
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	const op = "get_order"
	if err := requireUser(s.session); err != nil {
		return models.Order{}, store.Classify(op, err)
	}
	if err := requireID(id); err != nil {
		return models.Order{}, store.Classify(op, err)
	}
	o, err := s.api.GetOrder(ctx, id)
	return o, store.Classify(op, err)
}

// UpdateOrderStatus is an admin operation. status must be one of the known
// order statuses.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	const op = "update_order_status"
	if err := requireAdmin(s.session); err != nil {
		return models.Order{}, store.Classify(op, err)
	}
	if err := requireID(id); err != nil {
		return models.Order{}, store.Classify(op, err)
	}
	st, err := models.ParseOrderStatus(status)
	if err != nil {
		return models.Order{}, store.Classify(op, common.ErrorInvalidOrderStatus)
	}
	o, err := s.api.UpdateOrderStatus(ctx, id, st)
	if err != nil {
		return models.Order{}, store.Classify(op, err)
	}
	s.log.Info(ctx, "order status updated", "order_id", id, "status", st)
	return o, nil
}
