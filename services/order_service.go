package services

import (
	"context"
	"fmt"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

type OrderService interface {
	List(ctx context.Context, f models.OrderFilter) (pkg.Page[models.Order], error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, req *models.UpdateOrderStatusRequest) (*models.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	hub       ws.EventPublisher
}

func NewOrderService(orderRepo repository.OrderRepository, hub ws.EventPublisher) OrderService {
	return &orderService{orderRepo: orderRepo, hub: hub}
}

func (s *orderService) List(ctx context.Context, f models.OrderFilter) (pkg.Page[models.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Order]{}, err
	}
	return pkg.NewPage(orders, total, f.Page), nil
}

func (s *orderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// UpdateStatus moves an order to a new status. Cancelled is terminal.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == req.Status {
		return order, nil
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: cancelled orders cannot change status", pkg.ErrUnprocessable)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpOrderStatusUpdated,
		Data: ws.EntityData{ID: id, Name: order.OrderNumber, Status: req.Status},
	})

	return s.orderRepo.GetByID(ctx, id)
}
