// Package grpcsvc публикует сервис кофейни по gRPC (coffee.v1.BaristaService).
package grpcsvc

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
)

// BaristaService реализует gRPC API поверх barista.Service.
type BaristaService struct {
	svc    *barista.Service
	logger *log.Entry
}

var _ BaristaServer = (*BaristaService)(nil)

// NewBaristaService конструирует gRPC-адаптер.
func NewBaristaService(svc *barista.Service, logger *log.Entry) *BaristaService {
	if logger == nil {
		logger = log.WithField("component", "barista-grpc")
	}
	return &BaristaService{svc: svc, logger: logger}
}

// PlaceOrder принимает заказ. Если событие не удалось опубликовать, заказ
// всё равно возвращается с event_published=false.
func (s *BaristaService) PlaceOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := requestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	published := true
	order, err := s.svc.PlaceOrder(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrPublishFailed) {
			return nil, s.toStatus("PlaceOrder", err)
		}
		published = false
	}

	out, err := orderToStruct(order)
	if err != nil {
		return nil, s.toStatus("PlaceOrder", err)
	}
	out.Fields[fieldPublished] = structpb.NewBoolValue(published)
	return out, nil
}

// Quote считает цену без сохранения заказа.
func (s *BaristaService) Quote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := requestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	order, err := s.svc.Quote(ctx, req)
	if err != nil {
		return nil, s.toStatus("Quote", err)
	}
	out, err := orderToStruct(order)
	if err != nil {
		return nil, s.toStatus("Quote", err)
	}
	return out, nil
}

// GetOrder возвращает заказ по order_id.
func (s *BaristaService) GetOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(in.GetFields(), fieldOrderID)
	if err != nil || id == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	order, err := s.svc.GetOrder(ctx, id)
	if err != nil {
		return nil, s.toStatus("GetOrder", err)
	}
	out, err := orderToStruct(order)
	if err != nil {
		return nil, s.toStatus("GetOrder", err)
	}
	return out, nil
}

// ListOrders возвращает последние заказы, новые первыми.
func (s *BaristaService) ListOrders(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	limit, err := intField(in.GetFields(), fieldLimit)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	orders, err := s.svc.ListOrders(ctx, limit)
	if err != nil {
		return nil, s.toStatus("ListOrders", err)
	}

	items := make([]*structpb.Value, 0, len(orders))
	for _, order := range orders {
		item, err := orderToStruct(order)
		if err != nil {
			return nil, s.toStatus("ListOrders", err)
		}
		items = append(items, structpb.NewStructValue(item))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldOrders: structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}, nil
}

func (s *BaristaService) toStatus(operation string, err error) error {
	switch {
	case domain.IsInvalidConfiguration(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, domain.ErrOrderNotFound.Error())
	case errors.Is(err, domain.ErrOrderAlreadyExists):
		return status.Error(codes.AlreadyExists, domain.ErrOrderAlreadyExists.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.WithError(err).WithField("operation", operation).Error("request failed")
	return status.Error(codes.Internal, "internal error")
}
