package grpcsvc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
)

// Client — типизированный клиент coffee.v1.BaristaService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient оборачивает готовое соединение.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// PlaceOrder отправляет заказ. published=false означает, что заказ сохранён,
// но событие о нём не ушло в брокер.
func (c *Client) PlaceOrder(ctx context.Context, req barista.OrderRequest, opts ...grpc.CallOption) (order domain.Order, published bool, err error) {
	out, err := c.callOrder(ctx, methodPlaceOrder, req, opts...)
	if err != nil {
		return domain.Order{}, false, err
	}
	order, err = orderFromStruct(out)
	return order, out.GetFields()[fieldPublished].GetBoolValue(), err
}

// Quote запрашивает цену без сохранения.
func (c *Client) Quote(ctx context.Context, req barista.OrderRequest, opts ...grpc.CallOption) (domain.Order, error) {
	out, err := c.callOrder(ctx, methodQuote, req, opts...)
	if err != nil {
		return domain.Order{}, err
	}
	return orderFromStruct(out)
}

// GetOrder запрашивает заказ по идентификатору.
func (c *Client) GetOrder(ctx context.Context, id string, opts ...grpc.CallOption) (domain.Order, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldOrderID: structpb.NewStringValue(id),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetOrder, in, out, opts...); err != nil {
		return domain.Order{}, err
	}
	return orderFromStruct(out)
}

// ListOrders запрашивает последние заказы; limit <= 0 — лимит сервера.
func (c *Client) ListOrders(ctx context.Context, limit int, opts ...grpc.CallOption) ([]domain.Order, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldLimit: structpb.NewNumberValue(float64(limit)),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodListOrders, in, out, opts...); err != nil {
		return nil, err
	}

	values := out.GetFields()[fieldOrders].GetListValue().GetValues()
	orders := make([]domain.Order, 0, len(values))
	for idx, v := range values {
		order, err := orderFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("orders[%d]: %w", idx, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *Client) callOrder(ctx context.Context, method string, req barista.OrderRequest, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := requestToStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
