package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName — полное имя gRPC-сервиса кофейни.
const ServiceName = "coffee.v1.BaristaService"

const (
	methodPlaceOrder = "/" + ServiceName + "/PlaceOrder"
	methodGetOrder   = "/" + ServiceName + "/GetOrder"
	methodListOrders = "/" + ServiceName + "/ListOrders"
	methodQuote      = "/" + ServiceName + "/Quote"
)

// BaristaServer — серверная сторона coffee.v1.BaristaService.
// Запросы и ответы передаются как google.protobuf.Struct.
type BaristaServer interface {
	PlaceOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOrders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Quote(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterBaristaServer регистрирует реализацию на gRPC-сервере.
func RegisterBaristaServer(s grpc.ServiceRegistrar, srv BaristaServer) {
	s.RegisterService(&BaristaServiceDesc, srv)
}

// BaristaServiceDesc описывает методы сервиса для grpc.Server.
var BaristaServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BaristaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: unaryHandler(methodPlaceOrder, BaristaServer.PlaceOrder)},
		{MethodName: "GetOrder", Handler: unaryHandler(methodGetOrder, BaristaServer.GetOrder)},
		{MethodName: "ListOrders", Handler: unaryHandler(methodListOrders, BaristaServer.ListOrders)},
		{MethodName: "Quote", Handler: unaryHandler(methodQuote, BaristaServer.Quote)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coffee/v1/barista.proto",
}

type unaryMethod func(BaristaServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BaristaServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BaristaServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
