// Package grpc exposes the read side of group orders over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API.
package grpc

import (
	"context"

	grpcgo "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "grouporder.v1.OrderService"

	ListOrdersMethod   = "/" + ServiceName + "/ListOrders"
	GetSummaryMethod   = "/" + ServiceName + "/GetSummary"
	GetShareLinkMethod = "/" + ServiceName + "/GetShareLink"
	WatchSummaryMethod = "/" + ServiceName + "/WatchSummary"
)

type OrderServiceServer interface {
	ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetShareLink(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WatchSummary(req *structpb.Struct, stream grpcgo.ServerStream) error
}

func RegisterOrderServiceServer(s grpcgo.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}

func unaryHandler(method string, call func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(interface{}, context.Context, func(interface{}) error, grpcgo.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpcgo.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderServiceServer), ctx, in)
		}
		info := &grpcgo.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(OrderServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchSummaryHandler(srv interface{}, stream grpcgo.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(OrderServiceServer).WatchSummary(in, stream)
}

var OrderServiceDesc = grpcgo.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpcgo.MethodDesc{
		{
			MethodName: "ListOrders",
			Handler:    unaryHandler(ListOrdersMethod, OrderServiceServer.ListOrders),
		},
		{
			MethodName: "GetSummary",
			Handler:    unaryHandler(GetSummaryMethod, OrderServiceServer.GetSummary),
		},
		{
			MethodName: "GetShareLink",
			Handler:    unaryHandler(GetShareLinkMethod, OrderServiceServer.GetShareLink),
		},
	},
	Streams: []grpcgo.StreamDesc{
		{
			StreamName:    "WatchSummary",
			Handler:       watchSummaryHandler,
			ServerStreams: true,
		},
	},
	Metadata: "grouporder/v1/order_service.proto",
}
