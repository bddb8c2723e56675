package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service is described by hand instead of with protoc. Every request is an
// emptypb.Empty and every response a structpb.Struct.

const ServiceName = "lsr.API"

type APIServer interface {
	GetVersion(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetTopology(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetNeighbors(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRoutingTable(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchRoutingTable(*emptypb.Empty, API_WatchRoutingTableServer) error
}

type API_WatchRoutingTableServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type unaryMethod func(APIServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(emptypb.Empty)
			if err := dec(in); err != nil {
				return nil, err
			}

			if interceptor == nil {
				return call(srv.(APIServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}

			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(APIServer), ctx, req.(*emptypb.Empty))
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchRoutingTableHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(APIServer).WatchRoutingTable(in, &watchRoutingTableServer{stream})
}

type watchRoutingTableServer struct {
	grpc.ServerStream
}

func (x *watchRoutingTableServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*APIServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetVersion", APIServer.GetVersion),
		unary("GetTopology", APIServer.GetTopology),
		unary("GetNeighbors", APIServer.GetNeighbors),
		unary("GetRoutingTable", APIServer.GetRoutingTable),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchRoutingTable",
			Handler:       watchRoutingTableHandler,
			ServerStreams: true,
		},
	},
}

func RegisterAPIServer(s grpc.ServiceRegistrar, srv APIServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type APIClient struct {
	cc grpc.ClientConnInterface
}

func NewAPIClient(cc grpc.ClientConnInterface) *APIClient {
	return &APIClient{cc}
}

func (c *APIClient) invoke(ctx context.Context, method string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, fullMethod(method), &emptypb.Empty{}, out, opts...)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (c *APIClient) GetVersion(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetVersion", opts...)
}

func (c *APIClient) GetTopology(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetTopology", opts...)
}

func (c *APIClient) GetNeighbors(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetNeighbors", opts...)
}

func (c *APIClient) GetRoutingTable(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetRoutingTable", opts...)
}

type API_WatchRoutingTableClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

func (c *APIClient) WatchRoutingTable(ctx context.Context, opts ...grpc.CallOption) (API_WatchRoutingTableClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], fullMethod("WatchRoutingTable"), opts...)
	if err != nil {
		return nil, err
	}

	x := &watchRoutingTableClient{stream}
	if err := x.ClientStream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

type watchRoutingTableClient struct {
	grpc.ClientStream
}

func (x *watchRoutingTableClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}

	return m, nil
}
