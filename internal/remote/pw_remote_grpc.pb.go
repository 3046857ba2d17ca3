package remote

// Hand-authored client/server stubs matching the BotGateway service in
// pw_remote.proto, in the shape `protoc --go-grpc_out` produces.

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	BotGateway_CreateMatch_FullMethodName = "/planetwars.remote.BotGateway/CreateMatch"
	BotGateway_PlayMatch_FullMethodName   = "/planetwars.remote.BotGateway/PlayMatch"
)

// BotGatewayClient is the client API for BotGateway.
type BotGatewayClient interface {
	CreateMatch(ctx context.Context, in *CreateMatchRequest, opts ...grpc.CallOption) (*CreateMatchResponse, error)
	PlayMatch(ctx context.Context, opts ...grpc.CallOption) (BotGateway_PlayMatchClient, error)
}

type botGatewayClient struct {
	cc grpc.ClientConnInterface
}

// NewBotGatewayClient builds a client bound to cc.
func NewBotGatewayClient(cc grpc.ClientConnInterface) BotGatewayClient {
	return &botGatewayClient{cc}
}

func (c *botGatewayClient) CreateMatch(ctx context.Context, in *CreateMatchRequest, opts ...grpc.CallOption) (*CreateMatchResponse, error) {
	out := new(CreateMatchResponse)
	if err := c.cc.Invoke(ctx, BotGateway_CreateMatch_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *botGatewayClient) PlayMatch(ctx context.Context, opts ...grpc.CallOption) (BotGateway_PlayMatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &BotGateway_ServiceDesc.Streams[0], BotGateway_PlayMatch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &botGatewayPlayMatchClient{stream}, nil
}

// BotGateway_PlayMatchClient is the bidirectional stream from the remote
// bot's perspective: it sends ClientMessage and receives ServerMessage.
type BotGateway_PlayMatchClient interface {
	Send(*ClientMessage) error
	Recv() (*ServerMessage, error)
	grpc.ClientStream
}

type botGatewayPlayMatchClient struct {
	grpc.ClientStream
}

func (x *botGatewayPlayMatchClient) Send(m *ClientMessage) error {
	return x.ClientStream.SendMsg(m)
}

func (x *botGatewayPlayMatchClient) Recv() (*ServerMessage, error) {
	m := new(ServerMessage)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// BotGatewayServer is the server API for BotGateway.
type BotGatewayServer interface {
	CreateMatch(context.Context, *CreateMatchRequest) (*CreateMatchResponse, error)
	PlayMatch(BotGateway_PlayMatchServer) error
}

// UnimplementedBotGatewayServer can be embedded to satisfy forward
// compatibility with future RPCs.
type UnimplementedBotGatewayServer struct{}

func (UnimplementedBotGatewayServer) CreateMatch(context.Context, *CreateMatchRequest) (*CreateMatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateMatch not implemented")
}
func (UnimplementedBotGatewayServer) PlayMatch(BotGateway_PlayMatchServer) error {
	return status.Errorf(codes.Unimplemented, "method PlayMatch not implemented")
}

// BotGateway_PlayMatchServer is the bidirectional stream from the server's
// perspective: it receives ClientMessage and sends ServerMessage.
type BotGateway_PlayMatchServer interface {
	Send(*ServerMessage) error
	Recv() (*ClientMessage, error)
	grpc.ServerStream
}

type botGatewayPlayMatchServer struct {
	grpc.ServerStream
}

func (x *botGatewayPlayMatchServer) Send(m *ServerMessage) error {
	return x.ServerStream.SendMsg(m)
}

func (x *botGatewayPlayMatchServer) Recv() (*ClientMessage, error) {
	m := new(ClientMessage)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func RegisterBotGatewayServer(s grpc.ServiceRegistrar, srv BotGatewayServer) {
	s.RegisterService(&BotGateway_ServiceDesc, srv)
}

func _BotGateway_CreateMatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateMatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BotGatewayServer).CreateMatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BotGateway_CreateMatch_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BotGatewayServer).CreateMatch(ctx, req.(*CreateMatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _BotGateway_PlayMatch_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(BotGatewayServer).PlayMatch(&botGatewayPlayMatchServer{stream})
}

// BotGateway_ServiceDesc is the grpc.ServiceDesc for BotGateway.
var BotGateway_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "planetwars.remote.BotGateway",
	HandlerType: (*BotGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateMatch",
			Handler:    _BotGateway_CreateMatch_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "PlayMatch",
			Handler:       _BotGateway_PlayMatch_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "pw_remote.proto",
}
