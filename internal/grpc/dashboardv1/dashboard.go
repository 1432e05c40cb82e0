// Package dashboardv1 holds the gRPC service definition for aims.diagnostics.v1.Dashboard.
// Every method exchanges google.protobuf.Struct messages.
package dashboardv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "aims.diagnostics.v1.Dashboard"

const (
	Dashboard_Diagnose_FullMethodName      = "/" + ServiceName + "/Diagnose"
	Dashboard_CycleScenario_FullMethodName = "/" + ServiceName + "/CycleScenario"
	Dashboard_EditField_FullMethodName     = "/" + ServiceName + "/EditField"
	Dashboard_GetDashboard_FullMethodName  = "/" + ServiceName + "/GetDashboard"
	Dashboard_ListScenarios_FullMethodName = "/" + ServiceName + "/ListScenarios"
)

// DashboardServer is the server API for the Dashboard service.
type DashboardServer interface {
	Diagnose(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CycleScenario(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditField(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListScenarios(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedDashboardServer can be embedded to have forward compatible implementations.
type UnimplementedDashboardServer struct{}

func (UnimplementedDashboardServer) Diagnose(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Diagnose")
}

func (UnimplementedDashboardServer) CycleScenario(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CycleScenario")
}

func (UnimplementedDashboardServer) EditField(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("EditField")
}

func (UnimplementedDashboardServer) GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetDashboard")
}

func (UnimplementedDashboardServer) ListScenarios(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ListScenarios")
}

// RegisterDashboardServer attaches srv to the registrar.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&Dashboard_ServiceDesc, srv)
}

type unaryCall func(DashboardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// methodHandler matches grpc.MethodDesc.Handler.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler(fullMethod string, call unaryCall) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Dashboard_ServiceDesc is the grpc.ServiceDesc for the Dashboard service.
var Dashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Diagnose",
			Handler:    unaryHandler(Dashboard_Diagnose_FullMethodName, DashboardServer.Diagnose),
		},
		{
			MethodName: "CycleScenario",
			Handler:    unaryHandler(Dashboard_CycleScenario_FullMethodName, DashboardServer.CycleScenario),
		},
		{
			MethodName: "EditField",
			Handler:    unaryHandler(Dashboard_EditField_FullMethodName, DashboardServer.EditField),
		},
		{
			MethodName: "GetDashboard",
			Handler:    unaryHandler(Dashboard_GetDashboard_FullMethodName, DashboardServer.GetDashboard),
		},
		{
			MethodName: "ListScenarios",
			Handler:    unaryHandler(Dashboard_ListScenarios_FullMethodName, DashboardServer.ListScenarios),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aims/diagnostics/v1/dashboard.proto",
}

// DashboardClient is the client API for the Dashboard service.
type DashboardClient interface {
	Diagnose(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CycleScenario(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	EditField(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetDashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListScenarios(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type dashboardClient struct {
	cc grpc.ClientConnInterface
}

// NewDashboardClient wraps a client connection.
func NewDashboardClient(cc grpc.ClientConnInterface) DashboardClient {
	return &dashboardClient{cc: cc}
}

func (c *dashboardClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) Diagnose(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_Diagnose_FullMethodName, in, opts)
}

func (c *dashboardClient) CycleScenario(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_CycleScenario_FullMethodName, in, opts)
}

func (c *dashboardClient) EditField(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_EditField_FullMethodName, in, opts)
}

func (c *dashboardClient) GetDashboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetDashboard_FullMethodName, in, opts)
}

func (c *dashboardClient) ListScenarios(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_ListScenarios_FullMethodName, in, opts)
}
