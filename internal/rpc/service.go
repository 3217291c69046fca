package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "clinic.v1.Scheduling"

const (
	MethodLogin             = "/" + ServiceName + "/Login"
	MethodListProfessionals = "/" + ServiceName + "/ListProfessionals"
	MethodListServices      = "/" + ServiceName + "/ListServices"
	MethodListAppointments  = "/" + ServiceName + "/ListAppointments"
	MethodCreateAppointment = "/" + ServiceName + "/CreateAppointment"
)

// OpenMethods can be called without a session token.
var OpenMethods = map[string]bool{
	MethodLogin:             true,
	MethodListProfessionals: true,
	MethodListServices:      true,
}

type SchedulingServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ListProfessionals(context.Context, *Empty) (*ListProfessionalsResponse, error)
	ListServices(context.Context, *Empty) (*ListServicesResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*CreateAppointmentResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(MethodLogin, SchedulingServer.Login)},
		{MethodName: "ListProfessionals", Handler: unary(MethodListProfessionals, SchedulingServer.ListProfessionals)},
		{MethodName: "ListServices", Handler: unary(MethodListServices, SchedulingServer.ListServices)},
		{MethodName: "ListAppointments", Handler: unary(MethodListAppointments, SchedulingServer.ListAppointments)},
		{MethodName: "CreateAppointment", Handler: unary(MethodCreateAppointment, SchedulingServer.CreateAppointment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinic/v1/scheduling",
}

func unary[Req, Resp any](method string, call func(SchedulingServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SchedulingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(SchedulingServer), ctx, req.(*Req))
		})
	}
}

// Client calls the Scheduling service over a connection using Codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) ListProfessionals(ctx context.Context, opts ...grpc.CallOption) (*ListProfessionalsResponse, error) {
	return invoke[ListProfessionalsResponse](ctx, c.cc, MethodListProfessionals, &Empty{}, opts)
}

func (c *Client) ListServices(ctx context.Context, opts ...grpc.CallOption) (*ListServicesResponse, error) {
	return invoke[ListServicesResponse](ctx, c.cc, MethodListServices, &Empty{}, opts)
}

func (c *Client) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, MethodListAppointments, in, opts)
}

func (c *Client) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*CreateAppointmentResponse, error) {
	return invoke[CreateAppointmentResponse](ctx, c.cc, MethodCreateAppointment, in, opts)
}
