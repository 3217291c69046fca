package rpc

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/auth"
	"clinic-scheduling-api/internal/booking"
	"clinic-scheduling-api/internal/middleware"
	"clinic-scheduling-api/internal/model"
	"clinic-scheduling-api/internal/timefmt"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

type Booker interface {
	Book(ctx context.Context, req booking.Request) (*model.Appointment, error)
	Agenda(ctx context.Context, professionalID uint, from, to time.Time) ([]model.Appointment, error)
}

type Catalog interface {
	ListProfessionals(ctx context.Context) ([]model.Professional, error)
	ListServices(ctx context.Context) ([]model.Service, error)
}

// Server implements SchedulingServer on top of the same services as the REST API.
type Server struct {
	auth    Authenticator
	booker  Booker
	catalog Catalog
	loc     *time.Location
	log     *zap.Logger
}

func NewServer(a Authenticator, b Booker, c Catalog, loc *time.Location, log *zap.Logger) *Server {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: a, booker: b, catalog: c, loc: loc, log: log}
}

var _ SchedulingServer = (*Server)(nil)

func (s *Server) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	sess, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.status(err)
	}
	return &LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User}, nil
}

func (s *Server) ListProfessionals(ctx context.Context, _ *Empty) (*ListProfessionalsResponse, error) {
	out, err := s.catalog.ListProfessionals(ctx)
	if err != nil {
		return nil, s.status(apperr.Internal("list professionals", err))
	}
	if out == nil {
		out = []model.Professional{}
	}
	return &ListProfessionalsResponse{Professionals: out}, nil
}

func (s *Server) ListServices(ctx context.Context, _ *Empty) (*ListServicesResponse, error) {
	out, err := s.catalog.ListServices(ctx)
	if err != nil {
		return nil, s.status(apperr.Internal("list services", err))
	}
	if out == nil {
		out = []model.Service{}
	}
	return &ListServicesResponse{Services: out}, nil
}

func (s *Server) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	from, err := timefmt.Parse(req.Start, s.loc)
	if err != nil {
		return nil, s.status(apperr.Invalid("start is not a valid time"))
	}
	to, err := timefmt.ParseRangeEnd(req.End, s.loc)
	if err != nil {
		return nil, s.status(apperr.Invalid("end is not a valid time"))
	}
	out, err := s.booker.Agenda(ctx, req.ProfessionalID, from, to)
	if err != nil {
		return nil, s.status(err)
	}
	return &ListAppointmentsResponse{Appointments: out}, nil
}

func (s *Server) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*CreateAppointmentResponse, error) {
	br := booking.Request{
		ProfessionalID: req.ProfessionalID,
		RUT:            req.RUT,
		PatientName:    req.PatientName,
		PatientEmail:   req.PatientEmail,
		ServiceCode:    req.ServiceCode,
	}
	if strings.TrimSpace(req.StartTime) != "" {
		start, err := timefmt.Parse(req.StartTime, s.loc)
		if err != nil {
			return nil, s.status(apperr.Invalid("startTime is not a valid time"))
		}
		br.StartTime = start
	}
	a, err := s.booker.Book(ctx, br)
	if err != nil {
		return nil, s.status(err)
	}
	return &CreateAppointmentResponse{Appointment: a}, nil
}

func (s *Server) status(err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		s.log.Error("rpc failed", zap.Error(err))
	}
	return status.Error(apperr.GRPCCode(err), apperr.PublicMessage(err))
}

// Logger logs every unary call with its method, code and latency.
func Logger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		log.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}

// NewGRPCServer registers srv with the logging, rate limit and session
// interceptors. Login is limited to loginPerMinute calls per client IP.
// The limiter janitor stops when ctx is done.
func NewGRPCServer(ctx context.Context, srv SchedulingServer, v middleware.Verifier, loginPerMinute int, log *zap.Logger) *grpc.Server {
	if loginPerMinute <= 0 {
		loginPerMinute = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	rl := middleware.NewRateLimiter(ctx, float64(loginPerMinute)/60, loginPerMinute)
	gs := grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(
			Logger(log),
			middleware.RateLimit(rl, map[string]bool{MethodLogin: true}),
			middleware.Auth(v, OpenMethods),
		),
	)
	gs.RegisterService(&ServiceDesc, srv)
	return gs
}
