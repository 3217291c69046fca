package rpc_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/auth"
	"clinic-scheduling-api/internal/booking"
	"clinic-scheduling-api/internal/model"
	"clinic-scheduling-api/internal/rpc"
)

const secret = "rpc-secret"

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, email, password string) (*auth.Session, error) {
	if email != "fernanda@cisd.cl" || password != "cisd2026" {
		return nil, apperr.Unauthorized("invalid credentials", auth.ErrWrongPassword)
	}
	u := auth.User{ID: 1, Email: email, Name: "Fernanda Dreyse"}
	now := time.Now()
	tok, err := auth.MakeToken(u, secret, now, auth.SessionTTL)
	if err != nil {
		return nil, err
	}
	return &auth.Session{Token: tok, ExpiresAt: now.Add(auth.SessionTTL), User: u}, nil
}

type fakeBooker struct {
	mu       sync.Mutex
	lastReq  booking.Request
	from, to time.Time
	err      error
}

func (b *fakeBooker) Book(_ context.Context, req booking.Request) (*model.Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastReq = req
	if b.err != nil {
		return nil, b.err
	}
	link := "https://meet.google.com/abc-defg-hij"
	return &model.Appointment{
		ID:             7,
		StartTime:      req.StartTime,
		EndTime:        req.StartTime.Add(45 * time.Minute),
		ProfessionalID: req.ProfessionalID,
		Status:         model.StatusConfirmed,
		MeetLink:       &link,
	}, nil
}

func (b *fakeBooker) Agenda(_ context.Context, _ uint, from, to time.Time) ([]model.Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.from, b.to = from, to
	return []model.Appointment{}, nil
}

func (b *fakeBooker) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *fakeBooker) seen() (booking.Request, time.Time, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastReq, b.from, b.to
}

type fakeCatalog struct{}

func (fakeCatalog) ListProfessionals(context.Context) ([]model.Professional, error) {
	return []model.Professional{{ID: 1, Name: "Fernanda Dreyse", Password: "hash"}}, nil
}

func (fakeCatalog) ListServices(context.Context) ([]model.Service, error) {
	return nil, errors.New("redis: connection pool timeout")
}

func dial(t *testing.T, loginPerMinute int) (*rpc.Client, *fakeBooker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bk := &fakeBooker{}
	gs := rpc.NewGRPCServer(ctx, rpc.NewServer(fakeAuth{}, bk, fakeCatalog{}, time.UTC, nil), auth.NewService(nil, secret), loginPerMinute, nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return rpc.NewClient(cc), bk
}

func authed(t *testing.T, c *rpc.Client) context.Context {
	t.Helper()
	resp, err := c.Login(context.Background(), &rpc.LoginRequest{Email: "fernanda@cisd.cl", Password: "cisd2026"})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+resp.Token)
}

func TestLogin(t *testing.T) {
	c, _ := dial(t, 100)

	resp, err := c.Login(context.Background(), &rpc.LoginRequest{Email: "fernanda@cisd.cl", Password: "cisd2026"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, uint(1), resp.User.ID)

	_, err = c.Login(context.Background(), &rpc.LoginRequest{Email: "fernanda@cisd.cl", Password: "nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid credentials", status.Convert(err).Message())
}

func TestLoginRateLimited(t *testing.T) {
	c, _ := dial(t, 2)
	req := &rpc.LoginRequest{Email: "fernanda@cisd.cl", Password: "nope"}

	for i := 0; i < 2; i++ {
		_, err := c.Login(context.Background(), req)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	}
	_, err := c.Login(context.Background(), req)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestCatalogIsOpen(t *testing.T) {
	c, _ := dial(t, 100)

	resp, err := c.ListProfessionals(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Professionals, 1)
	assert.Empty(t, resp.Professionals[0].Password)

	_, err = c.ListServices(context.Background())
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "internal error", status.Convert(err).Message())
}

func TestAppointmentsRequireSession(t *testing.T) {
	c, _ := dial(t, 100)

	_, err := c.ListAppointments(context.Background(), &rpc.ListAppointmentsRequest{ProfessionalID: 1, Start: "2025-06-01", End: "2025-06-01"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer garbage")
	_, err = c.CreateAppointment(bad, &rpc.CreateAppointmentRequest{ProfessionalID: 1})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestListAppointmentsRange(t *testing.T) {
	c, bk := dial(t, 100)
	ctx := authed(t, c)

	resp, err := c.ListAppointments(ctx, &rpc.ListAppointmentsRequest{ProfessionalID: 1, Start: "2025-06-01", End: "2025-06-01"})
	require.NoError(t, err)
	assert.Empty(t, resp.Appointments)
	_, from, to := bk.seen()
	assert.True(t, from.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), from)
	assert.True(t, to.Equal(time.Date(2025, 6, 1, 23, 59, 59, 999999999, time.UTC)), to)

	_, err = c.ListAppointments(ctx, &rpc.ListAppointmentsRequest{ProfessionalID: 1, Start: "yesterday", End: "2025-06-01"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCreateAppointment(t *testing.T) {
	c, bk := dial(t, 100)
	ctx := authed(t, c)

	resp, err := c.CreateAppointment(ctx, &rpc.CreateAppointmentRequest{
		ProfessionalID: 1,
		RUT:            "12.345.678-5",
		PatientName:    "Juan Pérez",
		ServiceCode:    "FA-TEL",
		StartTime:      "2025-06-01T10:00:00",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Appointment)
	last, _, _ := bk.seen()
	assert.True(t, last.StartTime.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "FA-TEL", last.ServiceCode)
	assert.True(t, resp.Appointment.EndTime.Equal(time.Date(2025, 6, 1, 10, 45, 0, 0, time.UTC)))
	require.NotNil(t, resp.Appointment.MeetLink)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", *resp.Appointment.MeetLink)
}

func TestCreateAppointmentErrors(t *testing.T) {
	c, bk := dial(t, 100)
	ctx := authed(t, c)
	req := &rpc.CreateAppointmentRequest{ProfessionalID: 1, RUT: "12345678-5", ServiceCode: "XX", StartTime: "2025-06-01T10:00:00Z"}

	bk.fail(apperr.UnknownReference(`unknown service "XX"`))
	_, err := c.CreateAppointment(ctx, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, `unknown service "XX"`, status.Convert(err).Message())

	bk.fail(apperr.Internal("save appointment", errors.New("pq: deadlock detected")))
	_, err = c.CreateAppointment(ctx, req)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "internal error", status.Convert(err).Message())

	bk.fail(nil)
	req.StartTime = "soon"
	_, err = c.CreateAppointment(ctx, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
