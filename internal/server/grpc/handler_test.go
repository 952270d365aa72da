package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/logging"
	pb "github.com/dmitrijs2005/skyauth/internal/proto"
	"github.com/dmitrijs2005/skyauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/skyauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// startBufconn serves s in-process and returns a connected client.
func startBufconn(t *testing.T, s *GRPCServer) *pb.AuthServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := s.newServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewAuthServiceClient(conn)
}

func msg(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := startBufconn(t, NewGRPCServer("", logging.Nop{}, newAuthService(t, users.NewMemoryRepository())))

	out, err := c.Register(ctx, msg(t, map[string]interface{}{"email": "a@x.com", "password": "secret1", "role": "user"}))
	require.NoError(t, err)
	assert.Equal(t, "User created", pb.String(out, pb.FieldMessage))
	u := pb.Sub(out, pb.FieldUser)
	id := pb.String(u, pb.FieldID)
	require.NotEmpty(t, id)
	assert.Equal(t, "a@x.com", pb.String(u, pb.FieldEmail))

	out, err = c.Login(ctx, msg(t, map[string]interface{}{"email": "a@x.com", "password": "secret1"}))
	require.NoError(t, err)
	tok := pb.String(out, pb.FieldToken)
	require.NotEmpty(t, tok)
	assert.Equal(t, id, pb.String(pb.Sub(out, pb.FieldUser), pb.FieldID))

	mdCtx := metadata.AppendToOutgoingContext(ctx, common.AuthTokenMetadataKey, tok)
	out, err = c.WhoAmI(mdCtx, &structpb.Struct{})
	require.NoError(t, err)
	me := pb.Sub(out, pb.FieldUser)
	assert.Equal(t, id, pb.String(me, pb.FieldID))
	assert.Equal(t, "a@x.com", pb.String(me, pb.FieldEmail))
	assert.Equal(t, "user", pb.String(me, pb.FieldRole))

	_, err = c.Login(ctx, msg(t, map[string]interface{}{"email": "a@x.com", "password": "wrong"}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "Invalid credentials", status.Convert(err).Message())
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	c := startBufconn(t, NewGRPCServer("", logging.Nop{}, newAuthService(t, users.NewMemoryRepository())))

	req := msg(t, map[string]interface{}{"email": "a@x.com", "password": "secret1"})
	_, err := c.Register(ctx, req)
	require.NoError(t, err)

	_, err = c.Register(ctx, req)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	assert.Equal(t, "User already exists", status.Convert(err).Message())

	_, err = c.Register(ctx, msg(t, map[string]interface{}{"email": "bad", "password": "secret1"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRegister_Concurrent(t *testing.T) {
	c := startBufconn(t, NewGRPCServer("", logging.Nop{}, newAuthService(t, users.NewMemoryRepository())))
	const n = 8

	var wg sync.WaitGroup
	codesOut := make([]codes.Code, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, _ := structpb.NewStruct(map[string]interface{}{"email": "race@x.com", "password": "secret1"})
			_, err := c.Register(context.Background(), req)
			codesOut[i] = status.Code(err)
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, code := range codesOut {
		switch code {
		case codes.OK:
			ok++
		case codes.AlreadyExists:
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestWhoAmI_Errors(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepository()
	c := startBufconn(t, NewGRPCServer("", logging.Nop{}, newAuthService(t, repo)))

	_, err := c.WhoAmI(ctx, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "No token provided", status.Convert(err).Message())

	_, err = c.WhoAmI(metadata.AppendToOutgoingContext(ctx, common.AuthTokenMetadataKey, "garbage"), &structpb.Struct{})
	assert.Equal(t, "Invalid token", status.Convert(err).Message())

	_, err = c.Register(ctx, msg(t, map[string]interface{}{"email": "a@x.com", "password": "secret1"}))
	require.NoError(t, err)
	out, err := c.Login(ctx, msg(t, map[string]interface{}{"email": "a@x.com", "password": "secret1"}))
	require.NoError(t, err)

	repo.Delete(pb.String(pb.Sub(out, pb.FieldUser), pb.FieldID))

	_, err = c.WhoAmI(metadata.AppendToOutgoingContext(ctx, common.AuthTokenMetadataKey, pb.String(out, pb.FieldToken)), &structpb.Struct{})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "User not found", status.Convert(err).Message())
}

type brokenAuth struct{ fakeAuth }

func (brokenAuth) Login(context.Context, string, string) (*services.LoginResult, error) {
	return nil, errors.New("dial tcp 10.1.2.3:5432: connection refused")
}

func TestInternalErrorIsOpaque(t *testing.T) {
	c := startBufconn(t, NewGRPCServer("", logging.Nop{}, &brokenAuth{}))

	_, err := c.Login(context.Background(), msg(t, map[string]interface{}{"email": "a@x.com", "password": "x"}))
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "Internal server error", status.Convert(err).Message())
}

func TestPing(t *testing.T) {
	c := startBufconn(t, NewGRPCServer("", logging.Nop{}, &fakeAuth{}))

	out, err := c.Ping(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pb.String(out, pb.FieldStatus))
}
