package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/skyauth/internal/client/models"
	"github.com/dmitrijs2005/skyauth/internal/common"
	pb "github.com/dmitrijs2005/skyauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// authClient is the subset of pb.AuthServiceClient used here.
type authClient interface {
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	WhoAmI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authClient

	mu    sync.RWMutex
	token string
}

func withAuthToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthTokenMetadataKey, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) authTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.currentToken(); token != "" {
		ctx = withAuthToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewAuthClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.authTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *GRPCClient) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		pb.FieldEmail:    email,
		pb.FieldPassword: password,
		pb.FieldRole:     role,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return toUser(pb.Sub(resp, pb.FieldUser)), nil
}

// Login authenticates and remembers the issued token for later calls.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		pb.FieldEmail:    email,
		pb.FieldPassword: password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setToken(pb.String(resp, pb.FieldToken))
	return toUser(pb.Sub(resp, pb.FieldUser)), nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*models.User, error) {
	resp, err := s.client.WhoAmI(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toUser(pb.Sub(resp, pb.FieldUser)), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return s.mapError(err)
	}
	if pb.String(resp, pb.FieldStatus) != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Logout forgets the token. Tokens are not revocable, so nothing is sent.
func (s *GRPCClient) Logout() { s.setToken("") }

func (s *GRPCClient) LoggedIn() bool { return s.currentToken() != "" }

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func toUser(u *structpb.Struct) *models.User {
	return &models.User{
		ID:    pb.String(u, pb.FieldID),
		Email: pb.String(u, pb.FieldEmail),
		Role:  pb.String(u, pb.FieldRole),
	}
}

func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return &serverError{kind: ErrUnauthorized, msg: st.Message()}
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return errors.New(st.Message())
	}
}

// serverError carries the server's message while matching a sentinel.
type serverError struct {
	kind error
	msg  string
}

func (e *serverError) Error() string { return e.msg }
func (e *serverError) Unwrap() error { return e.kind }
