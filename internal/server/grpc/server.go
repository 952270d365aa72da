package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/skyauth/internal/logging"
	pb "github.com/dmitrijs2005/skyauth/internal/proto"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/dmitrijs2005/skyauth/internal/server/services"
	"google.golang.org/grpc"
)

// AuthService is what the gRPC surface needs from the service layer.
type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	WhoAmI(ctx context.Context, token string) (*models.User, error)
	Authenticate(token string) (models.Claims, error)
}

type GRPCServer struct {
	address   string
	auth      AuthService
	logger    logging.Logger
	protected map[string]bool
}

// NewGRPCServer builds the server. WhoAmI always requires a token; protected
// names further full methods that do. The set is read-only afterwards.
func NewGRPCServer(a string, l logging.Logger, as AuthService, protected ...string) *GRPCServer {
	p := map[string]bool{pb.MethodWhoAmI: true}
	for _, m := range protected {
		p[m] = true
	}
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		auth:      as,
		protected: p,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.authTokenInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
