package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/skyauth/internal/proto"
	"github.com/dmitrijs2005/skyauth/internal/server/apierr"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Registration request")

	u, err := s.auth.Register(ctx, pb.String(req, pb.FieldEmail), pb.String(req, pb.FieldPassword), pb.String(req, pb.FieldRole))
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return s.respond(ctx, map[string]interface{}{
		pb.FieldMessage: "User created",
		pb.FieldUser:    userFields(u),
	})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	res, err := s.auth.Login(ctx, pb.String(req, pb.FieldEmail), pb.String(req, pb.FieldPassword))
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return s.respond(ctx, map[string]interface{}{
		pb.FieldToken: res.Token,
		pb.FieldUser:  userFields(res.User),
	})
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	u, err := s.auth.WhoAmI(ctx, tokenFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return s.respond(ctx, map[string]interface{}{pb.FieldUser: userFields(u)})
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	return s.respond(ctx, map[string]interface{}{pb.FieldStatus: "OK"})

}

func userFields(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		pb.FieldID:    u.ID,
		pb.FieldEmail: u.Email,
		pb.FieldRole:  u.Role,
	}
}

func (s *GRPCServer) respond(ctx context.Context, m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return out, nil
}

// fail converts err to a status error, logging causes that are hidden from
// the caller.
func (s *GRPCServer) fail(ctx context.Context, err error) error {
	e := apierr.From(err)
	if e.Internal() {
		s.logger.Error(ctx, err.Error())
	}
	return e.GRPC()
}
