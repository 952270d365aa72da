package grpc

import (
	"context"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/server/apierr"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	tokenKey  ctxKey = "token"
)

// ClaimsFromContext returns the claims attached by the interceptor.
func ClaimsFromContext(ctx context.Context) (models.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(models.Claims)
	return c, ok
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

func tokenFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthTokenMetadataKey); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) authTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if s.protected[info.FullMethod] {

		token := tokenFromMetadata(ctx)

		claims, err := s.auth.Authenticate(token)
		if err != nil {
			return nil, apierr.From(err).GRPC()
		}

		ctx = context.WithValue(ctx, claimsKey, claims)
		ctx = context.WithValue(ctx, tokenKey, token)
	}

	return handler(ctx, req)
}
