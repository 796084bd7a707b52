package grpc

import (
	"context"
	"time"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
	grpcgo "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokenMetadataKey carries the session token on incoming calls.
const TokenMetadataKey = "x-auth-token"

type userIDKey struct{}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user resolved by the auth interceptors.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

func authenticate(ctx context.Context, auth domain.AuthUseCase, log *logrus.Logger, method string) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	tokens := md.Get(TokenMetadataKey)
	if len(tokens) == 0 || tokens[0] == "" {
		log.Warnf("gRPC Interceptor: Missing %s metadata on %s", TokenMetadataKey, method)
		return nil, status.Error(codes.Unauthenticated, "auth token required")
	}

	userID, err := auth.Authenticate(ctx, tokens[0])
	if err != nil {
		log.Warnf("gRPC Interceptor: Token rejected on %s: %v", method, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return withUserID(ctx, userID), nil
}

func UnaryAuthInterceptor(auth domain.AuthUseCase, log *logrus.Logger) grpcgo.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpcgo.UnaryServerInfo, handler grpcgo.UnaryHandler) (interface{}, error) {
		ctx, err := authenticate(ctx, auth, log, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

type authedStream struct {
	grpcgo.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context {
	return s.ctx
}

func StreamAuthInterceptor(auth domain.AuthUseCase, log *logrus.Logger) grpcgo.StreamServerInterceptor {
	return func(srv interface{}, ss grpcgo.ServerStream, info *grpcgo.StreamServerInfo, handler grpcgo.StreamHandler) error {
		ctx, err := authenticate(ss.Context(), auth, log, info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

func UnaryLoggingInterceptor(log *logrus.Logger) grpcgo.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpcgo.UnaryServerInfo, handler grpcgo.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := log.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       status.Code(err).String(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.Warn("gRPC call failed")
		} else {
			entry.Info("gRPC call completed")
		}
		return resp, err
	}
}

// NewServer builds a gRPC server with the order service and its interceptors registered.
func NewServer(orders domain.OrderUseCase, auth domain.AuthUseCase, log *logrus.Logger) *grpcgo.Server {
	server := grpcgo.NewServer(
		grpcgo.ChainUnaryInterceptor(UnaryLoggingInterceptor(log), UnaryAuthInterceptor(auth, log)),
		grpcgo.ChainStreamInterceptor(StreamAuthInterceptor(auth, log)),
	)
	RegisterOrderServiceServer(server, NewOrderHandler(orders, auth, log))
	log.Info("gRPC OrderService registered.")
	return server
}
