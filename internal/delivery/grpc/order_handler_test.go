package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMapDomainErrorToGrpcStatus(t *testing.T) {
	invalid := domain.NewValidationError()
	invalid.Add("user_ids", "unknown user")

	tests := []struct {
		err  error
		code codes.Code
	}{
		{invalid, codes.InvalidArgument},
		{domain.ErrUnauthenticated, codes.Unauthenticated},
		{fmt.Errorf("order o1: %w", domain.ErrForbidden), codes.PermissionDenied},
		{fmt.Errorf("get order: %w", domain.ErrNotFound), codes.NotFound},
		{domain.ErrAlreadyExists, codes.AlreadyExists},
		{domain.ErrInUse, codes.FailedPrecondition},
		{domain.Upstream("list orders", errors.New("connection refused")), codes.Unavailable},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.ResourceExhausted, "slow down"), codes.ResourceExhausted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(mapDomainErrorToGrpcStatus(tt.err)), tt.err.Error())
	}
	assert.NoError(t, mapDomainErrorToGrpcStatus(nil))
}

func TestOrderIDOf(t *testing.T) {
	req, err := structpb.NewStruct(map[string]interface{}{"order_id": "o1"})
	assert.NoError(t, err)
	id, err := orderIDOf(req)
	assert.NoError(t, err)
	assert.Equal(t, "o1", id)

	_, err = orderIDOf(&structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

type fakeAuth struct {
	domain.AuthUseCase
}

func (fakeAuth) Authenticate(_ context.Context, token string) (string, error) {
	if token == "good" {
		return "u1", nil
	}
	return "", domain.ErrUnauthenticated
}

func TestAuthenticate(t *testing.T) {
	log := quietLogger()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(TokenMetadataKey, "good"))
	authed, err := authenticate(ctx, fakeAuth{}, log, GetSummaryMethod)
	assert.NoError(t, err)
	assert.Equal(t, "u1", UserIDFromContext(authed))

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs(TokenMetadataKey, "bad"))
	_, err = authenticate(ctx, fakeAuth{}, log, GetSummaryMethod)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = authenticate(context.Background(), fakeAuth{}, log, GetSummaryMethod)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Empty(t, UserIDFromContext(context.Background()))
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
