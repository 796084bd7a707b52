package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"grouporder/internal/delivery"
	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
	grpcgo "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	users   domain.AuthUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, users domain.AuthUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		users:   users,
		log:     logger,
	}
}

// toStruct converts v through its JSON form, so gRPC clients see the same
// field names as HTTP clients.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func encode(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

func orderIDOf(req *structpb.Struct) (string, error) {
	id := req.GetFields()["order_id"].GetStringValue()
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "order_id is required")
	}
	return id, nil
}

func (h *OrderHandler) emails(ctx context.Context) map[string]string {
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.log.Warnf("gRPC Handler: Failed to load users for summary: %v", err)
		return nil
	}
	return domain.Snapshot{Users: users}.UserEmails()
}

func (h *OrderHandler) ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID := UserIDFromContext(ctx)
	h.log.Infof("gRPC Handler: Received ListOrders request for UserID: %s", userID)

	orders, err := h.useCase.ListVisibleOrders(ctx, userID)
	if err != nil {
		h.log.Errorf("gRPC Handler: ListVisibleOrders use case error for UserID %s: %v", userID, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	h.log.Infof("gRPC Handler: Listed %d orders for UserID %s", len(orders), userID)
	return encode(map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := orderIDOf(req)
	if err != nil {
		return nil, err
	}
	userID := UserIDFromContext(ctx)
	h.log.Infof("gRPC Handler: Received GetSummary request for OrderID: %s", orderID)

	summary, err := h.useCase.GetSummary(ctx, userID, orderID)
	if err != nil {
		h.log.Warnf("gRPC Handler: GetSummary use case error for OrderID %s: %v", orderID, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return encode(delivery.NewSummaryView(*summary, h.emails(ctx)))
}

func (h *OrderHandler) GetShareLink(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, err := orderIDOf(req)
	if err != nil {
		return nil, err
	}

	link, err := h.useCase.ShareLink(ctx, UserIDFromContext(ctx), orderID)
	if err != nil {
		h.log.Warnf("gRPC Handler: ShareLink use case error for OrderID %s: %v", orderID, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return encode(map[string]string{"url": link})
}

func (h *OrderHandler) WatchSummary(req *structpb.Struct, stream grpcgo.ServerStream) error {
	orderID, err := orderIDOf(req)
	if err != nil {
		return err
	}
	ctx := stream.Context()
	userID := UserIDFromContext(ctx)

	summaries, err := h.useCase.WatchSummary(ctx, userID, orderID)
	if err != nil {
		h.log.Warnf("gRPC Handler: WatchSummary use case error for OrderID %s: %v", orderID, err)
		return mapDomainErrorToGrpcStatus(err)
	}

	h.log.Infof("gRPC Handler: Streaming summary of OrderID %s to UserID %s", orderID, userID)
	emails := h.emails(ctx)
	for s := range summaries {
		msg, err := encode(delivery.NewSummaryView(s, emails))
		if err != nil {
			return err
		}
		if err := stream.SendMsg(msg); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return status.FromContextError(ctx.Err()).Err()
	}
	return nil
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInUse):
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.IsUpstream(err):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
	}
}
