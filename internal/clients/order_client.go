package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"grouporder/internal/delivery"
	ordergrpc "grouporder/internal/delivery/grpc"
	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

type OrderServiceClient interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetSummary(ctx context.Context, orderID string) (*delivery.SummaryView, error)
	GetShareLink(ctx context.Context, orderID string) (string, error)
	// WatchSummary calls fn for every summary the server pushes until ctx ends,
	// the stream closes or fn returns an error.
	WatchSummary(ctx context.Context, orderID string, fn func(delivery.SummaryView) error) error
	Close() error
}

type orderServiceGRPCClient struct {
	conn  *grpc.ClientConn
	token string
	log   *logrus.Logger
}

// NewOrderServiceClient connects lazily to target and sends token with every call.
func NewOrderServiceClient(target, token string, logger *logrus.Logger, opts ...grpc.DialOption) (OrderServiceClient, error) {
	logger.Infof("OrderClient: Creating gRPC client for target: %s", target)
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		logger.Errorf("OrderClient: Failed to create client for %s: %v", target, err)
		return nil, fmt.Errorf("failed to connect to order service at %s: %w", target, err)
	}

	return &orderServiceGRPCClient{
		conn:  conn,
		token: token,
		log:   logger,
	}, nil
}

func (c *orderServiceGRPCClient) Close() error {
	if c.conn != nil {
		c.log.Info("OrderClient: Closing gRPC connection")
		return c.conn.Close()
	}
	return nil
}

func (c *orderServiceGRPCClient) outgoing(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ordergrpc.TokenMetadataKey, c.token)
}

func orderRequest(orderID string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"order_id": orderID})
}

// decodeStruct reverses the server's JSON-shaped encoding into target.
func decodeStruct(in *structpb.Struct, target interface{}) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (c *orderServiceGRPCClient) invoke(ctx context.Context, method string, req *structpb.Struct, target interface{}) error {
	c.log.Debugf("OrderClient(gRPC): Calling %s", method)
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), method, req, resp); err != nil {
		return err
	}
	return decodeStruct(resp, target)
}

func (c *orderServiceGRPCClient) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := c.invoke(ctx, ordergrpc.ListOrdersMethod, &structpb.Struct{}, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *orderServiceGRPCClient) GetSummary(ctx context.Context, orderID string) (*delivery.SummaryView, error) {
	req, err := orderRequest(orderID)
	if err != nil {
		return nil, err
	}
	var view delivery.SummaryView
	if err := c.invoke(ctx, ordergrpc.GetSummaryMethod, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *orderServiceGRPCClient) GetShareLink(ctx context.Context, orderID string) (string, error) {
	req, err := orderRequest(orderID)
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.invoke(ctx, ordergrpc.GetShareLinkMethod, req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *orderServiceGRPCClient) WatchSummary(ctx context.Context, orderID string, fn func(delivery.SummaryView) error) error {
	req, err := orderRequest(orderID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.conn.NewStream(c.outgoing(ctx), &ordergrpc.OrderServiceDesc.Streams[0], ordergrpc.WatchSummaryMethod)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(req); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var view delivery.SummaryView
		if err := decodeStruct(msg, &view); err != nil {
			return err
		}
		if err := fn(view); err != nil {
			return err
		}
	}
}
