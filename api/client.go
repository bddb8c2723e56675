package api

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidbalbert/lsr/router"
	"github.com/davidbalbert/lsr/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type Client struct {
	*grpc.ClientConn
	rpcClient *rpc.APIClient
}

func NewClient(socketPath string) (*Client, error) {
	target := fmt.Sprintf("unix://%s", socketPath)
	conn, err := grpc.Dial(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	return newClient(conn), nil
}

func newClient(conn *grpc.ClientConn) *Client {
	return &Client{
		ClientConn: conn,
		rpcClient:  rpc.NewAPIClient(conn),
	}
}

func (c *Client) GetVersion(ctx context.Context) (string, error) {
	resp, err := c.rpcClient.GetVersion(ctx)
	if err != nil {
		return "", err
	}

	return rpc.DecodeVersion(resp)
}

func (c *Client) GetTopology(ctx context.Context) (rpc.Header, []router.LinkState, error) {
	resp, err := c.rpcClient.GetTopology(ctx)
	if err != nil {
		return rpc.Header{}, nil, err
	}

	return rpc.DecodeTopology(resp)
}

func (c *Client) GetNeighbors(ctx context.Context) (rpc.Header, []router.Neighbor, error) {
	resp, err := c.rpcClient.GetNeighbors(ctx)
	if err != nil {
		return rpc.Header{}, nil, err
	}

	return rpc.DecodeNeighbors(resp)
}

func (c *Client) GetRoutingTable(ctx context.Context) (rpc.Header, []router.Route, error) {
	resp, err := c.rpcClient.GetRoutingTable(ctx)
	if err != nil {
		return rpc.Header{}, nil, err
	}

	return rpc.DecodeRoutingTable(resp)
}

// WatchRoutingTable calls f with every routing table the router publishes, starting
// with the current one, until ctx is done, the server goes away, or f returns an error.
func (c *Client) WatchRoutingTable(ctx context.Context, f func(rpc.Header, []router.Route) error) error {
	stream, err := c.rpcClient.WatchRoutingTable(ctx)
	if err != nil {
		return err
	}

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil
		} else if err != nil {
			return err
		}

		h, routes, err := rpc.DecodeRoutingTable(resp)
		if err != nil {
			return err
		}

		if err := f(h, routes); err != nil {
			return err
		}
	}
}
