package rpc

import (
	"context"

	"github.com/davidbalbert/lsr/router"
	"github.com/davidbalbert/lsr/sync"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// APIService is what the daemon exposes. Snapshots are read from the notifier, so the
// server never touches live router state.
type APIService interface {
	GetVersion(ctx context.Context) (string, error)
	Snapshots() *sync.Notifier[*router.Snapshot]
}

type Server struct {
	apiService APIService
}

var _ APIServer = &Server{}

func NewAPIServer(apiService APIService) *Server {
	return &Server{
		apiService: apiService,
	}
}

func (s *Server) current() *router.Snapshot {
	snap, _ := s.apiService.Snapshots().LastChange()
	return snap
}

func internal(st *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}

	return st, nil
}

func (s *Server) GetVersion(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	version, err := s.apiService.GetVersion(ctx)
	if err != nil {
		return nil, err
	}

	return internal(structpb.NewStruct(map[string]interface{}{
		"version": version,
	}))
}

func (s *Server) GetTopology(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return internal(EncodeTopology(s.current()))
}

func (s *Server) GetNeighbors(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return internal(EncodeNeighbors(s.current()))
}

func (s *Server) GetRoutingTable(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return internal(EncodeRoutingTable(s.current()))
}

// WatchRoutingTable sends the current routing table, then one message for every snapshot
// published after it. Snapshots published while a send is in flight are coalesced.
func (s *Server) WatchRoutingTable(req *emptypb.Empty, stream API_WatchRoutingTableServer) error {
	ctx := stream.Context()
	snap, seq := s.apiService.Snapshots().LastChange()

	for {
		st, err := internal(EncodeRoutingTable(snap))
		if err != nil {
			return err
		}

		if err := stream.Send(st); err != nil {
			return err
		}

		var ok bool
		snap, seq, ok = s.apiService.Snapshots().AwaitChange(ctx, seq)
		if !ok {
			return nil
		}
	}
}
