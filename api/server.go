package api

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"os"

	"github.com/davidbalbert/lsr/router"
	"github.com/davidbalbert/lsr/rpc"
	"github.com/davidbalbert/lsr/sync"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

type Server struct {
	snapshots *sync.Notifier[*router.Snapshot]
	socket    string
	version   string
	log       *slog.Logger
}

func NewServer(snapshots *sync.Notifier[*router.Snapshot], socket string, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		snapshots: snapshots,
		socket:    socket,
		version:   version,
		log:       logger,
	}
}

// Run serves the API on a unix socket until ctx is done. A stale socket left by an
// earlier run is removed first.
func (s *Server) Run(ctx context.Context) error {
	if err := os.Remove(s.socket); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	listener, err := net.Listen("unix", s.socket)
	if err != nil {
		return err
	}

	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	grpcServer := grpc.NewServer()
	rpcServer := rpc.NewAPIServer(s)

	rpc.RegisterAPIServer(grpcServer, rpcServer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("api listening", "addr", listener.Addr().String())
		return grpcServer.Serve(listener)
	})

	g.Go(func() error {
		<-ctx.Done()
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}

func (s *Server) GetVersion(ctx context.Context) (string, error) {
	return s.version, nil
}

func (s *Server) Snapshots() *sync.Notifier[*router.Snapshot] {
	return s.snapshots
}
