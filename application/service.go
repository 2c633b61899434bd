package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const serviceShutdownTimeout = 10 * time.Second

type GatewayServiceParams struct {
	ListenAddr string
	Handler    http.Handler

	// Poller may be nil when interval polling is disabled.
	Poller *DevicePoller

	Log zerolog.Logger
}

// GatewayService runs the inbound HTTP surface and the optional poll loop
// until the context is cancelled.
type GatewayService struct {
	params GatewayServiceParams

	log zerolog.Logger
}

func NewGatewayService(params GatewayServiceParams) (*GatewayService, error) {
	if params.ListenAddr == "" {
		return nil, fmt.Errorf("ListenAddr is empty")
	}
	if params.Handler == nil {
		return nil, fmt.Errorf("Handler is nil")
	}

	return &GatewayService{params: params, log: params.Log}, nil
}

func (s *GatewayService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:              s.params.ListenAddr,
		Handler:           s.params.Handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		s.log.Info().Str("addr", server.Addr).Msg("http server listening")

		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serviceShutdownTimeout)
		defer cancel()

		s.log.Info().Msg("http server shutting down")
		return server.Shutdown(shutdownCtx)
	})

	if s.params.Poller != nil {
		g.Go(func() error {
			return s.params.Poller.Run(ctx)
		})
	}

	return g.Wait()
}
