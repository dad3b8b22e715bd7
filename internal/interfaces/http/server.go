package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/promptpage/promptpay-daemon/internal/core/application"
)

// Server wraps the REST interface into a lifecycle the daemon can start and
// stop.
type Server struct {
	srv *http.Server
}

// NewServer returns a server listening on the given port.
func NewServer(port int, svc *application.PaymentService) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      NewHandler(svc),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Start serves the REST interface until Stop is called. It blocks.
func (s *Server) Start() error {
	log.Infof("http interface listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutting down http interface")
	}
}
