package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type HTTPServer struct {
	srv *http.Server
}

func NewHTTP(addr string, opts Options) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
	}
}

func (s *HTTPServer) Register(h http.Handler) {
	s.srv.Handler = h
}

func (s *HTTPServer) Addr() string {
	return s.srv.Addr
}

// Run blocks until the server stops. A graceful Close is not an error.
func (s *HTTPServer) Run() error {
	return ignoreClosed(s.srv.ListenAndServe())
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(l net.Listener) error {
	return ignoreClosed(s.srv.Serve(l))
}

func (s *HTTPServer) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
