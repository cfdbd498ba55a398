package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	return port
}

func TestRun(t *testing.T) {
	t.Run("Stops when the context is canceled", func(t *testing.T) {
		// Given: a running server
		ctx, cancel := context.WithCancel(context.Background())
		srv := New(freePort(t), http.NotFoundHandler(), 10*time.Second)

		done := make(chan error, 1)
		go func() { done <- Run(ctx, srv) }()

		// When: the context is canceled
		cancel()

		// Then: Run returns without error
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Returns listen errors", func(t *testing.T) {
		// Given: a port that is already taken
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		_, port, err := net.SplitHostPort(listener.Addr().String())
		require.NoError(t, err)

		srv := New(port, http.NotFoundHandler(), 0)
		srv.Addr = listener.Addr().String()

		// When: the server tries to listen on it
		err = Run(context.Background(), srv)

		// Then: the error is returned
		assert.ErrorContains(t, err, "failed to start server")
	})
}
