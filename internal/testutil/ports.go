package testutil

import (
	"net"
	"testing"
)

// GetRandomListeningPort returns a "localhost:port" address that was free
// at the time of the call.
func GetRandomListeningPort(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to get random port: %v", err)
	}
	addr := listener.Addr().String()
	if err := listener.Close(); err != nil {
		t.Fatalf("Failed to close listener: %v", err)
	}
	return addr
}
