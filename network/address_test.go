package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"127.0.0.1", "127.0.0.1:6969"},
		{"127.0.0.1:7000", "127.0.0.1:7000"},
		{" localhost ", "localhost:6969"},
		{"example.com:80", "example.com:80"},
		{"::1", "[::1]:6969"},
		{"[::1]", "[::1]:6969"},
		{"[::1]:7000", "[::1]:7000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAddress(tt.in, DefaultPort))
		})
	}
}
