package network

import (
	"net"
	"strconv"
	"strings"
)

// ResolveAddress appends port when addr has none
// Bare IPv6 literals are accepted with or without brackets
func ResolveAddress(addr string, port int) string {
	addr = strings.TrimSpace(addr)
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	host := strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(port))
}
