//go:build linux

package http

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// tcpFastOpenControl enables TCP_FASTOPEN_CONNECT on outgoing sockets. Kernels
// without support reject the option and the dial proceeds without it.
func tcpFastOpenControl(_, _ string, conn syscall.RawConn) error {
	return conn.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN_CONNECT, 1)
	})
}
