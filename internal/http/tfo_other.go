//go:build !linux

package http

import "syscall"

func tcpFastOpenControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
