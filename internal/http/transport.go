package http

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/fivetwenty-io/directus/internal/constants"
)

// TransportConfig holds the connection-level settings of the client.
// The zero value verifies TLS and enables fast open and encoding.
type TransportConfig struct {
	SkipTLSVerify      bool
	OnlyIPv4           bool
	DisableTCPFastOpen bool
	DisableEncoding    bool
}

// DefaultTransportConfig returns the zero TransportConfig.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{}
}

// newTransport builds a pooled transport honoring config.
func newTransport(config TransportConfig) *http.Transport {
	transport := cleanhttp.DefaultPooledTransport()

	dialer := &net.Dialer{
		Timeout:   constants.DialTimeout,
		KeepAlive: constants.DialKeepAlive,
	}

	if !config.DisableTCPFastOpen {
		dialer.Control = tcpFastOpenControl
	}

	transport.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
		if config.OnlyIPv4 {
			network = "tcp4"
		}

		return dialer.DialContext(ctx, network, address)
	}

	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		//nolint:gosec // G402: verification is disabled only when the caller asks for it
		InsecureSkipVerify: config.SkipTLSVerify,
	}

	// With compression disabled the transport neither asks for gzip nor
	// decodes it.
	transport.DisableCompression = config.DisableEncoding

	return transport
}
