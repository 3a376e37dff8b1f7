package fed

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/caddyserver/caddy/v2"
)

// Listen opens a stream listener for a caddy network address such as "tcp/:25565", ":25565" or "unix//tmp/pc.sock".
func Listen(ctx context.Context, address string) (net.Listener, error) {
	addr, err := caddy.ParseNetworkAddress(address)
	if err != nil {
		return nil, err
	}
	if addr.PortRangeSize() > 1 {
		return nil, fmt.Errorf("listen %s: port ranges are not supported", address)
	}
	if addr.IsUnixNetwork() {
		if err := os.MkdirAll(filepath.Dir(addr.Host), 0o770); err != nil {
			return nil, err
		}
	}

	ln, err := addr.Listen(ctx, 0, net.ListenConfig{})
	if err != nil {
		return nil, err
	}
	listener, ok := ln.(net.Listener)
	if !ok {
		_ = closeAny(ln)
		return nil, fmt.Errorf("listen %s: not a stream network", address)
	}
	return listener, nil
}

func closeAny(v any) error {
	if c, ok := v.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
