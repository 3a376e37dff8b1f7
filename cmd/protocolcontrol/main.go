package main

import (
	"context"
	"os"

	"gfx.cafe/util/go/gotel"
	_ "github.com/caddyserver/caddy/v2/modules/metrics"

	_ "gfx.cafe/gfx/protocolcontrol/lib/app"
)

func main() {
	fn, _ := gotel.InitTracing(context.Background(), gotel.WithServiceName("protocolcontrol"))
	defer fn(context.Background())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
