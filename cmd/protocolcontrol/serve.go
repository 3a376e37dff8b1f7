package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/app"
)

var serveFlags struct {
	listen        []string
	workers       int
	statLogPeriod string
	chatLog       bool
	chatPrefix    string
	filters       []string
	filterReply   string
	metrics       string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the protocolcontrol app configured from flags and PROTOCOLCONTROL_ environment variables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logger()
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		config, err := serveConfig(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(config, log)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Cleanup()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveFlags.metrics != "" {
			server := &http.Server{
				Addr:    serveFlags.metrics,
				Handler: promhttp.Handler(),
			}
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server failed", zap.Error(err))
				}
			}()
			defer func() {
				_ = server.Shutdown(context.Background())
			}()
		}

		if err = a.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		log.Info("shutting down")
		return a.Stop()
	},
}

func serveConfig(cmd *cobra.Command) (app.Config, error) {
	config := app.Config{
		Listen: []string{":25565"},
	}
	if err := env.ParseWithOptions(&config, env.Options{Prefix: "PROTOCOLCONTROL_"}); err != nil {
		return config, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		config.Listen = serveFlags.listen
	}
	if flags.Changed("workers") {
		config.Workers = serveFlags.workers
	}
	if flags.Changed("stat-log-period") {
		if err := config.StatLogPeriod.UnmarshalText([]byte(serveFlags.statLogPeriod)); err != nil {
			return config, err
		}
	}
	if flags.Changed("chat-log") {
		config.Chat.Log = serveFlags.chatLog
	}
	if flags.Changed("chat-prefix") {
		config.Chat.Prefix = serveFlags.chatPrefix
	}
	for _, filter := range serveFlags.filters {
		config.Chat.Filters = append(config.Chat.Filters, app.FilterConfig{
			Words: strings.Split(filter, ","),
			Reply: serveFlags.filterReply,
		})
	}
	return config, nil
}

func init() {
	flags := serveCmd.Flags()
	flags.StringSliceVarP(&serveFlags.listen, "listen", "l", nil, "addresses to listen on")
	flags.IntVar(&serveFlags.workers, "workers", 0, "event bus workers, defaults to GOMAXPROCS")
	flags.StringVar(&serveFlags.statLogPeriod, "stat-log-period", "", "how often to log stats, e.g. 1m")
	flags.BoolVar(&serveFlags.chatLog, "chat-log", false, "log every chat line")
	flags.StringVar(&serveFlags.chatPrefix, "chat-prefix", "", "prefix added to chat lines shown to players")
	flags.StringArrayVar(&serveFlags.filters, "filter", nil, "comma separated words that cancel a chat line, may be repeated")
	flags.StringVar(&serveFlags.filterReply, "filter-reply", "", "system message sent to players whose line was filtered")
	flags.StringVar(&serveFlags.metrics, "metrics", "", "address to serve prometheus metrics on")
}
