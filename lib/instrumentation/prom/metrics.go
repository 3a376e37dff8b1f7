package prom

import (
	"gfx.cafe/open/gotoprom"
	"github.com/prometheus/client_golang/prometheus"
)

type ListenerLabels struct {
	ListenAddr string `label:"listen_addr"`
}

var Listener struct {
	Incoming func(ListenerLabels) prometheus.Counter `name:"incoming" help:"incoming connections"`
	Accepted func(ListenerLabels) prometheus.Counter `name:"accepted" help:"accepted connections"`
	Client   func(ListenerLabels) prometheus.Gauge   `name:"client" help:"current clients"`
}

type BusLabels struct {
	Direction string `label:"direction"`
	Message   string `label:"message"`
}

var Bus struct {
	Posts     func(BusLabels) prometheus.Counter   `name:"posts" help:"events posted to subscribers"`
	Cancelled func(BusLabels) prometheus.Counter   `name:"cancelled" help:"events cancelled by a subscriber"`
	Failures  func(BusLabels) prometheus.Counter   `name:"subscriber_failures" help:"subscriber errors and panics"`
	Latency   func(BusLabels) prometheus.Histogram `name:"post_ms" buckets:"0.005,0.01,0.05,0.1,0.25,0.5,1,5,10,50,100" help:"ms spent delivering an event to every subscriber"`
}

type DispatchLabels struct {
	Mode string `label:"mode"`
}

var Dispatch struct {
	Submitted func(DispatchLabels) prometheus.Counter `name:"submitted" help:"events submitted to the worker pool"`
	Dropped   func(DispatchLabels) prometheus.Counter `name:"dropped" help:"pooled events dropped because the bus was disabled"`
	Queued    func(DispatchLabels) prometheus.Gauge   `name:"queued" help:"events waiting for a worker"`
}

type InterceptorLabels struct {
	Direction string `label:"direction"`
}

var Interceptor struct {
	Intercepted func(InterceptorLabels) prometheus.Counter `name:"intercepted" help:"messages posted to the bus"`
	Passthrough func(InterceptorLabels) prometheus.Counter `name:"passthrough" help:"messages forwarded without subscribers"`
	Dropped     func(InterceptorLabels) prometheus.Counter `name:"dropped" help:"messages dropped by cancellation"`
	Injected    func(InterceptorLabels) prometheus.Counter `name:"injected" help:"messages sent through a profile"`
	Profiles    func(InterceptorLabels) prometheus.Gauge   `name:"profiles" help:"active connection profiles"`
}

func init() {
	gotoprom.MustInit(&Listener, "protocolcontrol_listener", prometheus.Labels{})
	gotoprom.MustInit(&Bus, "protocolcontrol_bus", prometheus.Labels{})
	gotoprom.MustInit(&Dispatch, "protocolcontrol_dispatch", prometheus.Labels{})
	gotoprom.MustInit(&Interceptor, "protocolcontrol_interceptor", prometheus.Labels{})
}
