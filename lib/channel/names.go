package channel

// Names of the stages installed into a connection's pipeline.
const (
	InitializerStage = "protocolcontrol_initializer"
	ChannelStage     = "protocolcontrol_channel"
	IncomingStage    = "protocolcontrol_incoming"
	OutgoingStage    = "protocolcontrol_outgoing"
)
