package fed

// Well known stage names. A protocol server's pipeline is expected to carry at least DecoderStage and HandlerStage.
const (
	DecoderStage = "decoder"
	EncoderStage = "encoder"
	HandlerStage = "packet_handler"
)
