package canard

// Parameter ranges are inclusive; the lower bound is zero for all. See the
// Cyphal/CAN Specification for background.
const (
	SubjectIDMax        = 8191
	ServiceIDMax        = 511
	NodeIDMax           = 127
	PriorityMax         = 7
	TransferIDBitLength = 5
	TransferIDMax       = (1 << TransferIDBitLength) - 1 // 31, the wire modulus minus one.
)

const (
	flagServiceNotMessage  = 1 << 25
	flagAnonymousMessage   = 1 << 24
	flagRequestNotResponse = 1 << 24
	flagReserved23         = 1 << 23
	flagReserved07         = 1 << 7
)

// TxKind distinguishes the three Cyphal transfer kinds.
type TxKind uint8

const (
	TxKindMessage  TxKind = 0 // Multicast, from publisher to all subscribers.
	TxKindResponse TxKind = 1 // Point-to-point, from server to client.
	TxKindRequest  TxKind = 2 // Point-to-point, from client to server.
)

// NodeIDUnset is the sentinel value of NodeID meaning "no node": used for
// anonymous local nodes and for the remote node of a message transfer.
const NodeIDUnset NodeID = 0xFF

const (
	tailStartOfTransfer       = 1 << 7
	tailEndOfTransfer         = 1 << 6
	tailToggle                = 1 << 5
	mftNonLastFramePayloadMin = 7
)

// Priority is one of the eight Cyphal priority levels. A lower numeric value
// means higher transmission precedence.
type Priority uint8

// Transfer priority level mnemonics per the recommendations given in the
// Cyphal Specification. PriorityNominal should be the default.
const (
	PriorityExceptional Priority = iota
	PriorityImmediate
	PriorityFast
	PriorityHigh
	PriorityNominal
	PriorityLow
	PrioritySlow
	PriorityOptional

	numPriorities = 8
)

const (
	offsetPriority  = 26
	offsetSubjectID = 8
	offsetServiceID = 14
	offsetDstNodeID = 7
)

// Recommended MTU values; MTU is otherwise a free parameter of TxQueue.
const (
	MTUCANClassic = 8
	MTUCANFD      = 64
)
