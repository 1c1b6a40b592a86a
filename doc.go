// Package canard implements the transmit path of a Cyphal/CAN transport:
// splitting outgoing transfers into CAN/CAN-FD frames, holding them in a
// priority-ordered queue bounded by caller-supplied memory limits, and
// handing them to a driver one at a time in priority order.
//
// A TxQueue is not safe for concurrent use. Cyphal/CAN stacks are typically
// driven from a single task or interrupt context; callers needing
// concurrent access must serialize their own calls.
package canard
