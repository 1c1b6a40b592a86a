package canard

// QueueItem is the caller-visible handle to one queued frame, returned by
// Peek and consumed by Pop/FreeItem. Its priority-queue linkage is
// unexported.
type QueueItem = queueItem

// TxQueue is a bounded, priority-ordered queue of frames awaiting
// transmission. It orchestrates validation, segmentation, transactional
// enqueue, lazy expiry, and driver hand-off. Capacity and MTU are the whole
// of its configuration surface.
type TxQueue struct {
	// Capacity is the maximum number of frames this queue may hold at
	// once. Pushing past it fails with ErrOutOfMemory even if the
	// allocator itself has room.
	Capacity int

	// MTU is the maximum CAN/CAN-FD frame length (tail byte included) used
	// by the next Push. Changing it does not affect frames already queued.
	MTU int

	itemAlloc    Allocator
	payloadAlloc Allocator

	pq  priorityQueue
	seq uint64
}

// NewTxQueue constructs an empty TxQueue. itemAlloc and payloadAlloc may be
// the same Allocator; using two distinct handles lets item descriptors and
// frame payloads be budgeted separately.
func NewTxQueue(capacity, mtu int, itemAlloc, payloadAlloc Allocator) *TxQueue {
	return &TxQueue{
		Capacity:     capacity,
		MTU:          mtu,
		itemAlloc:    itemAlloc,
		payloadAlloc: payloadAlloc,
	}
}

// Size returns the number of frames currently queued.
func (q *TxQueue) Size() int { return q.pq.size }

// Stats accumulates the counters Push and Poll report back to the caller:
// expiry and driver-rejected frames are statistics, not errors.
type Stats struct {
	FramesExpired uint64
	FramesFailed  uint64
}

// Push validates meta, segments payload into frames for the current MTU,
// and inserts all of them into the queue or none. local is the node-ID to
// synthesize the CAN-ID with, consulted read-only. now is used only for the
// lazy expiry sweep triggered when the queue is full; deadline is the
// wall-clock time by which every frame of this transfer must have reached
// the bus.
//
// On success it returns the number of frames pushed (always >=1). On
// failure it returns 0 and one of ErrInvalidArgument or ErrOutOfMemory; no
// frame of this transfer is queued or left allocated. Frames dropped by the
// lazy expiry sweep stay dropped even when Push then fails.
func (q *TxQueue) Push(local NodeID, deadline Microsecond, meta *Metadata, payload []byte, now Microsecond, stats *Stats) (int, error) {
	if err := validatePush(q, meta, payload); err != nil {
		return 0, err
	}

	canID, err := meta.makeCANID(local)
	if err != nil {
		return 0, err
	}

	plMTU := adjustPresentationLayerMTU(q.MTU)
	frameCount := framesNeeded(len(payload), plMTU)

	if q.pq.size+frameCount > q.Capacity {
		q.expireBefore(now, stats)
		if q.pq.size+frameCount > q.Capacity {
			return 0, ErrOutOfMemory
		}
	}

	scope := newAllocScope(q.itemAlloc, q.payloadAlloc)
	items, err := segmentTransfer(scope, canID, meta.TransferID, plMTU, payload, deadline)
	if err != nil {
		scope.rollback()
		return 0, err
	}

	seq := q.seq
	q.seq++
	for _, it := range items {
		it.priority = meta.Priority
		it.seq = seq
		q.pq.insert(it)
	}
	return len(items), nil
}

// framesNeeded computes the number of frames a payload of length payloadLen
// will split into under presentation-layer MTU plMTU.
func framesNeeded(payloadLen, plMTU int) int {
	if payloadLen <= plMTU {
		return 1
	}
	const crcSize = 2
	withCRC := payloadLen + crcSize
	return (withCRC + plMTU - 1) / plMTU
}

// Peek returns the head item by priority order without removing it.
// Idempotent; repeated calls return the same item until a Pop or expiry
// sweep occurs.
func (q *TxQueue) Peek() *QueueItem {
	return q.pq.peek()
}

// Pop removes item from the queue and returns it, detached but not yet
// freed — the caller owns it and must release it via FreeItem. Pop(nil)
// is a no-op that returns nil.
func (q *TxQueue) Pop(item *QueueItem) *QueueItem {
	if item == nil {
		return nil
	}
	q.pq.remove(item)
	item.next = nil
	return item
}

// FreeItem releases the payload buffer, honoring the possibility that the
// caller has already detached it by clearing payloadRaw, and then releases
// the item descriptor itself.
func (q *TxQueue) FreeItem(item *QueueItem) {
	if item == nil {
		return
	}
	if item.payloadRaw != nil {
		q.payloadAlloc.Deallocate(item.payloadRaw)
		item.payloadRaw = nil
		item.frame.Payload = nil
	}
	q.itemAlloc.Deallocate(item.itemRaw)
}

// Driver is the tri-state callback Poll hands frames to: >0 accepted,
// 0 media busy, <0 media failure (the negative value is returned by Poll).
// The frame passed to Driver is valid only for the duration of the call.
type Driver func(deadline Microsecond, frame Frame) int

// Poll expires the head frame (and the rest of its transfer) until a live
// frame reaches the head, hands that frame to driver, and acts on the
// tri-state result. It returns 1 if a frame was transmitted, 0 if the media
// was busy or the queue is empty, or a negative error propagated from
// driver.
func (q *TxQueue) Poll(now Microsecond, driver Driver, stats *Stats) int {
	for {
		head := q.pq.peek()
		if head == nil {
			return 0
		}
		if head.deadline >= now {
			break
		}
		dropped := q.dropTransferAt(head)
		if stats != nil {
			stats.FramesExpired += uint64(dropped)
		}
	}

	head := q.pq.peek()
	if head == nil {
		return 0
	}
	result := driver(head.deadline, head.frame)
	switch {
	case result > 0:
		q.Pop(head)
		q.FreeItem(head)
		return 1
	case result == 0:
		return 0
	default:
		dropped := q.dropTransferAt(head)
		if stats != nil {
			stats.FramesFailed += uint64(dropped)
		}
		return result
	}
}

// expireBefore performs the lazy expiry sweep: every item whose deadline
// has already elapsed is dropped, and so is the remainder of its transfer
// (via next), regardless of the remaining items' own deadlines.
func (q *TxQueue) expireBefore(now Microsecond, stats *Stats) {
	var expired []*queueItem
	q.walk(func(it *queueItem) {
		if it.deadline < now {
			expired = append(expired, it)
		}
	})
	dropped := 0
	for _, it := range expired {
		if it.up == nil && q.pq.root != it {
			continue // Already dropped as part of an earlier transfer in this sweep.
		}
		dropped += q.dropTransferAt(it)
	}
	if stats != nil {
		stats.FramesExpired += uint64(dropped)
	}
}

// dropTransferAt removes item and every subsequent frame of its transfer
// (following next), freeing each one's memory, and returns how many frames
// were dropped. Dropping the whole transfer instead of just the expired or
// failed frame preserves atomicity: a partial transfer on the bus is
// useless to any receiver.
func (q *TxQueue) dropTransferAt(item *queueItem) int {
	n := 0
	for cur := item; cur != nil; {
		next := cur.next
		q.pq.remove(cur)
		q.FreeItem(cur)
		n++
		cur = next
	}
	return n
}

// walk visits every item currently in the queue, in-order. Used only by the
// expiry sweep, which must inspect every item regardless of priority order.
func (q *TxQueue) walk(visit func(*queueItem)) {
	var rec func(*queueItem)
	rec = func(n *queueItem) {
		if n == nil {
			return
		}
		rec(n.lr[0])
		visit(n)
		rec(n.lr[1])
	}
	rec(q.pq.root)
}
