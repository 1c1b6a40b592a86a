package canard

// The segmenter splits one transfer's payload into frames, drawing every
// buffer from the caller's Allocator via an allocScope so a failure
// partway through a multi-frame transfer can be unwound instead of leaking
// or panicking. Committing the result (priority, enqueue_sequence
// assignment, and queue insertion) is left to the TX queue facade.

// segmentTransfer splits one transfer's payload into the frames needed to
// carry it, allocating each frame's payload buffer and item descriptor
// through scope. On success it returns the frames in transmission order,
// chained via queueItem.next exactly as they will be left in the queue. On
// any allocation failure it returns ErrOutOfMemory; the caller is
// responsible for rolling scope back.
func segmentTransfer(scope *allocScope, canID uint32, tid TransferID, plMTU int, payload []byte, deadline Microsecond) ([]*queueItem, error) {
	payloadSize := len(payload)
	if payloadSize <= plMTU {
		item, err := segmentSingleFrame(scope, canID, tid, payload, deadline)
		if err != nil {
			return nil, err
		}
		return []*queueItem{item}, nil
	}
	return segmentMultiFrame(scope, canID, tid, plMTU, payload, deadline)
}

func segmentSingleFrame(scope *allocScope, canID uint32, tid TransferID, payload []byte, deadline Microsecond) (*queueItem, error) {
	payloadSize := len(payload)
	frameLen := roundFrameLengthUp(payloadSize + 1)
	buf := scope.allocPayload(frameLen)
	if buf == nil {
		return nil, ErrOutOfMemory
	}
	n := copy(buf, payload)
	for i := n; i < frameLen-1; i++ {
		buf[i] = 0 // Padding.
	}
	buf[frameLen-1] = tailByte(true, true, true, tid)

	item := scope.allocItem()
	if item == nil {
		return nil, ErrOutOfMemory
	}
	item.deadline = deadline
	item.frame = Frame{ID: canID, Payload: buf}
	item.payloadAlloc = scope.payloadAlloc
	item.payloadRaw = buf
	return item, nil
}

func segmentMultiFrame(scope *allocScope, canID uint32, tid TransferID, plMTU int, payload []byte, deadline Microsecond) ([]*queueItem, error) {
	const crcSize = 2
	payloadSize := len(payload)
	payloadSizeWithCRC := payloadSize + crcSize
	crc := newCRC().Add(payload)

	var items []*queueItem
	var prev *queueItem
	toggle := true // First frame's toggle bit is always 1.
	offset := 0
	for offset < payloadSizeWithCRC {
		var frameLen int
		if payloadSizeWithCRC-offset < plMTU {
			frameLen = roundFrameLengthUp(payloadSizeWithCRC - offset + 1) // Terminal frame: round up to legal DLC.
		} else {
			frameLen = plMTU + 1 // Non-terminal frame: packs to the full MTU.
		}

		buf := scope.allocPayload(frameLen)
		if buf == nil {
			return nil, ErrOutOfMemory
		}
		item := scope.allocItem()
		if item == nil {
			return nil, ErrOutOfMemory
		}
		item.deadline = deadline
		item.frame = Frame{ID: canID, Payload: buf}
		item.payloadAlloc = scope.payloadAlloc
		item.payloadRaw = buf
		item.index = len(items)
		if prev != nil {
			prev.next = item
		}
		items = append(items, item)
		prev = item

		framePayloadSize := frameLen - 1 // Space ahead of the tail byte: data, then padding/CRC.
		frameOffset := 0
		if offset < payloadSize {
			moveSize := payloadSize - offset
			if moveSize > framePayloadSize {
				moveSize = framePayloadSize
			}
			copy(buf[:moveSize], payload[offset:offset+moveSize])
			frameOffset += moveSize
			offset += moveSize
		}

		if offset >= payloadSize {
			// Terminal segment of the stream: zero-pad, then place as much
			// of the (big-endian) CRC as fits, possibly spilling the low
			// byte into the next frame.
			for frameOffset+crcSize < framePayloadSize {
				buf[frameOffset] = 0
				frameOffset++
				crc = crc.AddByte(0)
			}
			crcBytes := crc.Bytes()
			if frameOffset < framePayloadSize && offset == payloadSize {
				buf[frameOffset] = crcBytes[0]
				frameOffset++
				offset++
			}
			if frameOffset < framePayloadSize && offset > payloadSize {
				buf[frameOffset] = crcBytes[1]
				frameOffset++
				offset++
			}
		}

		isFirst := len(items) == 1
		isLast := offset >= payloadSizeWithCRC
		buf[frameOffset] = tailByte(isFirst, isLast, toggle, tid)
		toggle = !toggle
	}
	return items, nil
}
