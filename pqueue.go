package canard

// The priority queue of pending frames is an intrusive AVL tree ordered by
// (priority, enqueue_sequence, intra_transfer_index), specialized to a
// single concrete node type since the TX queue never stores anything but
// frames.

// queueItem is one queued frame plus its ordering key and transfer chain
// link. Its AVL linkage fields are unexported: callers only ever see it
// through Peek/Pop as *QueueItem.
type queueItem struct {
	up *queueItem
	lr [2]*queueItem
	bf int8

	deadline Microsecond
	frame    Frame
	priority Priority
	seq      uint64
	index    int
	next     *queueItem // nextInTransfer: non-owning link to the next frame of this transfer.

	payloadAlloc Allocator
	payloadRaw   []byte
	itemAlloc    Allocator
	itemRaw      []byte
}

// less implements the ordering key: (priority, enqueue_sequence,
// intra_transfer_index), ascending.
func (a *queueItem) less(b *queueItem) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.seq != b.seq {
		return a.seq < b.seq
	}
	return a.index < b.index
}

// priorityQueue is the ordered container backing a TxQueue. size is tracked
// separately from tree traversal so Size() is O(1).
type priorityQueue struct {
	root *queueItem
	size int
}

// insert adds item to the tree. Capacity checking is the caller's
// responsibility (capacity is checked before any frame of a
// transfer is committed).
func (q *priorityQueue) insert(item *queueItem) {
	n := &q.root
	var up *queueItem
	for *n != nil {
		up = *n
		if item.less(up) {
			n = &up.lr[0]
		} else {
			n = &up.lr[1]
		}
	}
	*n = item
	item.up = up
	item.lr = [2]*queueItem{}
	item.bf = 0
	q.size++
	if rt := retraceOnGrowth(item); rt != nil {
		q.root = rt
	}
}

// peek returns the head item (smallest key) without removing it, or nil if
// the queue is empty.
func (q *priorityQueue) peek() *queueItem {
	return findExtremum(q.root, false)
}

// remove detaches item from the tree. item must currently be a member of
// this tree. Its tree links are cleared, so a removed item that is not the
// root has a nil up link.
func (q *priorityQueue) remove(item *queueItem) {
	removeNode(&q.root, item)
	item.up = nil
	item.lr = [2]*queueItem{}
	item.bf = 0
	q.size--
}

func retraceOnGrowth(added *queueItem) *queueItem {
	if added == nil || added.bf != 0 {
		panic("canard: retraceOnGrowth on non-leaf")
	}
	c := added
	p := added.up
	for p != nil {
		r := p.lr[1] == c
		c = adjustBalance(p, r)
		p = c.up
		if c.bf == 0 {
			// The height change of the subtree made this parent perfectly
			// balanced, so the height of the outer subtree is unchanged and
			// upper balance factors are unaffected.
			break
		}
	}
	if p != nil {
		return nil // Root did not change.
	}
	return c
}

func adjustBalance(x *queueItem, increment bool) *queueItem {
	if x == nil || !(x.bf >= -1 && x.bf <= 1) {
		panic("canard: adjustBalance precondition violated")
	}
	out := x
	newBf := x.bf + 1
	if !increment {
		newBf -= 2
	}
	if newBf >= -1 && newBf <= 1 {
		x.bf = newBf
		return out
	}
	r := newBf < 0 // Left-heavy: right rotation needed.
	sign := bsign(r)
	z := x.lr[b2i(!r)]
	if z == nil {
		panic("canard: nil rotation pivot")
	}
	if z.bf*sign <= 0 {
		out = z
		rotate(x, r)
		if z.bf == 0 {
			x.bf = -sign
			z.bf = sign
		} else {
			x.bf = 0
			z.bf = 0
		}
	} else {
		y := z.lr[b2i(r)]
		if y == nil {
			panic("canard: nil double-rotation pivot")
		}
		out = y
		rotate(z, !r)
		rotate(x, r)
		switch {
		case y.bf*sign < 0:
			x.bf = sign
			y.bf = 0
			z.bf = 0
		case y.bf*sign > 0:
			x.bf = 0
			y.bf = 0
			z.bf = -sign
		default:
			x.bf = 0
			z.bf = 0
		}
	}
	return out
}

func rotate(x *queueItem, r bool) {
	if x == nil || x.lr[b2i(!r)] == nil {
		panic("canard: rotate precondition violated")
	}
	z := x.lr[b2i(!r)]
	if x.up != nil {
		x.up.lr[b2i(x.up.lr[1] == x)] = z
	}
	z.up = x.up
	x.up = z
	x.lr[b2i(!r)] = z.lr[b2i(r)]
	if x.lr[b2i(!r)] != nil {
		x.lr[b2i(!r)].up = x
	}
	z.lr[b2i(r)] = x
}

func findExtremum(root *queueItem, max bool) *queueItem {
	var result *queueItem
	side := b2i(max)
	c := root
	for c != nil {
		result = c
		c = c.lr[side]
	}
	return result
}

func removeNode(root **queueItem, node *queueItem) {
	if root == nil || node == nil {
		return
	}
	var p *queueItem
	r := false
	if node.lr[0] != nil && node.lr[1] != nil {
		re := findExtremum(node.lr[1], false)
		re.bf = node.bf
		re.lr[0] = node.lr[0]
		re.lr[0].up = re
		if re.up != node {
			p = re.up
			p.lr[0] = re.lr[1]
			if p.lr[0] != nil {
				p.lr[0].up = p
			}
			re.lr[1] = node.lr[1]
			re.lr[1].up = re
			r = false
		} else {
			p = re
			r = true
		}
		re.up = node.up
		if re.up != nil {
			re.up.lr[b2i(re.up.lr[1] == node)] = re
		} else {
			*root = re
		}
	} else {
		p = node.up
		rr := b2i(node.lr[1] != nil)
		if node.lr[rr] != nil {
			node.lr[rr].up = p
		}
		if p != nil {
			side := p.lr[1] == node
			p.lr[b2i(side)] = node.lr[rr]
			if p.lr[b2i(side)] != nil {
				p.lr[b2i(side)].up = p
			}
			r = side
		} else {
			*root = node.lr[rr]
		}
	}
	if p == nil {
		return
	}
	var c *queueItem
	for {
		c = adjustBalance(p, !r)
		p = c.up
		if c.bf != 0 || p == nil {
			break
		}
		r = p.lr[1] == c
	}
	if p == nil {
		*root = c
	}
}

func bsign(b bool) int8 {
	if b {
		return 1
	}
	return -1
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
