package canard

// The DLC (Data Length Code) table maps a required minimum frame payload
// length to the smallest legal CAN/CAN-FD frame length that can hold it.

// legalFrameLengths are the only lengths a CAN or CAN-FD frame payload may
// have. Classic CAN uses the first nine entries {0..8}; CAN-FD adds
// {12, 16, 20, 24, 32, 48, 64}.
var legalFrameLengths = [...]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}

// roundFrameLengthUp returns the smallest legal CAN/CAN-FD frame length
// that is >= n, or -1 if n exceeds the largest legal length (64).
func roundFrameLengthUp(n int) int {
	if n < 0 {
		panic("canard: negative length")
	}
	for _, l := range legalFrameLengths {
		if l >= n {
			return l
		}
	}
	return -1
}

// adjustPresentationLayerMTU maps an arbitrary requested MTU (the maximum
// CAN/CAN-FD frame length, tail byte included) to the presentation-layer
// MTU: the maximum number of data bytes a non-terminal frame may carry
// ahead of its tail byte. Invalid values are treated as the
// nearest valid value": values below the classic CAN frame length are
// raised to it, values above the CAN-FD frame length are capped to it, and
// anything in between is rounded UP to the next legal frame length (the
// same direction the segmenter itself rounds in, so a non-terminal frame
// always fits within the configured bus's real frame length).
func adjustPresentationLayerMTU(mtuBytes int) int {
	if mtuBytes < MTUCANClassic {
		mtuBytes = MTUCANClassic
	} else if mtuBytes > MTUCANFD {
		mtuBytes = MTUCANFD
	}
	return roundFrameLengthUp(mtuBytes) - 1
}
