package canard

import "testing"

func TestTailByte(t *testing.T) {
	b := tailByte(true, true, true, 25)
	if b != 0xE0|25 {
		t.Errorf("got 0x%02x, want 0x%02x", b, 0xE0|25)
	}
	b = tailByte(false, false, false, 25)
	if b != 25 {
		t.Errorf("got 0x%02x, want 0x%02x", b, 25)
	}
	b = tailByte(false, true, false, 25)
	if b != tailEndOfTransfer|25 {
		t.Errorf("got 0x%02x, want end bit set", b)
	}
}

func TestTailDecode(t *testing.T) {
	tail := Tail(tailByte(true, false, true, 17))
	if !tail.IsStart() {
		t.Error("expected start")
	}
	if tail.IsEnd() {
		t.Error("did not expect end")
	}
	if !tail.IsToggled() {
		t.Error("expected toggle")
	}
	if tail.TransferID() != 17 {
		t.Errorf("got transfer-ID %d, want 17", tail.TransferID())
	}
}

func TestTailByteWrapsTransferID(t *testing.T) {
	// Only the low 5 bits of the transfer-ID reach the wire.
	b := tailByte(true, true, true, 63)
	if Tail(b).TransferID() != 31 {
		t.Errorf("got %d, want 31", Tail(b).TransferID())
	}
}
