package bytecode

import "testing"

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 63, -64, 1 << 40, -(1 << 40), 1<<62 - 1, -(1 << 62)}
	for _, c := range cases {
		buf := PutVarint(nil, c)
		got, n, err := Varint(buf)
		if err != nil {
			t.Fatalf("Varint(%d) error: %v", c, err)
		}
		if n != len(buf) {
			t.Fatalf("Varint(%d) consumed %d bytes, want %d", c, n, len(buf))
		}
		if got != c {
			t.Fatalf("round trip mismatch: encoded %d, decoded %d", c, got)
		}
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 1 << 32, ^uint64(0)}
	for _, c := range cases {
		buf := PutUvarint(nil, c)
		got, n, err := Uvarint(buf)
		if err != nil {
			t.Fatalf("Uvarint(%d) error: %v", c, err)
		}
		if n != len(buf) || got != c {
			t.Fatalf("round trip mismatch: encoded %d, decoded %d (n=%d)", c, got, n)
		}
	}
}

func TestUvarintUnexpectedEOF(t *testing.T) {
	_, _, err := Uvarint([]byte{0x80, 0x80})
	if _, ok := err.(UnexpectedEOFError); !ok {
		t.Fatalf("expected UnexpectedEOFError, got %v", err)
	}
}

func TestUvarintOverflow(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0xff
	}
	_, _, err := Uvarint(buf)
	if _, ok := err.(OverflowError); !ok {
		t.Fatalf("expected OverflowError, got %v", err)
	}
}
