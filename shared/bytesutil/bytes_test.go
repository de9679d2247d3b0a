package bytesutil_test

import (
	"bytes"
	"testing"

	"github.com/prysmaticlabs/beacon-stategen/shared/bytesutil"
)

func TestToBytes32(t *testing.T) {
	tests := []struct {
		a []byte
		b [32]byte
	}{
		{[]byte{1, 2, 3}, [32]byte{1, 2, 3}},
		{[]byte{}, [32]byte{}},
		{make([]byte, 40), [32]byte{}},
	}
	for _, tt := range tests {
		got := bytesutil.ToBytes32(tt.a)
		if got != tt.b {
			t.Errorf("ToBytes32(%v) = %v, want = %v", tt.a, got, tt.b)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		a []byte
		b []byte
	}{
		{[]byte{'A', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O'},
			[]byte{'A', 'C', 'D', 'E', 'F', 'G'}},
		{[]byte{'A', 'C', 'D', 'E', 'F'},
			[]byte{'A', 'C', 'D', 'E', 'F'}},
		{[]byte{}, []byte{}},
	}
	for _, tt := range tests {
		b := bytesutil.Trunc(tt.a)
		if !bytes.Equal(b, tt.b) {
			t.Errorf("Trunc(%v) = %v, want = %v", tt.a, b, tt.b)
		}
	}
}
