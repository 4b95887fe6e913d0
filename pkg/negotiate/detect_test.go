package negotiate

import "testing"

func TestDetectClientProtocol(t *testing.T) {
	cases := map[byte]ClientProtocol{
		0x04: ClientSOCKS4,
		0x05: ClientSOCKS5,
		'G':  ClientHTTP,
		'C':  ClientHTTP,
		'P':  ClientHTTP,
		0xFE: ClientUnknown,
	}
	for b, want := range cases {
		if got := DetectClientProtocol(b); got != want {
			t.Fatalf("DetectClientProtocol(0x%02x) = %v, want %v", b, got, want)
		}
	}
}
