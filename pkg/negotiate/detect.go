package negotiate

// ClientProtocol is the protocol a listener detected from a client's first
// byte (spec §4.5, §8 R3).
type ClientProtocol int

const (
	ClientUnknown ClientProtocol = iota
	ClientSOCKS4
	ClientSOCKS5
	ClientHTTP
)

// DetectClientProtocol inspects the first byte of a client connection and
// reports which protocol it is speaking. HTTP is recognized by its leading
// verb byte ('G'ET, 'C'ONNECT, 'P'OST/'P'UT, 'H'EAD, 'D'ELETE, 'O'PTIONS,
// 'T'RACE, 'P'ATCH).
func DetectClientProtocol(first byte) ClientProtocol {
	switch first {
	case 0x04:
		return ClientSOCKS4
	case 0x05:
		return ClientSOCKS5
	case 'G', 'C', 'P', 'H', 'D', 'O', 'T':
		return ClientHTTP
	default:
		return ClientUnknown
	}
}
