package uidinfo

// Transfer syntax UIDs, P3.5 Annex A.
const (
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian    = "1.2.840.10008.1.2.2"
	JPEGBaseline8Bit       = "1.2.840.10008.1.2.4.50"
	JPEGLosslessSV1        = "1.2.840.10008.1.2.4.70"
	JPEG2000Lossless       = "1.2.840.10008.1.2.4.90"
	JPEG2000               = "1.2.840.10008.1.2.4.91"
	RLELossless            = "1.2.840.10008.1.2.5"
)

// StandardTransferSyntaxes lists the uncompressed transfer syntaxes, offered
// by a service user that has no preference of its own.
// CanonicalTransferSyntaxUID also recognizes the compressed ones above.
var StandardTransferSyntaxes = []string{
	ImplicitVRLittleEndian,
	ExplicitVRLittleEndian,
	ExplicitVRBigEndian,
}

// CanonicalTransferSyntaxUID maps aliases (bare "1.2.840.10008.1.2" with a
// trailing NUL, as padded UI values sometimes arrive) to their canonical
// form. Returns an error if uid isn't a recognized transfer syntax.
func CanonicalTransferSyntaxUID(uid string) (string, error) {
	trimmed := uid
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == 0 {
		trimmed = trimmed[:len(trimmed)-1]
	}
	switch trimmed {
	case ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian,
		JPEGBaseline8Bit, JPEGLosslessSV1, JPEG2000Lossless, JPEG2000, RLELossless:
		return trimmed, nil
	default:
		return "", &UnknownTransferSyntaxError{UID: trimmed}
	}
}

// UnknownTransferSyntaxError reports a transfer syntax UID this package
// doesn't recognize.
type UnknownTransferSyntaxError struct {
	UID string
}

func (e *UnknownTransferSyntaxError) Error() string {
	return "uidinfo: unknown transfer syntax " + e.UID
}
