// Package pdu implements the seven Upper Layer PDU types defined in P3.8
// chapter 9: A-ASSOCIATE-RQ/AC/RJ, P-DATA-TF, A-RELEASE-RQ/RP, A-ABORT.
package pdu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// PDU is any of the seven Upper Layer PDU types. Each knows how to encode
// its own payload (the bytes after the common 6-byte header) and how to
// decode itself from a length-limited reader.
type PDU interface {
	fmt.Stringer
	Write() ([]byte, error)
}

// PDU type byte, P3.8 Table 9-11.
const (
	TypeAAssociateRQ byte = 1
	TypeAAssociateAC byte = 2
	TypeAAssociateRJ byte = 3
	TypePDataTF      byte = 4
	TypeAReleaseRQ   byte = 5
	TypeAReleaseRP   byte = 6
	TypeAAbort       byte = 7
)

// CurrentProtocolVersion is the only UL protocol version this package
// speaks, P3.8 9.3.2.
const CurrentProtocolVersion uint16 = 1

func pduTypeOf(v PDU) (byte, error) {
	switch v.(type) {
	case *AAssociateRQ:
		return TypeAAssociateRQ, nil
	case *AAssociateAC:
		return TypeAAssociateAC, nil
	case *AAssociateRj:
		return TypeAAssociateRJ, nil
	case *PDataTf:
		return TypePDataTF, nil
	case *AReleaseRq:
		return TypeAReleaseRQ, nil
	case *AReleaseRp:
		return TypeAReleaseRP, nil
	case *AAbort:
		return TypeAAbort, nil
	default:
		return 0, fmt.Errorf("pdu: unknown PDU type %T", v)
	}
}

// EncodePDU serializes v, prepending the common 6-byte header (type,
// reserved, 4-byte big-endian payload length), P3.8 9.3.
func EncodePDU(v PDU) ([]byte, error) {
	pduType, err := pduTypeOf(v)
	if err != nil {
		return nil, err
	}
	payload, err := v.Write()
	if err != nil {
		return nil, err
	}
	header := make([]byte, 6)
	header[0] = pduType
	binary.BigEndian.PutUint32(header[2:6], uint32(len(payload)))
	return append(header, payload...), nil
}

// ReadPDU reads one PDU off in. maxPDUSize bounds the accepted payload
// length so a corrupt or hostile length field can't force an unbounded
// allocation.
func ReadPDU(in io.Reader, maxPDUSize int) (PDU, error) {
	header := make([]byte, 6)
	if _, err := io.ReadFull(in, header); err != nil {
		return nil, err
	}
	pduType := header[0]
	length := binary.BigEndian.Uint32(header[2:6])
	if length >= uint32(maxPDUSize)*2 {
		return nil, fmt.Errorf("pdu: PDU length %d far exceeds max PDU size %d", length, maxPDUSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(in, payload); err != nil {
		return nil, err
	}
	d := dicomio.NewReader(bytes.NewReader(payload), binary.BigEndian, int64(length))
	switch pduType {
	case TypeAAssociateRQ:
		return AAssociateRQ{}.Read(d)
	case TypeAAssociateAC:
		return AAssociateAC{}.Read(d)
	case TypeAAssociateRJ:
		return AAssociateRj{}.Read(d)
	case TypePDataTF:
		return PDataTf{}.Read(d)
	case TypeAReleaseRQ:
		return AReleaseRq{}.Read(d)
	case TypeAReleaseRP:
		return AReleaseRp{}.Read(d)
	case TypeAAbort:
		return AAbort{}.Read(d)
	default:
		return nil, fmt.Errorf("pdu: unknown PDU type 0x%x", pduType)
	}
}

// fillString pads or truncates v to exactly 16 bytes, the fixed width of
// the AE title fields in A-ASSOCIATE-RQ/AC, P3.8 9.3.2.
func fillString(v string) string {
	const width = 16
	if len(v) > width {
		return v[:width]
	}
	for len(v) < width {
		v += " "
	}
	return v
}
