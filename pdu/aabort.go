package pdu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// AbortReasonType is the reason-diagnostic byte of an A-ABORT PDU sent by
// the UL service-provider (Source 2), P3.8 9.3.8. It is meaningless when
// Source is 0 (service-user initiated).
type AbortReasonType byte

// Abort reason-diagnostic values, P3.8 9.3.8.
const (
	AbortReasonNotSpecified                AbortReasonType = 0
	AbortReasonUnrecognizedPDU             AbortReasonType = 1
	AbortReasonUnexpectedPDU               AbortReasonType = 2
	AbortReasonUnrecognizedPDUParameter    AbortReasonType = 4
	AbortReasonUnexpectedPDUParameter      AbortReasonType = 5
	AbortReasonInvalidPDUParameterValue    AbortReasonType = 6
)

// AAbort is the A-ABORT PDU, P3.8 9.3.8. Source 0 means the DICOM UL
// service-user requested the abort, in which case Reason carries no
// meaning; source 2 means the UL service-provider aborted and Reason
// names why.
type AAbort struct {
	Source byte
	Reason AbortReasonType
}

func (AAbort) Read(d *dicomio.Reader) (PDU, error) {
	v := &AAbort{}
	if err := d.Skip(2); err != nil {
		return nil, err
	}
	source, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	reason, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	v.Source = source
	v.Reason = AbortReasonType(reason)
	return v, nil
}

func (v *AAbort) Write() ([]byte, error) {
	var buf bytes.Buffer
	e := dicomio.NewWriter(&buf, binary.BigEndian, false)
	if err := e.WriteZeros(2); err != nil {
		return nil, err
	}
	if err := e.WriteUInt8(v.Source); err != nil {
		return nil, err
	}
	if err := e.WriteUInt8(byte(v.Reason)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *AAbort) String() string {
	return fmt.Sprintf("A_ABORT{source:%d reason:%d}", v.Source, v.Reason)
}
