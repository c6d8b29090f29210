package pdu

import (
	"bytes"
	"encoding/binary"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// AReleaseRp acknowledges an A-RELEASE-RQ, P3.8 9.3.7.
type AReleaseRp struct{}

func (AReleaseRp) Read(d *dicomio.Reader) (PDU, error) {
	if err := d.Skip(4); err != nil {
		return nil, err
	}
	return &AReleaseRp{}, nil
}

func (v *AReleaseRp) Write() ([]byte, error) {
	var buf bytes.Buffer
	e := dicomio.NewWriter(&buf, binary.BigEndian, false)
	if err := e.WriteZeros(4); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *AReleaseRp) String() string { return "A_RELEASE_RP{}" }
