package pdu

import (
	"bytes"
	"encoding/binary"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// AReleaseRq requests an orderly release of the association, P3.8 9.3.6.
type AReleaseRq struct{}

func (AReleaseRq) Read(d *dicomio.Reader) (PDU, error) {
	if err := d.Skip(4); err != nil {
		return nil, err
	}
	return &AReleaseRq{}, nil
}

func (v *AReleaseRq) Write() ([]byte, error) {
	var buf bytes.Buffer
	e := dicomio.NewWriter(&buf, binary.BigEndian, false)
	if err := e.WriteZeros(4); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *AReleaseRq) String() string { return "A_RELEASE_RQ{}" }
