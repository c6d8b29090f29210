package pdu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// Result values for A-ASSOCIATE-RJ, P3.8 9.3.4.
const (
	ResultRejectedPermanent byte = 1
	ResultRejectedTransient byte = 2
)

// Source values for A-ASSOCIATE-RJ, P3.8 9.3.4.
const (
	SourceULServiceUser                 byte = 1
	SourceULServiceProviderACSE         byte = 2
	SourceULServiceProviderPresentation byte = 3
)

// Reason values for A-ASSOCIATE-RJ, P3.8 9.3.4. Meaning depends on Source;
// these are the ones this package sends or recognizes.
const (
	ReasonNone                               byte = 1
	ReasonApplicationContextNameNotSupported byte = 2
	ReasonCallingAETitleNotRecognized        byte = 3
	ReasonCalledAETitleNotRecognized         byte = 7
)

// AAssociateRj is the acceptor's refusal of an association request, P3.8
// 9.3.4.
type AAssociateRj struct {
	Result byte
	Source byte
	Reason byte
}

func (AAssociateRj) Read(d *dicomio.Reader) (PDU, error) {
	v := &AAssociateRj{}
	if err := d.Skip(1); err != nil {
		return nil, err
	}
	result, err := d.ReadUInt8()
	if err != nil {
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
	v.Result = result
	v.Source = source
	v.Reason = reason
	return v, nil
}

func (v *AAssociateRj) Write() ([]byte, error) {
	var buf bytes.Buffer
	e := dicomio.NewWriter(&buf, binary.BigEndian, false)
	if err := e.WriteZeros(1); err != nil {
		return nil, err
	}
	if err := e.WriteUInt8(v.Result); err != nil {
		return nil, err
	}
	if err := e.WriteUInt8(v.Source); err != nil {
		return nil, err
	}
	if err := e.WriteUInt8(v.Reason); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *AAssociateRj) String() string {
	return fmt.Sprintf("A_ASSOCIATE_RJ{result:%d source:%d reason:%d}", v.Result, v.Source, v.Reason)
}
