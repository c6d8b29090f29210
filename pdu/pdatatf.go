package pdu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// PresentationDataValueItem is one PDV inside a P-DATA-TF PDU, P3.8
// 9.3.5.1. Unlike the items in pdu_item it has no type byte of its own:
// its header is a 4-byte length followed by a context ID and a 1-byte
// control field packing the command/data and last-fragment bits.
type PresentationDataValueItem struct {
	ContextID byte
	Command   bool // true: this PDV carries a command set, false: a dataset
	Last      bool // true: last fragment of this command/dataset
	Value     []byte
}

// ReadPresentationDataValueItem decodes one PDV, P3.8 E.2.
func ReadPresentationDataValueItem(d *dicomio.Reader) (PresentationDataValueItem, error) {
	item := PresentationDataValueItem{}
	length, err := d.ReadUInt32()
	if err != nil {
		return item, err
	}
	contextID, err := d.ReadUInt8()
	if err != nil {
		return item, err
	}
	header, err := d.ReadUInt8()
	if err != nil {
		return item, err
	}
	if header&0xfc != 0 {
		return item, fmt.Errorf("pdu: illegal PDV control header 0x%x", header)
	}
	item.ContextID = contextID
	item.Command = header&1 != 0
	item.Last = header&2 != 0
	if length < 2 {
		return item, fmt.Errorf("pdu: PDV length %d too small", length)
	}
	s, err := d.ReadString(int(length - 2))
	if err != nil {
		return item, err
	}
	item.Value = []byte(s)
	return item, nil
}

func (v *PresentationDataValueItem) Write(e *dicomio.Writer) error {
	var header byte
	if v.Command {
		header |= 1
	}
	if v.Last {
		header |= 2
	}
	if err := e.WriteUInt32(uint32(2 + len(v.Value))); err != nil {
		return err
	}
	if err := e.WriteUInt8(v.ContextID); err != nil {
		return err
	}
	if err := e.WriteUInt8(header); err != nil {
		return err
	}
	return e.WriteString(string(v.Value))
}

func (v *PresentationDataValueItem) String() string {
	return fmt.Sprintf("pdv{context:%d command:%v last:%v bytes:%d}", v.ContextID, v.Command, v.Last, len(v.Value))
}

// PDataTf is the P-DATA-TF PDU, P3.8 9.3.5: one or more PDVs carrying
// fragments of a DIMSE command or dataset over an established association.
type PDataTf struct {
	Items []PresentationDataValueItem
}

func (PDataTf) Read(d *dicomio.Reader) (PDU, error) {
	v := &PDataTf{}
	for !d.IsLimitExhausted() {
		item, err := ReadPresentationDataValueItem(d)
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, item)
	}
	return v, nil
}

func (v *PDataTf) Write() ([]byte, error) {
	var buf bytes.Buffer
	e := dicomio.NewWriter(&buf, binary.BigEndian, false)
	for i := range v.Items {
		if err := v.Items[i].Write(e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (v *PDataTf) String() string {
	return fmt.Sprintf("P_DATA_TF{items:%d}", len(v.Items))
}
