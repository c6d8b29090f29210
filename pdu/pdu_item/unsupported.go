package pdu_item

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// UnsupportedSubItem preserves the raw bytes of an item type this package
// does not otherwise decode, so a relayed or re-encoded PDU doesn't silently
// drop fields it didn't understand.
type UnsupportedSubItem struct {
	Type byte
	Data []byte
}

func decodeUnsupportedSubItem(d *dicomio.Reader, itemType byte, length uint16) (*UnsupportedSubItem, error) {
	data, err := readRawBytes(d, int(length))
	if err != nil {
		return nil, err
	}
	return &UnsupportedSubItem{Type: itemType, Data: data}, nil
}

func (v *UnsupportedSubItem) Write(e *dicomio.Writer) error {
	if err := encodeSubItemHeader(e, v.Type, uint16(len(v.Data))); err != nil {
		return err
	}
	return writeRawBytes(e, v.Data)
}

func (v *UnsupportedSubItem) ItemType() byte { return v.Type }

func (v *UnsupportedSubItem) String() string {
	return fmt.Sprintf("unsupported{type:0x%02x data:%dbytes}", v.Type, len(v.Data))
}
