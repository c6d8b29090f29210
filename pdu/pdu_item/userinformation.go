package pdu_item

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// UserInformationItem is the container for the negotiation sub-items in
// Annex D: maximum length, implementation class UID/version, async
// operations window, role selection, extended negotiation, user identity.
type UserInformationItem struct {
	Items []SubItem
}

func decodeUserInformationItem(d *dicomio.Reader, length uint16) (*UserInformationItem, error) {
	v := &UserInformationItem{}
	if err := d.PushLimit(int64(length)); err != nil {
		return nil, err
	}
	defer d.PopLimit()
	for !d.IsLimitExhausted() {
		item, err := DecodeSubItem(d)
		if err != nil {
			break
		}
		v.Items = append(v.Items, item)
	}
	return v, nil
}

func (v *UserInformationItem) Write(e *dicomio.Writer) error {
	var buf bytes.Buffer
	inner := dicomio.NewWriter(&buf, binary.BigEndian, false)
	for _, item := range v.Items {
		if err := item.Write(inner); err != nil {
			return err
		}
	}
	if err := encodeSubItemHeader(e, ItemTypeUserInformation, uint16(buf.Len())); err != nil {
		return err
	}
	return writeRawBytes(e, buf.Bytes())
}

func (v *UserInformationItem) ItemType() byte { return ItemTypeUserInformation }

func (v *UserInformationItem) String() string {
	return fmt.Sprintf("userinformation{items:%s}", SubItemListString(v.Items))
}

// MaximumLengthItem states the largest P-DATA-TF PDV the sender is willing
// to receive, P3.7 Annex D.1.
type MaximumLengthItem struct {
	MaximumLengthReceived uint32
}

func decodeMaximumLengthItem(d *dicomio.Reader, length uint16) (*MaximumLengthItem, error) {
	if length != 4 {
		return nil, fmt.Errorf("pdu_item: maximum-length item must be 4 bytes, got %d", length)
	}
	n, err := d.ReadUInt32()
	if err != nil {
		return nil, err
	}
	return &MaximumLengthItem{MaximumLengthReceived: n}, nil
}

func (v *MaximumLengthItem) Write(e *dicomio.Writer) error {
	if err := encodeSubItemHeader(e, ItemTypeMaximumLength, 4); err != nil {
		return err
	}
	return e.WriteUInt32(v.MaximumLengthReceived)
}

func (v *MaximumLengthItem) ItemType() byte { return ItemTypeMaximumLength }

func (v *MaximumLengthItem) String() string {
	return fmt.Sprintf("maximumlength{%d}", v.MaximumLengthReceived)
}

// NewMaximumLengthItem builds the item advertising this node's maximum PDV
// size.
func NewMaximumLengthItem(maxLength uint32) *MaximumLengthItem {
	return &MaximumLengthItem{MaximumLengthReceived: maxLength}
}

// AsyncOperationsWindowSubItem negotiates the number of outstanding
// operations permitted, P3.7 Annex D.3.3.3.1. netdicom does not support
// asynchronous operations: it decodes and re-encodes this item, but never
// proposes it, never echoes it in an A-ASSOCIATE-AC and ignores its values.
type AsyncOperationsWindowSubItem struct {
	MaxOpsInvoked   uint16
	MaxOpsPerformed uint16
}

func decodeAsyncOperationsWindowSubItem(d *dicomio.Reader, length uint16) (*AsyncOperationsWindowSubItem, error) {
	invoked, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	performed, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	return &AsyncOperationsWindowSubItem{MaxOpsInvoked: invoked, MaxOpsPerformed: performed}, nil
}

func (v *AsyncOperationsWindowSubItem) Write(e *dicomio.Writer) error {
	if err := encodeSubItemHeader(e, ItemTypeAsyncOperationsWindow, 4); err != nil {
		return err
	}
	if err := e.WriteUInt16(v.MaxOpsInvoked); err != nil {
		return err
	}
	return e.WriteUInt16(v.MaxOpsPerformed)
}

func (v *AsyncOperationsWindowSubItem) ItemType() byte { return ItemTypeAsyncOperationsWindow }

func (v *AsyncOperationsWindowSubItem) String() string {
	return fmt.Sprintf("asyncopswindow{invoked:%d performed:%d}", v.MaxOpsInvoked, v.MaxOpsPerformed)
}
