package pdu_item

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// Presentation context result codes, P3.8 Table 9-18.
const (
	PresentationContextAccepted                              = 0
	PresentationContextUserRejection                          = 1
	PresentationContextProviderRejectionNoReason              = 2
	PresentationContextProviderRejectionAbstractSyntaxNotSup  = 3
	PresentationContextProviderRejectionTransferSyntaxNotSup  = 4
)

// PresentationContextItem is both the RQ and AC form, P3.8 9.3.2.2 / 9.3.3.2.
// Type distinguishes which; Result is meaningful only for the AC form.
type PresentationContextItem struct {
	Type      byte
	ContextID byte
	Result    byte
	Items     []SubItem
}

func decodePresentationContextItem(d *dicomio.Reader, itemType byte, length uint16) (*PresentationContextItem, error) {
	v := &PresentationContextItem{Type: itemType}
	if err := d.PushLimit(int64(length)); err != nil {
		return nil, err
	}
	defer d.PopLimit()
	contextID, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	v.ContextID = contextID
	if err := d.Skip(1); err != nil {
		return nil, err
	}
	result, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	v.Result = result
	if err := d.Skip(1); err != nil {
		return nil, err
	}
	for !d.IsLimitExhausted() {
		item, err := DecodeSubItem(d)
		if err != nil {
			break
		}
		v.Items = append(v.Items, item)
	}
	if v.ContextID%2 != 1 {
		return v, fmt.Errorf("pdu_item: presentation context ID must be odd, got %d", v.ContextID)
	}
	return v, nil
}

func (v *PresentationContextItem) Write(e *dicomio.Writer) error {
	if v.Type != ItemTypePresentationContextRequest && v.Type != ItemTypePresentationContextResponse {
		return fmt.Errorf("pdu_item: invalid presentation context item type 0x%x", v.Type)
	}
	var buf bytes.Buffer
	inner := dicomio.NewWriter(&buf, binary.BigEndian, false)
	for _, item := range v.Items {
		if err := item.Write(inner); err != nil {
			return err
		}
	}
	if err := encodeSubItemHeader(e, v.Type, uint16(4+buf.Len())); err != nil {
		return err
	}
	if err := e.WriteUInt8(v.ContextID); err != nil {
		return err
	}
	if err := e.WriteZeros(1); err != nil {
		return err
	}
	if err := e.WriteUInt8(v.Result); err != nil {
		return err
	}
	if err := e.WriteZeros(1); err != nil {
		return err
	}
	return writeRawBytes(e, buf.Bytes())
}

func (v *PresentationContextItem) ItemType() byte { return v.Type }

func (v *PresentationContextItem) String() string {
	kind := "rq"
	if v.Type == ItemTypePresentationContextResponse {
		kind = "ac"
	}
	return fmt.Sprintf("presentationcontext%s{id:%d result:%d items:%s}",
		kind, v.ContextID, v.Result, SubItemListString(v.Items))
}

// NewPresentationContextRequest builds a proposed presentation context: one
// abstract syntax and one or more transfer syntaxes, P3.8 9.3.2.2.
func NewPresentationContextRequest(contextID byte, abstractSyntaxUID string, transferSyntaxUIDs []string) *PresentationContextItem {
	v := &PresentationContextItem{Type: ItemTypePresentationContextRequest, ContextID: contextID}
	v.Items = append(v.Items, NewAbstractSyntaxSubItem(abstractSyntaxUID))
	for _, ts := range transferSyntaxUIDs {
		v.Items = append(v.Items, NewTransferSyntaxSubItem(ts))
	}
	return v
}

// NewPresentationContextAccept builds the acceptor's reply to one proposed
// context: either Result==PresentationContextAccepted with exactly one
// transfer syntax, or a rejection result with no items, P3.8 9.3.3.2.
func NewPresentationContextAccept(contextID byte, result byte, transferSyntaxUID string) *PresentationContextItem {
	v := &PresentationContextItem{Type: ItemTypePresentationContextResponse, ContextID: contextID, Result: result}
	if result == PresentationContextAccepted {
		v.Items = append(v.Items, NewTransferSyntaxSubItem(transferSyntaxUID))
	}
	return v
}
