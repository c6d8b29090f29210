// Package pdu_item implements the nested items carried inside the Upper
// Layer PDUs: application-context, presentation-context (request and
// accept forms), abstract/transfer syntax, user-information and its
// sub-items. See P3.8 9.3.
package pdu_item

import (
	"bytes"
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// Item type bytes, P3.8 Table 9-12 and Annex D.
const (
	ItemTypeApplicationContext                = 0x10
	ItemTypePresentationContextRequest        = 0x20
	ItemTypePresentationContextResponse       = 0x21
	ItemTypeAbstractSyntax                    = 0x30
	ItemTypeTransferSyntax                    = 0x40
	ItemTypeUserInformation                   = 0x50
	ItemTypeMaximumLength                     = 0x51
	ItemTypeImplementationClassUID            = 0x52
	ItemTypeAsyncOperationsWindow             = 0x53
	ItemTypeRoleSelection                     = 0x54
	ItemTypeImplementationVersionName         = 0x55
	ItemTypeSOPClassExtendedNegotiation       = 0x56
	ItemTypeSOPClassCommonExtendedNegotiation = 0x57
	ItemTypeUserIdentityRequest               = 0x58
	ItemTypeUserIdentityResponse              = 0x59
)

// DefaultApplicationContextName is the fixed application-context UID used
// for every association, P3.7 Annex A.2.1.
const DefaultApplicationContextName = "1.2.840.10008.3.1.1.1"

// SubItem is any value nested inside an A-ASSOCIATE PDU or a
// user-information item.
type SubItem interface {
	fmt.Stringer
	Write(e *dicomio.Writer) error
	ItemType() byte
}

// DecodeSubItem reads one item header and dispatches to the matching
// decoder. An unrecognized item type is preserved verbatim as an
// UnsupportedSubItem so that negotiation can echo it back, rather than
// silently dropping it.
func DecodeSubItem(d *dicomio.Reader) (SubItem, error) {
	itemType, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	if err := d.Skip(1); err != nil {
		return nil, err
	}
	length, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	switch itemType {
	case ItemTypeApplicationContext:
		return decodeApplicationContextItem(d, length)
	case ItemTypeAbstractSyntax:
		return decodeAbstractSyntaxSubItem(d, length)
	case ItemTypeTransferSyntax:
		return decodeTransferSyntaxSubItem(d, length)
	case ItemTypePresentationContextRequest, ItemTypePresentationContextResponse:
		return decodePresentationContextItem(d, itemType, length)
	case ItemTypeUserInformation:
		return decodeUserInformationItem(d, length)
	case ItemTypeMaximumLength:
		return decodeMaximumLengthItem(d, length)
	case ItemTypeImplementationClassUID:
		return decodeImplementationClassUIDSubItem(d, length)
	case ItemTypeAsyncOperationsWindow:
		return decodeAsyncOperationsWindowSubItem(d, length)
	case ItemTypeRoleSelection:
		return decodeRoleSelectionSubItem(d, length)
	case ItemTypeImplementationVersionName:
		return decodeImplementationVersionNameSubItem(d, length)
	case ItemTypeSOPClassExtendedNegotiation:
		return decodeSOPClassExtendedNegotiationSubItem(d, length)
	case ItemTypeSOPClassCommonExtendedNegotiation:
		return decodeSOPClassCommonExtendedNegotiationSubItem(d, length)
	case ItemTypeUserIdentityRequest:
		return decodeUserIdentityRequestSubItem(d, length)
	case ItemTypeUserIdentityResponse:
		return decodeUserIdentityResponseSubItem(d, length)
	default:
		return decodeUnsupportedSubItem(d, itemType, length)
	}
}

func encodeSubItemHeader(e *dicomio.Writer, itemType byte, length uint16) error {
	if err := e.WriteUInt8(itemType); err != nil {
		return err
	}
	if err := e.WriteZeros(1); err != nil {
		return err
	}
	return e.WriteUInt16(length)
}

// SubItemListString renders a list of items for debug logging as a single
// bracketed, comma-separated line.
func SubItemListString(items []SubItem) string {
	buf := bytes.Buffer{}
	buf.WriteString("[")
	for i, item := range items {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(item.String())
	}
	buf.WriteString("]")
	return buf.String()
}

// readRawBytes reads exactly n bytes via ReadString, since dicomio.Reader
// exposes no raw byte-slice reader; item payloads here are always treated
// as opaque octet strings regardless of character repertoire.
func readRawBytes(d *dicomio.Reader, n int) ([]byte, error) {
	s, err := d.ReadString(n)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func writeRawBytes(e *dicomio.Writer, b []byte) error {
	return e.WriteString(string(b))
}
