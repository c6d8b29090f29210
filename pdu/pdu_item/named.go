package pdu_item

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// namedItem is the shared shape for every sub-item whose payload is a single
// UID or name string: application-context, abstract-syntax, transfer-syntax,
// implementation-class-uid, implementation-version-name.
type namedItem struct {
	itemType byte
	label    string
	Name     string
}

func decodeNamedItem(d *dicomio.Reader, itemType byte, length uint16) (*namedItem, error) {
	name, err := d.ReadString(int(length))
	if err != nil {
		return nil, err
	}
	return &namedItem{itemType: itemType, Name: name}, nil
}

func (v *namedItem) Write(e *dicomio.Writer) error {
	if err := encodeSubItemHeader(e, v.itemType, uint16(len(v.Name))); err != nil {
		return err
	}
	return writeRawBytes(e, []byte(v.Name))
}

func (v *namedItem) ItemType() byte { return v.itemType }

func (v *namedItem) String() string {
	return fmt.Sprintf("%s{name: %q}", v.label, v.Name)
}

// ApplicationContextItem carries the fixed application-context UID, P3.8
// 9.3.2.1.
type ApplicationContextItem struct{ *namedItem }

func decodeApplicationContextItem(d *dicomio.Reader, length uint16) (*ApplicationContextItem, error) {
	n, err := decodeNamedItem(d, ItemTypeApplicationContext, length)
	if err != nil {
		return nil, err
	}
	n.label = "applicationcontext"
	return &ApplicationContextItem{n}, nil
}

// NewApplicationContextItem builds the default application-context item
// every association carries.
func NewApplicationContextItem() *ApplicationContextItem {
	return &ApplicationContextItem{&namedItem{itemType: ItemTypeApplicationContext, label: "applicationcontext", Name: DefaultApplicationContextName}}
}

// AbstractSyntaxSubItem names a proposed SOP class, P3.8 9.3.2.2.1.
type AbstractSyntaxSubItem struct{ *namedItem }

func decodeAbstractSyntaxSubItem(d *dicomio.Reader, length uint16) (*AbstractSyntaxSubItem, error) {
	n, err := decodeNamedItem(d, ItemTypeAbstractSyntax, length)
	if err != nil {
		return nil, err
	}
	n.label = "abstractsyntax"
	return &AbstractSyntaxSubItem{n}, nil
}

// NewAbstractSyntaxSubItem wraps a SOP class UID for a presentation context.
func NewAbstractSyntaxSubItem(uid string) *AbstractSyntaxSubItem {
	return &AbstractSyntaxSubItem{&namedItem{itemType: ItemTypeAbstractSyntax, label: "abstractsyntax", Name: uid}}
}

// TransferSyntaxSubItem names a proposed or accepted transfer syntax, P3.8
// 9.3.2.2.2.
type TransferSyntaxSubItem struct{ *namedItem }

func decodeTransferSyntaxSubItem(d *dicomio.Reader, length uint16) (*TransferSyntaxSubItem, error) {
	n, err := decodeNamedItem(d, ItemTypeTransferSyntax, length)
	if err != nil {
		return nil, err
	}
	n.label = "transfersyntax"
	return &TransferSyntaxSubItem{n}, nil
}

// NewTransferSyntaxSubItem wraps a transfer syntax UID.
func NewTransferSyntaxSubItem(uid string) *TransferSyntaxSubItem {
	return &TransferSyntaxSubItem{&namedItem{itemType: ItemTypeTransferSyntax, label: "transfersyntax", Name: uid}}
}

// ImplementationClassUIDSubItem identifies the peer's implementation, P3.7
// Annex D.3.3.2.1.
type ImplementationClassUIDSubItem struct{ *namedItem }

func decodeImplementationClassUIDSubItem(d *dicomio.Reader, length uint16) (*ImplementationClassUIDSubItem, error) {
	n, err := decodeNamedItem(d, ItemTypeImplementationClassUID, length)
	if err != nil {
		return nil, err
	}
	n.label = "implementationclassuid"
	return &ImplementationClassUIDSubItem{n}, nil
}

// NewImplementationClassUIDSubItem wraps this node's implementation class UID.
func NewImplementationClassUIDSubItem(uid string) *ImplementationClassUIDSubItem {
	return &ImplementationClassUIDSubItem{&namedItem{itemType: ItemTypeImplementationClassUID, label: "implementationclassuid", Name: uid}}
}

// ImplementationVersionNameSubItem is an optional free-text version string,
// P3.7 Annex D.3.3.2.3.
type ImplementationVersionNameSubItem struct{ *namedItem }

func decodeImplementationVersionNameSubItem(d *dicomio.Reader, length uint16) (*ImplementationVersionNameSubItem, error) {
	n, err := decodeNamedItem(d, ItemTypeImplementationVersionName, length)
	if err != nil {
		return nil, err
	}
	n.label = "implementationversionname"
	return &ImplementationVersionNameSubItem{n}, nil
}

// NewImplementationVersionNameSubItem wraps a free-text version string.
func NewImplementationVersionNameSubItem(name string) *ImplementationVersionNameSubItem {
	return &ImplementationVersionNameSubItem{&namedItem{itemType: ItemTypeImplementationVersionName, label: "implementationversionname", Name: name}}
}
