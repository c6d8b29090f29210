package dimse

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// NewElement builds a single-valued command-set element. DIMSE command
// fields are always either a UI/AE string or a US-like integer, P3.7
// Annex E.1, so only those shapes are supported here.
func NewElement(t tag.Tag, value interface{}) (*dicom.Element, error) {
	switch v := value.(type) {
	case string:
		return dicom.NewElement(t, []string{v})
	case uint16:
		return dicom.NewElement(t, []int{int(v)})
	case int:
		return dicom.NewElement(t, []int{v})
	case CommandDataSetType:
		return dicom.NewElement(t, []int{int(v)})
	case StatusCode:
		return dicom.NewElement(t, []int{int(v)})
	default:
		return nil, fmt.Errorf("dimse.NewElement: unsupported value type %T for tag %s", value, t.String())
	}
}

// EncodeElements writes a command set as Implicit VR Little Endian, P3.7
// 6.3.1. Every DIMSE message Encode method funnels its elements through
// this so CommandGroupLength can be computed over the result afterward.
func EncodeElements(out io.Writer, elems []*dicom.Element) error {
	writer, err := dicom.NewWriter(out)
	if err != nil {
		return fmt.Errorf("EncodeElements: error creating writer: %w", err)
	}
	writer.SetTransferSyntax(binary.LittleEndian, true)
	for _, elem := range elems {
		if err := writer.WriteElement(elem); err != nil {
			return fmt.Errorf("EncodeElements: failed to write element %s: %w", elem.Tag.String(), err)
		}
	}
	return nil
}
