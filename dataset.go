package netdicom

import (
	"bytes"
	"encoding/binary"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// transferSyntaxByteOrderAndVR maps a transfer syntax UID to the byte
// order and implicit-VR flag a dicom.Writer/dicom.Parse call needs, P3.5
// Annex A. Unrecognized (e.g. compressed) syntaxes fall back to Explicit
// VR Little Endian, since this package never interprets pixel data itself.
func transferSyntaxByteOrderAndVR(transferSyntaxUID string) (binary.ByteOrder, bool) {
	switch transferSyntaxUID {
	case "1.2.840.10008.1.2":
		return binary.LittleEndian, true
	case "1.2.840.10008.1.2.2":
		return binary.BigEndian, false
	default:
		return binary.LittleEndian, false
	}
}

// encodeDatasetForContext serializes ds using the transfer syntax
// negotiated for context, for use as a C-STORE data payload.
func encodeDatasetForContext(ds *dicom.Dataset, context contextManagerEntry) ([]byte, error) {
	return encodeElementsForContext(ds.Elements, context)
}

// encodeElementsForContext serializes a loose element list (e.g. a C-FIND
// query filter) using context's negotiated transfer syntax.
func encodeElementsForContext(elems []*dicom.Element, context contextManagerEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := dicom.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	bo, implicit := transferSyntaxByteOrderAndVR(context.transferSyntaxUID)
	writer.SetTransferSyntax(bo, implicit)
	for _, elem := range elems {
		if err := writer.WriteElement(elem); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeDatasetForContext parses a C-FIND/C-GET response payload using
// context's negotiated transfer syntax.
func decodeDatasetForContext(data []byte, context contextManagerEntry) ([]*dicom.Element, error) {
	r := bytes.NewReader(data)
	ds, err := dicom.Parse(r, int64(len(data)), nil, dicom.SkipPixelData(), dicom.SkipMetadataReadOnNewParserInit())
	if err != nil {
		return nil, err
	}
	return ds.Elements, nil
}

// elementString returns the first string value of the element tagged t
// within elems, if any.
func elementString(elems []*dicom.Element, t tag.Tag) (string, bool) {
	for _, elem := range elems {
		if elem.Tag != t {
			continue
		}
		values, ok := elem.Value.GetValue().([]string)
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
	return "", false
}

// sopIdentifiers extracts the SOP Class/Instance UID pair from a matched
// C-GET dataset, for use as the AffectedSOPClassUID/AffectedSOPInstanceUID
// of the nested C-STORE sub-operation.
func sopIdentifiers(elems []*dicom.Element) (sopClassUID, sopInstanceUID string) {
	sopClassUID, _ = elementString(elems, tag.SOPClassUID)
	sopInstanceUID, _ = elementString(elems, tag.SOPInstanceUID)
	return sopClassUID, sopInstanceUID
}
