package dimse

import (
	"fmt"
	"io"

	"github.com/dicomcore/netdicom/commandset"
	"github.com/suyashkumar/dicom"
)

// NGetRq retrieves attribute values from a managed SOP instance, P3.7 9.3.6.
// The attribute identifier list travels as the dataset, not a command
// element, since this package has no way to encode an AT-valued element.
type NGetRq struct {
	RequestedSOPClassUID    string
	MessageID               MessageID
	RequestedSOPInstanceUID string
	CommandDataSetType      CommandDataSetType
	Extra                   []*dicom.Element // Unparsed elements
}

func (v *NGetRq) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NGetRq.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.RequestedSOPClassUID, v.RequestedSOPClassUID); err != nil {
		return fmt.Errorf("NGetRq.Encode: failed to create RequestedSOPClassUID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.MessageID, v.MessageID); err != nil {
		return fmt.Errorf("NGetRq.Encode: failed to create MessageID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(v.CommandDataSetType)); err != nil {
		return fmt.Errorf("NGetRq.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.RequestedSOPInstanceUID, v.RequestedSOPInstanceUID); err != nil {
		return fmt.Errorf("NGetRq.Encode: failed to create RequestedSOPInstanceUID element: %w", err)
	}
	elems = append(elems, elem)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NGetRq.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NGetRq) HasData() bool          { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NGetRq) CommandField() uint16   { return CommandFieldNGetRq }
func (v *NGetRq) GetMessageID() MessageID { return v.MessageID }
func (v *NGetRq) GetStatus() *Status     { return nil }
func (v *NGetRq) String() string {
	return fmt.Sprintf("NGetRq{RequestedSOPClassUID:%v MessageID:%v RequestedSOPInstanceUID:%v}}",
		v.RequestedSOPClassUID, v.MessageID, v.RequestedSOPInstanceUID)
}

func (NGetRq) decode(d *MessageDecoder) (*NGetRq, error) {
	v := &NGetRq{}
	var err error
	if v.RequestedSOPClassUID, err = d.GetString(commandset.RequestedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NGetRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NGetRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NGetRq.decode: %w", err)
	}
	if v.RequestedSOPInstanceUID, err = d.GetString(commandset.RequestedSOPInstanceUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NGetRq.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NGetRsp returns the requested attribute values as the dataset payload.
type NGetRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	AffectedSOPInstanceUID    string
	CommandDataSetType        CommandDataSetType
	Status                    Status
	Extra                     []*dicom.Element // Unparsed elements
}

func (v *NGetRsp) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NGetRsp.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPClassUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID); err != nil {
			return fmt.Errorf("NGetRsp.Encode: failed to create AffectedSOPClassUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	if elem, err = NewElement(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo); err != nil {
		return fmt.Errorf("NGetRsp.Encode: failed to create MessageIDBeingRespondedTo element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(v.CommandDataSetType)); err != nil {
		return fmt.Errorf("NGetRsp.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPInstanceUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID); err != nil {
			return fmt.Errorf("NGetRsp.Encode: failed to create AffectedSOPInstanceUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	statusElems, err := v.Status.ToElements()
	if err != nil {
		return fmt.Errorf("NGetRsp.Encode: failed to create Status elements: %w", err)
	}
	elems = append(elems, statusElems...)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NGetRsp.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NGetRsp) HasData() bool          { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NGetRsp) CommandField() uint16   { return CommandFieldNGetRsp }
func (v *NGetRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *NGetRsp) GetStatus() *Status     { return &v.Status }
func (v *NGetRsp) String() string {
	return fmt.Sprintf("NGetRsp{MessageIDBeingRespondedTo:%v Status:%v}}", v.MessageIDBeingRespondedTo, v.Status)
}

func (NGetRsp) decode(d *MessageDecoder) (*NGetRsp, error) {
	v := &NGetRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NGetRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("NGetRsp.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NGetRsp.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NGetRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("NGetRsp.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NSetRq modifies attribute values on a managed SOP instance, P3.7 9.3.7.
// The modification list travels as the dataset.
type NSetRq struct {
	RequestedSOPClassUID    string
	MessageID               MessageID
	RequestedSOPInstanceUID string
	CommandDataSetType      CommandDataSetType
	Extra                   []*dicom.Element // Unparsed elements
}

func (v *NSetRq) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NSetRq.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.RequestedSOPClassUID, v.RequestedSOPClassUID); err != nil {
		return fmt.Errorf("NSetRq.Encode: failed to create RequestedSOPClassUID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.MessageID, v.MessageID); err != nil {
		return fmt.Errorf("NSetRq.Encode: failed to create MessageID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(v.CommandDataSetType)); err != nil {
		return fmt.Errorf("NSetRq.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.RequestedSOPInstanceUID, v.RequestedSOPInstanceUID); err != nil {
		return fmt.Errorf("NSetRq.Encode: failed to create RequestedSOPInstanceUID element: %w", err)
	}
	elems = append(elems, elem)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NSetRq.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NSetRq) HasData() bool          { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NSetRq) CommandField() uint16   { return CommandFieldNSetRq }
func (v *NSetRq) GetMessageID() MessageID { return v.MessageID }
func (v *NSetRq) GetStatus() *Status     { return nil }
func (v *NSetRq) String() string {
	return fmt.Sprintf("NSetRq{RequestedSOPClassUID:%v MessageID:%v RequestedSOPInstanceUID:%v}}",
		v.RequestedSOPClassUID, v.MessageID, v.RequestedSOPInstanceUID)
}

func (NSetRq) decode(d *MessageDecoder) (*NSetRq, error) {
	v := &NSetRq{}
	var err error
	if v.RequestedSOPClassUID, err = d.GetString(commandset.RequestedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NSetRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NSetRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NSetRq.decode: %w", err)
	}
	if v.RequestedSOPInstanceUID, err = d.GetString(commandset.RequestedSOPInstanceUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NSetRq.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NSetRsp acknowledges an N-SET-RQ, optionally returning the attributes that
// were actually modified.
type NSetRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	AffectedSOPInstanceUID    string
	CommandDataSetType        CommandDataSetType
	Status                    Status
	Extra                     []*dicom.Element // Unparsed elements
}

func (v *NSetRsp) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NSetRsp.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPClassUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID); err != nil {
			return fmt.Errorf("NSetRsp.Encode: failed to create AffectedSOPClassUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	if elem, err = NewElement(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo); err != nil {
		return fmt.Errorf("NSetRsp.Encode: failed to create MessageIDBeingRespondedTo element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(v.CommandDataSetType)); err != nil {
		return fmt.Errorf("NSetRsp.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPInstanceUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID); err != nil {
			return fmt.Errorf("NSetRsp.Encode: failed to create AffectedSOPInstanceUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	statusElems, err := v.Status.ToElements()
	if err != nil {
		return fmt.Errorf("NSetRsp.Encode: failed to create Status elements: %w", err)
	}
	elems = append(elems, statusElems...)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NSetRsp.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NSetRsp) HasData() bool          { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NSetRsp) CommandField() uint16   { return CommandFieldNSetRsp }
func (v *NSetRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *NSetRsp) GetStatus() *Status     { return &v.Status }
func (v *NSetRsp) String() string {
	return fmt.Sprintf("NSetRsp{MessageIDBeingRespondedTo:%v Status:%v}}", v.MessageIDBeingRespondedTo, v.Status)
}

func (NSetRsp) decode(d *MessageDecoder) (*NSetRsp, error) {
	v := &NSetRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NSetRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("NSetRsp.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NSetRsp.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NSetRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("NSetRsp.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}
