package dimse

import (
	"fmt"
	"io"

	"github.com/dicomcore/netdicom/commandset"
	"github.com/suyashkumar/dicom"
)

// NCreateRq instantiates a new managed SOP instance, P3.7 9.3.9.
// AffectedSOPInstanceUID is optional: omitted, the SCP assigns one.
type NCreateRq struct {
	AffectedSOPClassUID    string
	MessageID              MessageID
	AffectedSOPInstanceUID string
	CommandDataSetType     CommandDataSetType
	Extra                  []*dicom.Element // Unparsed elements
}

func (v *NCreateRq) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NCreateRq.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID); err != nil {
		return fmt.Errorf("NCreateRq.Encode: failed to create AffectedSOPClassUID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.MessageID, v.MessageID); err != nil {
		return fmt.Errorf("NCreateRq.Encode: failed to create MessageID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(v.CommandDataSetType)); err != nil {
		return fmt.Errorf("NCreateRq.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPInstanceUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID); err != nil {
			return fmt.Errorf("NCreateRq.Encode: failed to create AffectedSOPInstanceUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NCreateRq.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NCreateRq) HasData() bool          { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NCreateRq) CommandField() uint16   { return CommandFieldNCreateRq }
func (v *NCreateRq) GetMessageID() MessageID { return v.MessageID }
func (v *NCreateRq) GetStatus() *Status     { return nil }
func (v *NCreateRq) String() string {
	return fmt.Sprintf("NCreateRq{AffectedSOPClassUID:%v MessageID:%v AffectedSOPInstanceUID:%v}}",
		v.AffectedSOPClassUID, v.MessageID, v.AffectedSOPInstanceUID)
}

func (NCreateRq) decode(d *MessageDecoder) (*NCreateRq, error) {
	v := &NCreateRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NCreateRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NCreateRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NCreateRq.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NCreateRq.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NCreateRsp returns the UID assigned to the new instance and its initial
// attribute values.
type NCreateRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	AffectedSOPInstanceUID    string
	CommandDataSetType        CommandDataSetType
	Status                    Status
	Extra                     []*dicom.Element // Unparsed elements
}

func (v *NCreateRsp) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NCreateRsp.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPClassUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID); err != nil {
			return fmt.Errorf("NCreateRsp.Encode: failed to create AffectedSOPClassUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	if elem, err = NewElement(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo); err != nil {
		return fmt.Errorf("NCreateRsp.Encode: failed to create MessageIDBeingRespondedTo element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(v.CommandDataSetType)); err != nil {
		return fmt.Errorf("NCreateRsp.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPInstanceUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID); err != nil {
			return fmt.Errorf("NCreateRsp.Encode: failed to create AffectedSOPInstanceUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	statusElems, err := v.Status.ToElements()
	if err != nil {
		return fmt.Errorf("NCreateRsp.Encode: failed to create Status elements: %w", err)
	}
	elems = append(elems, statusElems...)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NCreateRsp.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NCreateRsp) HasData() bool          { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NCreateRsp) CommandField() uint16   { return CommandFieldNCreateRsp }
func (v *NCreateRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *NCreateRsp) GetStatus() *Status     { return &v.Status }
func (v *NCreateRsp) String() string {
	return fmt.Sprintf("NCreateRsp{AffectedSOPInstanceUID:%v Status:%v}}", v.AffectedSOPInstanceUID, v.Status)
}

func (NCreateRsp) decode(d *MessageDecoder) (*NCreateRsp, error) {
	v := &NCreateRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NCreateRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("NCreateRsp.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NCreateRsp.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NCreateRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("NCreateRsp.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NDeleteRq removes a managed SOP instance, P3.7 9.3.10. It never carries a
// dataset.
type NDeleteRq struct {
	RequestedSOPClassUID    string
	MessageID               MessageID
	RequestedSOPInstanceUID string
	Extra                   []*dicom.Element // Unparsed elements
}

func (v *NDeleteRq) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NDeleteRq.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.RequestedSOPClassUID, v.RequestedSOPClassUID); err != nil {
		return fmt.Errorf("NDeleteRq.Encode: failed to create RequestedSOPClassUID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.MessageID, v.MessageID); err != nil {
		return fmt.Errorf("NDeleteRq.Encode: failed to create MessageID element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(CommandDataSetTypeNull)); err != nil {
		return fmt.Errorf("NDeleteRq.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.RequestedSOPInstanceUID, v.RequestedSOPInstanceUID); err != nil {
		return fmt.Errorf("NDeleteRq.Encode: failed to create RequestedSOPInstanceUID element: %w", err)
	}
	elems = append(elems, elem)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NDeleteRq.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NDeleteRq) HasData() bool          { return false }
func (v *NDeleteRq) CommandField() uint16   { return CommandFieldNDeleteRq }
func (v *NDeleteRq) GetMessageID() MessageID { return v.MessageID }
func (v *NDeleteRq) GetStatus() *Status     { return nil }
func (v *NDeleteRq) String() string {
	return fmt.Sprintf("NDeleteRq{RequestedSOPClassUID:%v MessageID:%v RequestedSOPInstanceUID:%v}}",
		v.RequestedSOPClassUID, v.MessageID, v.RequestedSOPInstanceUID)
}

func (NDeleteRq) decode(d *MessageDecoder) (*NDeleteRq, error) {
	v := &NDeleteRq{}
	var err error
	if v.RequestedSOPClassUID, err = d.GetString(commandset.RequestedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NDeleteRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NDeleteRq.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NDeleteRq.decode: %w", err)
	}
	if v.RequestedSOPInstanceUID, err = d.GetString(commandset.RequestedSOPInstanceUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NDeleteRq.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NDeleteRsp acknowledges an N-DELETE-RQ. It never carries a dataset.
type NDeleteRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	AffectedSOPInstanceUID    string
	Status                    Status
	Extra                     []*dicom.Element // Unparsed elements
}

func (v *NDeleteRsp) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("NDeleteRsp.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPClassUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID); err != nil {
			return fmt.Errorf("NDeleteRsp.Encode: failed to create AffectedSOPClassUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	if elem, err = NewElement(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo); err != nil {
		return fmt.Errorf("NDeleteRsp.Encode: failed to create MessageIDBeingRespondedTo element: %w", err)
	}
	elems = append(elems, elem)
	if elem, err = NewElement(commandset.CommandDataSetType, uint16(CommandDataSetTypeNull)); err != nil {
		return fmt.Errorf("NDeleteRsp.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)
	if v.AffectedSOPInstanceUID != "" {
		if elem, err = NewElement(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID); err != nil {
			return fmt.Errorf("NDeleteRsp.Encode: failed to create AffectedSOPInstanceUID element: %w", err)
		}
		elems = append(elems, elem)
	}
	statusElems, err := v.Status.ToElements()
	if err != nil {
		return fmt.Errorf("NDeleteRsp.Encode: failed to create Status elements: %w", err)
	}
	elems = append(elems, statusElems...)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NDeleteRsp.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NDeleteRsp) HasData() bool          { return false }
func (v *NDeleteRsp) CommandField() uint16   { return CommandFieldNDeleteRsp }
func (v *NDeleteRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *NDeleteRsp) GetStatus() *Status     { return &v.Status }
func (v *NDeleteRsp) String() string {
	return fmt.Sprintf("NDeleteRsp{MessageIDBeingRespondedTo:%v Status:%v}}", v.MessageIDBeingRespondedTo, v.Status)
}

func (NDeleteRsp) decode(d *MessageDecoder) (*NDeleteRsp, error) {
	v := &NDeleteRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NDeleteRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("NDeleteRsp.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NDeleteRsp.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NDeleteRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("NDeleteRsp.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}
