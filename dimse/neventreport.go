package dimse

import (
	"fmt"
	"io"

	"github.com/dicomcore/netdicom/commandset"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// NEventReportRq is sent SCP to SCU to notify of an event on a managed SOP
// instance, P3.7 9.3.5.
type NEventReportRq struct {
	AffectedSOPClassUID    string
	MessageID              MessageID
	AffectedSOPInstanceUID string
	EventTypeID            uint16
	CommandDataSetType     CommandDataSetType
	Extra                  []*dicom.Element // Unparsed elements
}

func (v *NEventReportRq) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	add := func(t tag.Tag, value interface{}, label string) error {
		elem, err := NewElement(t, value)
		if err != nil {
			return fmt.Errorf("NEventReportRq.Encode: failed to create %s element: %w", label, err)
		}
		elems = append(elems, elem)
		return nil
	}
	if err := add(commandset.CommandField, v.CommandField(), "CommandField"); err != nil {
		return err
	}
	if err := add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID, "AffectedSOPClassUID"); err != nil {
		return err
	}
	if err := add(commandset.MessageID, v.MessageID, "MessageID"); err != nil {
		return err
	}
	if err := add(commandset.CommandDataSetType, uint16(v.CommandDataSetType), "CommandDataSetType"); err != nil {
		return err
	}
	if err := add(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID, "AffectedSOPInstanceUID"); err != nil {
		return err
	}
	if err := add(commandset.EventTypeID, v.EventTypeID, "EventTypeID"); err != nil {
		return err
	}
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NEventReportRq.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NEventReportRq) HasData() bool { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NEventReportRq) CommandField() uint16 { return CommandFieldNEventReportRq }
func (v *NEventReportRq) GetMessageID() MessageID { return v.MessageID }
func (v *NEventReportRq) GetStatus() *Status { return nil }
func (v *NEventReportRq) String() string {
	return fmt.Sprintf("NEventReportRq{AffectedSOPClassUID:%v MessageID:%v AffectedSOPInstanceUID:%v EventTypeID:%v}}",
		v.AffectedSOPClassUID, v.MessageID, v.AffectedSOPInstanceUID, v.EventTypeID)
}

func (NEventReportRq) decode(d *MessageDecoder) (*NEventReportRq, error) {
	v := &NEventReportRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NEventReportRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NEventReportRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NEventReportRq.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NEventReportRq.decode: %w", err)
	}
	if v.EventTypeID, err = d.GetUInt16(commandset.EventTypeID, RequiredElement); err != nil {
		return nil, fmt.Errorf("NEventReportRq.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}

// NEventReportRsp acknowledges an N-EVENT-REPORT-RQ, optionally returning an
// event-reply attribute list.
type NEventReportRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	AffectedSOPInstanceUID    string
	EventTypeID               uint16
	CommandDataSetType        CommandDataSetType
	Status                    Status
	Extra                     []*dicom.Element // Unparsed elements
}

func (v *NEventReportRsp) Encode(e io.Writer) error {
	elems := []*dicom.Element{}
	add := func(t tag.Tag, value interface{}, label string) error {
		elem, err := NewElement(t, value)
		if err != nil {
			return fmt.Errorf("NEventReportRsp.Encode: failed to create %s element: %w", label, err)
		}
		elems = append(elems, elem)
		return nil
	}
	if err := add(commandset.CommandField, v.CommandField(), "CommandField"); err != nil {
		return err
	}
	if v.AffectedSOPClassUID != "" {
		if err := add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID, "AffectedSOPClassUID"); err != nil {
			return err
		}
	}
	if err := add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo, "MessageIDBeingRespondedTo"); err != nil {
		return err
	}
	if err := add(commandset.CommandDataSetType, uint16(v.CommandDataSetType), "CommandDataSetType"); err != nil {
		return err
	}
	if v.AffectedSOPInstanceUID != "" {
		if err := add(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID, "AffectedSOPInstanceUID"); err != nil {
			return err
		}
	}
	if v.EventTypeID != 0 {
		if err := add(commandset.EventTypeID, v.EventTypeID, "EventTypeID"); err != nil {
			return err
		}
	}
	statusElems, err := v.Status.ToElements()
	if err != nil {
		return fmt.Errorf("NEventReportRsp.Encode: failed to create Status elements: %w", err)
	}
	elems = append(elems, statusElems...)
	elems = append(elems, v.Extra...)
	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("NEventReportRsp.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *NEventReportRsp) HasData() bool { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *NEventReportRsp) CommandField() uint16 { return CommandFieldNEventReportRsp }
func (v *NEventReportRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *NEventReportRsp) GetStatus() *Status { return &v.Status }
func (v *NEventReportRsp) String() string {
	return fmt.Sprintf("NEventReportRsp{MessageIDBeingRespondedTo:%v Status:%v}}", v.MessageIDBeingRespondedTo, v.Status)
}

func (NEventReportRsp) decode(d *MessageDecoder) (*NEventReportRsp, error) {
	v := &NEventReportRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NEventReportRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("NEventReportRsp.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("NEventReportRsp.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NEventReportRsp.decode: %w", err)
	}
	if v.EventTypeID, err = d.GetUInt16(commandset.EventTypeID, OptionalElement); err != nil {
		return nil, fmt.Errorf("NEventReportRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("NEventReportRsp.decode: %w", err)
	}
	v.Extra = d.UnparsedElements()
	return v, nil
}
