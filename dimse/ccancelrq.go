package dimse

import (
	"fmt"
	"io"

	"github.com/dicomcore/netdicom/commandset"
	"github.com/suyashkumar/dicom"
)

// CCancelRq cancels a pending C-FIND, C-GET or C-MOVE operation by the
// message ID of the request being cancelled, P3.7 9.3.2.3-4.
type CCancelRq struct {
	MessageIDBeingRespondedTo MessageID
	Extra                     []*dicom.Element // Unparsed elements
}

func (v *CCancelRq) Encode(e io.Writer) error {
	elems := []*dicom.Element{}

	elem, err := NewElement(commandset.CommandField, v.CommandField())
	if err != nil {
		return fmt.Errorf("CCancelRq.Encode: failed to create CommandField element: %w", err)
	}
	elems = append(elems, elem)

	elem, err = NewElement(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	if err != nil {
		return fmt.Errorf("CCancelRq.Encode: failed to create MessageIDBeingRespondedTo element: %w", err)
	}
	elems = append(elems, elem)

	elem, err = NewElement(commandset.CommandDataSetType, uint16(CommandDataSetTypeNull))
	if err != nil {
		return fmt.Errorf("CCancelRq.Encode: failed to create CommandDataSetType element: %w", err)
	}
	elems = append(elems, elem)

	elems = append(elems, v.Extra...)

	if err := EncodeElements(e, elems); err != nil {
		return fmt.Errorf("CCancelRq.Encode: failed to encode elements: %w", err)
	}
	return nil
}

func (v *CCancelRq) HasData() bool {
	return false
}

func (v *CCancelRq) CommandField() uint16 {
	return CommandFieldCCancelRq
}

func (v *CCancelRq) GetMessageID() MessageID {
	return v.MessageIDBeingRespondedTo
}

func (v *CCancelRq) GetStatus() *Status {
	return nil
}

func (v *CCancelRq) String() string {
	return fmt.Sprintf("CCancelRq{MessageIDBeingRespondedTo:%v}}", v.MessageIDBeingRespondedTo)
}

func (CCancelRq) decode(d *MessageDecoder) (*CCancelRq, error) {
	v := &CCancelRq{}
	var err error

	v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement)
	if err != nil {
		return nil, fmt.Errorf("CCancelRq.decode: failed to decode MessageIDBeingRespondedTo: %w", err)
	}

	v.Extra = d.UnparsedElements()
	return v, nil
}
