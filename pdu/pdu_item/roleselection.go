package pdu_item

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// SCP/SCU role values, P3.7 Annex D.3.3.4.
const (
	SCURoleDefault = 0
	SCURoleEnabled = 1
	SCPRoleDefault = 0
	SCPRoleEnabled = 1
)

// RoleSelectionSubItem negotiates which side may initiate operations for an
// abstract syntax, P3.7 Annex D.3.3.4.
type RoleSelectionSubItem struct {
	SOPClassUID string
	SCURole     byte
	SCPRole     byte
}

func decodeRoleSelectionSubItem(d *dicomio.Reader, length uint16) (*RoleSelectionSubItem, error) {
	uidLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	uid, err := d.ReadString(int(uidLen))
	if err != nil {
		return nil, err
	}
	scu, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	scp, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	return &RoleSelectionSubItem{SOPClassUID: uid, SCURole: scu, SCPRole: scp}, nil
}

func (v *RoleSelectionSubItem) Write(e *dicomio.Writer) error {
	if err := encodeSubItemHeader(e, ItemTypeRoleSelection, uint16(2+len(v.SOPClassUID)+2)); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.SOPClassUID))); err != nil {
		return err
	}
	if err := writeRawBytes(e, []byte(v.SOPClassUID)); err != nil {
		return err
	}
	if err := e.WriteUInt8(v.SCURole); err != nil {
		return err
	}
	return e.WriteUInt8(v.SCPRole)
}

func (v *RoleSelectionSubItem) ItemType() byte { return ItemTypeRoleSelection }

func (v *RoleSelectionSubItem) String() string {
	return fmt.Sprintf("roleselection{sopclass:%q scu:%d scp:%d}", v.SOPClassUID, v.SCURole, v.SCPRole)
}

// NewRoleSelectionSubItem builds a role negotiation item for the given SOP
// class. SCP role is needed by a C-GET/C-MOVE initiator and by an
// N-EVENT-REPORT receiver.
func NewRoleSelectionSubItem(sopClassUID string, scuRole, scpRole byte) *RoleSelectionSubItem {
	return &RoleSelectionSubItem{SOPClassUID: sopClassUID, SCURole: scuRole, SCPRole: scpRole}
}
