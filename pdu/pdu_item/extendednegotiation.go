package pdu_item

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/dicomio"
)

// SOPClassExtendedNegotiationSubItem carries service-class-specific
// application information, P3.7 Annex D.3.3.5.
type SOPClassExtendedNegotiationSubItem struct {
	SOPClassUID         string
	ServiceClassAppInfo []byte
}

func decodeSOPClassExtendedNegotiationSubItem(d *dicomio.Reader, length uint16) (*SOPClassExtendedNegotiationSubItem, error) {
	uidLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	uid, err := d.ReadString(int(uidLen))
	if err != nil {
		return nil, err
	}
	remaining := int(length) - 2 - int(uidLen)
	if remaining < 0 {
		return nil, fmt.Errorf("pdu_item: sopclass-extended-neg item shorter than its uid field")
	}
	appInfo, err := readRawBytes(d, remaining)
	if err != nil {
		return nil, err
	}
	return &SOPClassExtendedNegotiationSubItem{SOPClassUID: uid, ServiceClassAppInfo: appInfo}, nil
}

func (v *SOPClassExtendedNegotiationSubItem) Write(e *dicomio.Writer) error {
	length := 2 + len(v.SOPClassUID) + len(v.ServiceClassAppInfo)
	if err := encodeSubItemHeader(e, ItemTypeSOPClassExtendedNegotiation, uint16(length)); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.SOPClassUID))); err != nil {
		return err
	}
	if err := writeRawBytes(e, []byte(v.SOPClassUID)); err != nil {
		return err
	}
	return writeRawBytes(e, v.ServiceClassAppInfo)
}

func (v *SOPClassExtendedNegotiationSubItem) ItemType() byte {
	return ItemTypeSOPClassExtendedNegotiation
}

func (v *SOPClassExtendedNegotiationSubItem) String() string {
	return fmt.Sprintf("sopclassextendedneg{sopclass:%q appinfo:%dbytes}", v.SOPClassUID, len(v.ServiceClassAppInfo))
}

// SOPClassCommonExtendedNegotiationSubItem names a service class and related
// general SOP classes, P3.7 Annex D.3.3.6.
type SOPClassCommonExtendedNegotiationSubItem struct {
	SOPClassUID            string
	ServiceClassUID        string
	RelatedGeneralSOPClass []string
}

func decodeSOPClassCommonExtendedNegotiationSubItem(d *dicomio.Reader, length uint16) (*SOPClassCommonExtendedNegotiationSubItem, error) {
	if err := d.PushLimit(int64(length)); err != nil {
		return nil, err
	}
	defer d.PopLimit()
	sopLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	sopUID, err := d.ReadString(int(sopLen))
	if err != nil {
		return nil, err
	}
	svcLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	svcUID, err := d.ReadString(int(svcLen))
	if err != nil {
		return nil, err
	}
	relatedLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	v := &SOPClassCommonExtendedNegotiationSubItem{SOPClassUID: sopUID, ServiceClassUID: svcUID}
	if err := d.PushLimit(int64(relatedLen)); err != nil {
		return nil, err
	}
	for !d.IsLimitExhausted() {
		l, err := d.ReadUInt16()
		if err != nil {
			break
		}
		uid, err := d.ReadString(int(l))
		if err != nil {
			break
		}
		v.RelatedGeneralSOPClass = append(v.RelatedGeneralSOPClass, uid)
	}
	d.PopLimit()
	return v, nil
}

func (v *SOPClassCommonExtendedNegotiationSubItem) Write(e *dicomio.Writer) error {
	relatedBytes := 0
	for _, uid := range v.RelatedGeneralSOPClass {
		relatedBytes += 2 + len(uid)
	}
	length := 2 + len(v.SOPClassUID) + 2 + len(v.ServiceClassUID) + 2 + relatedBytes
	if err := encodeSubItemHeader(e, ItemTypeSOPClassCommonExtendedNegotiation, uint16(length)); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.SOPClassUID))); err != nil {
		return err
	}
	if err := writeRawBytes(e, []byte(v.SOPClassUID)); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.ServiceClassUID))); err != nil {
		return err
	}
	if err := writeRawBytes(e, []byte(v.ServiceClassUID)); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(relatedBytes)); err != nil {
		return err
	}
	for _, uid := range v.RelatedGeneralSOPClass {
		if err := e.WriteUInt16(uint16(len(uid))); err != nil {
			return err
		}
		if err := writeRawBytes(e, []byte(uid)); err != nil {
			return err
		}
	}
	return nil
}

func (v *SOPClassCommonExtendedNegotiationSubItem) ItemType() byte {
	return ItemTypeSOPClassCommonExtendedNegotiation
}

func (v *SOPClassCommonExtendedNegotiationSubItem) String() string {
	return fmt.Sprintf("sopclasscommonextendedneg{sopclass:%q serviceclass:%q related:%v}",
		v.SOPClassUID, v.ServiceClassUID, v.RelatedGeneralSOPClass)
}

// User identity types, P3.7 Annex D.3.3.7.
const (
	UserIdentityTypeUsername             = 1
	UserIdentityTypeUsernamePasscode      = 2
	UserIdentityTypeKerberos             = 3
	UserIdentityTypeSAML                 = 4
	UserIdentityTypeJWT                  = 5
)

// UserIdentitySubItem is the RQ form of user identity negotiation.
type UserIdentitySubItem struct {
	UserIdentityType         byte
	PositiveResponseRequested byte
	PrimaryField             []byte
	SecondaryField            []byte
}

func decodeUserIdentityRequestSubItem(d *dicomio.Reader, length uint16) (*UserIdentitySubItem, error) {
	typ, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	posResp, err := d.ReadUInt8()
	if err != nil {
		return nil, err
	}
	primLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	prim, err := readRawBytes(d, int(primLen))
	if err != nil {
		return nil, err
	}
	secLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	sec, err := readRawBytes(d, int(secLen))
	if err != nil {
		return nil, err
	}
	return &UserIdentitySubItem{UserIdentityType: typ, PositiveResponseRequested: posResp, PrimaryField: prim, SecondaryField: sec}, nil
}

func (v *UserIdentitySubItem) Write(e *dicomio.Writer) error {
	length := 1 + 1 + 2 + len(v.PrimaryField) + 2 + len(v.SecondaryField)
	if err := encodeSubItemHeader(e, ItemTypeUserIdentityRequest, uint16(length)); err != nil {
		return err
	}
	if err := e.WriteUInt8(v.UserIdentityType); err != nil {
		return err
	}
	if err := e.WriteUInt8(v.PositiveResponseRequested); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.PrimaryField))); err != nil {
		return err
	}
	if err := writeRawBytes(e, v.PrimaryField); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.SecondaryField))); err != nil {
		return err
	}
	return writeRawBytes(e, v.SecondaryField)
}

func (v *UserIdentitySubItem) ItemType() byte { return ItemTypeUserIdentityRequest }

func (v *UserIdentitySubItem) String() string {
	return fmt.Sprintf("useridentityrq{type:%d positiveresponse:%d}", v.UserIdentityType, v.PositiveResponseRequested)
}

// UserIdentityResponseSubItem is the AC form, carrying the server's
// response token (e.g. a Kerberos/SAML assertion) when positive response
// was requested.
type UserIdentityResponseSubItem struct {
	ServerResponse []byte
}

func decodeUserIdentityResponseSubItem(d *dicomio.Reader, length uint16) (*UserIdentityResponseSubItem, error) {
	respLen, err := d.ReadUInt16()
	if err != nil {
		return nil, err
	}
	resp, err := readRawBytes(d, int(respLen))
	if err != nil {
		return nil, err
	}
	return &UserIdentityResponseSubItem{ServerResponse: resp}, nil
}

func (v *UserIdentityResponseSubItem) Write(e *dicomio.Writer) error {
	if err := encodeSubItemHeader(e, ItemTypeUserIdentityResponse, uint16(2+len(v.ServerResponse))); err != nil {
		return err
	}
	if err := e.WriteUInt16(uint16(len(v.ServerResponse))); err != nil {
		return err
	}
	return writeRawBytes(e, v.ServerResponse)
}

func (v *UserIdentityResponseSubItem) ItemType() byte { return ItemTypeUserIdentityResponse }

func (v *UserIdentityResponseSubItem) String() string {
	return fmt.Sprintf("useridentityac{response:%dbytes}", len(v.ServerResponse))
}
