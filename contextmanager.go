package netdicom

import (
	"fmt"

	"github.com/dicomcore/netdicom/pdu/pdu_item"
	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/grailbio/go-dicom/dicomlog"
)

// contextManagerEntry maps one presentation context ID to the pair of
// abstract/transfer syntax UIDs negotiated for it.
type contextManagerEntry struct {
	contextID         byte
	abstractSyntaxUID string
	transferSyntaxUID string
}

// contextManager tracks the presentation contexts of one association. A
// fresh contextManager is created per connection in runStateMachineForService*.
type contextManager struct {
	label string

	contextIDToEntry          map[byte]*contextManagerEntry
	abstractSyntaxUIDToEntry  map[string]*contextManagerEntry

	// peerMaxPDUSize is the max PDU length the peer told us it accepts,
	// gleaned from the max-length user-information item.
	peerMaxPDUSize int
	peerImplementationClassUID    string
	peerImplementationVersionName string

	// tmpRequests holds the contextID->PresentationContextItem mapping
	// generated by generateAssociateRequest, consulted once the acceptor's
	// A-ASSOCIATE-AC arrives. Used only on the requestor side.
	tmpRequests map[byte]*pdu_item.PresentationContextItem

	// supportedAbstractSyntaxes restricts which abstract syntaxes
	// onAssociateRequest will accept. Only set on the acceptor side; a nil
	// or empty set means no restriction (used by the requestor side, which
	// never calls onAssociateRequest).
	supportedAbstractSyntaxes map[string]bool
}

func newContextManager(label string, supportedAbstractSyntaxes []string) *contextManager {
	m := &contextManager{
		label:                    label,
		contextIDToEntry:         make(map[byte]*contextManagerEntry),
		abstractSyntaxUIDToEntry: make(map[string]*contextManagerEntry),
		peerMaxPDUSize:           DefaultMaxPDUSize,
		tmpRequests:              make(map[byte]*pdu_item.PresentationContextItem),
	}
	if len(supportedAbstractSyntaxes) > 0 {
		m.supportedAbstractSyntaxes = make(map[string]bool, len(supportedAbstractSyntaxes))
		for _, uid := range supportedAbstractSyntaxes {
			m.supportedAbstractSyntaxes[uid] = true
		}
	}
	return m
}

// generateAssociateRequest builds the Items list of an A-ASSOCIATE-RQ: one
// application-context item, one presentation-context item per abstract
// syntax (odd context IDs starting at 1, P3.8 9.3.2.2), and one
// user-information item, P3.8 9.3.2.
func (m *contextManager) generateAssociateRequest(sopClasses []string, transferSyntaxUIDs []string) []pdu_item.SubItem {
	items := []pdu_item.SubItem{pdu_item.NewApplicationContextItem()}
	var contextID byte = 1
	for _, sop := range sopClasses {
		item := pdu_item.NewPresentationContextRequest(contextID, sop, transferSyntaxUIDs)
		items = append(items, item)
		m.tmpRequests[contextID] = item
		contextID += 2
	}
	items = append(items, &pdu_item.UserInformationItem{
		Items: []pdu_item.SubItem{
			pdu_item.NewMaximumLengthItem(DefaultMaxPDUSize),
			pdu_item.NewImplementationClassUIDSubItem(uidinfo.DefaultImplementationClassUID),
			pdu_item.NewImplementationVersionNameSubItem(uidinfo.DefaultImplementationVersionName),
		},
	})
	return items
}

// onAssociateRequest is called on the acceptor side once an A-ASSOCIATE-RQ
// arrives. It picks, for each proposed presentation context, the first
// transfer syntax the requestor offered (this package has no local
// preference order of its own) and returns the Items for A-ASSOCIATE-AC.
func (m *contextManager) onAssociateRequest(requestItems []pdu_item.SubItem) ([]pdu_item.SubItem, error) {
	responses := []pdu_item.SubItem{pdu_item.NewApplicationContextItem()}
	for _, requestItem := range requestItems {
		switch ri := requestItem.(type) {
		case *pdu_item.ApplicationContextItem:
			// Nothing to validate beyond the item existing.
		case *pdu_item.PresentationContextItem:
			var abstractSyntaxUID string
			var pickedTransferSyntaxUID string
			for _, subItem := range ri.Items {
				switch c := subItem.(type) {
				case *pdu_item.AbstractSyntaxSubItem:
					if abstractSyntaxUID != "" {
						return nil, fmt.Errorf("contextmanager(%s): multiple abstract syntaxes in %v", m.label, ri.String())
					}
					abstractSyntaxUID = c.Name
				case *pdu_item.TransferSyntaxSubItem:
					if pickedTransferSyntaxUID == "" {
						pickedTransferSyntaxUID = c.Name
					}
				}
			}
			if abstractSyntaxUID == "" {
				responses = append(responses, pdu_item.NewPresentationContextAccept(
					ri.ContextID, pdu_item.PresentationContextProviderRejectionAbstractSyntaxNotSup, uidinfo.ImplicitVRLittleEndian))
				continue
			}
			if m.supportedAbstractSyntaxes != nil && !m.supportedAbstractSyntaxes[abstractSyntaxUID] {
				dicomlog.Vprintf(1, "dicom.contextManager(%s): rejecting unsupported abstract syntax %s", m.label, abstractSyntaxUID)
				responses = append(responses, pdu_item.NewPresentationContextAccept(
					ri.ContextID, pdu_item.PresentationContextProviderRejectionAbstractSyntaxNotSup, uidinfo.ImplicitVRLittleEndian))
				continue
			}
			if pickedTransferSyntaxUID == "" {
				responses = append(responses, pdu_item.NewPresentationContextAccept(
					ri.ContextID, pdu_item.PresentationContextProviderRejectionTransferSyntaxNotSup, uidinfo.ImplicitVRLittleEndian))
				continue
			}
			responses = append(responses, pdu_item.NewPresentationContextAccept(
				ri.ContextID, pdu_item.PresentationContextAccepted, pickedTransferSyntaxUID))
			m.addMapping(abstractSyntaxUID, pickedTransferSyntaxUID, ri.ContextID)
		case *pdu_item.UserInformationItem:
			m.absorbUserInformation(ri)
		}
	}
	responses = append(responses, &pdu_item.UserInformationItem{
		Items: []pdu_item.SubItem{pdu_item.NewMaximumLengthItem(DefaultMaxPDUSize)},
	})
	dicomlog.Vprintf(1, "dicom.contextManager(%s): accepted %d context(s), peer max PDU %d",
		m.label, len(m.contextIDToEntry), m.peerMaxPDUSize)
	return responses, nil
}

// onAssociateResponse is called on the requestor side once an
// A-ASSOCIATE-AC arrives, matching each accepted context back against
// tmpRequests.
func (m *contextManager) onAssociateResponse(responseItems []pdu_item.SubItem) error {
	for _, responseItem := range responseItems {
		switch ri := responseItem.(type) {
		case *pdu_item.PresentationContextItem:
			if ri.Result != pdu_item.PresentationContextAccepted {
				continue // Acceptor rejected this context; simply not usable.
			}
			var pickedTransferSyntaxUID string
			for _, subItem := range ri.Items {
				if c, ok := subItem.(*pdu_item.TransferSyntaxSubItem); ok {
					pickedTransferSyntaxUID = c.Name
				}
			}
			request, ok := m.tmpRequests[ri.ContextID]
			if !ok {
				return fmt.Errorf("contextmanager(%s): unknown context ID %d in A-ASSOCIATE-AC", m.label, ri.ContextID)
			}
			var abstractSyntaxUID string
			for _, subItem := range request.Items {
				if c, ok := subItem.(*pdu_item.AbstractSyntaxSubItem); ok {
					abstractSyntaxUID = c.Name
				}
			}
			if abstractSyntaxUID == "" || pickedTransferSyntaxUID == "" {
				return fmt.Errorf("contextmanager(%s): incomplete presentation context in A-ASSOCIATE-AC", m.label)
			}
			m.addMapping(abstractSyntaxUID, pickedTransferSyntaxUID, ri.ContextID)
		case *pdu_item.UserInformationItem:
			m.absorbUserInformation(ri)
		}
	}
	dicomlog.Vprintf(1, "dicom.contextManager(%s): negotiated %d context(s), peer max PDU %d",
		m.label, len(m.contextIDToEntry), m.peerMaxPDUSize)
	return nil
}

func (m *contextManager) absorbUserInformation(ui *pdu_item.UserInformationItem) {
	for _, subItem := range ui.Items {
		switch c := subItem.(type) {
		case *pdu_item.MaximumLengthItem:
			m.peerMaxPDUSize = int(c.MaximumLengthReceived)
		case *pdu_item.ImplementationClassUIDSubItem:
			m.peerImplementationClassUID = c.Name
		case *pdu_item.ImplementationVersionNameSubItem:
			m.peerImplementationVersionName = c.Name
		}
	}
}

func (m *contextManager) addMapping(abstractSyntaxUID, transferSyntaxUID string, contextID byte) {
	doassert(abstractSyntaxUID != "")
	doassert(transferSyntaxUID != "")
	doassert(contextID%2 == 1)
	e := &contextManagerEntry{
		contextID:         contextID,
		abstractSyntaxUID: abstractSyntaxUID,
		transferSyntaxUID: transferSyntaxUID,
	}
	m.contextIDToEntry[contextID] = e
	m.abstractSyntaxUIDToEntry[abstractSyntaxUID] = e
}

func (m *contextManager) lookupByAbstractSyntaxUID(name string) (contextManagerEntry, error) {
	e, ok := m.abstractSyntaxUIDToEntry[name]
	if !ok {
		return contextManagerEntry{}, fmt.Errorf("contextmanager(%s): no negotiated context for abstract syntax %s", m.label, name)
	}
	return *e, nil
}

func (m *contextManager) lookupByContextID(contextID byte) (contextManagerEntry, error) {
	e, ok := m.contextIDToEntry[contextID]
	if !ok {
		return contextManagerEntry{}, fmt.Errorf("contextmanager(%s): unknown context ID %d", m.label, contextID)
	}
	return *e, nil
}
