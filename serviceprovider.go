package netdicom

import (
	"fmt"
	"net"
	"time"

	"github.com/dicomcore/netdicom/commandset"
	"github.com/dicomcore/netdicom/dimse"
	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"
)

// CStoreCallback handles one incoming C-STORE-RQ. It should persist (or
// otherwise process) the dataset and return the status to report back to
// the SCU.
type CStoreCallback func(transferSyntaxUID, sopClassUID, sopInstanceUID string, data []byte) dimse.Status

// CFindCallback handles one incoming C-FIND-RQ, returning the matching
// datasets to stream back as pending responses.
type CFindCallback func(sopClassUID string, filter []*dicom.Element) ([][]*dicom.Element, dimse.Status)

// CGetCallback handles one incoming C-GET-RQ, returning the matching
// datasets to push back as nested C-STORE sub-operations over the same
// association, P3.7 C.4.3.
type CGetCallback func(sopClassUID string, filter []*dicom.Element) ([][]*dicom.Element, dimse.Status)

// CMoveCallback handles one incoming C-MOVE-RQ. It resolves moveDestination
// (the Move Destination AE title) to a "host:port" address to retrieve to,
// and returns the matching datasets to push there via a new association,
// mirroring the on_c_move callback of pynetdicom3's movescp. An empty
// destAddr means the Move Destination AE is unknown.
type CMoveCallback func(sopClassUID, moveDestination string, filter []*dicom.Element) (destAddr string, matches [][]*dicom.Element, status dimse.Status)

// ServiceProviderParams configures a ServiceProvider.
type ServiceProviderParams struct {
	AETitle string

	// SupportedSOPClasses lists the abstract syntaxes this provider will
	// accept in presentation-context negotiation, P3.8 9.3.2.2. A proposed
	// abstract syntax outside this set is rejected with result=3
	// (abstract-syntax-not-supported). Empty means accept any abstract
	// syntax the requestor proposes.
	SupportedSOPClasses []string

	// AcseTimeout bounds how long to wait for an ACSE response (A-ASSOCIATE,
	// A-RELEASE) once requested, P3.8 Annex D AE-2/AE-3. Zero uses
	// DefaultAcseTimeout.
	AcseTimeout time.Duration
	// DimseTimeout bounds how long to wait for a DIMSE-C/N response once a
	// request has been sent. Zero uses DefaultDimseTimeout.
	DimseTimeout time.Duration
	// NetworkTimeout bounds how long an idle, associated connection may go
	// without any PDU before it is aborted. Zero uses DefaultNetworkTimeout.
	NetworkTimeout time.Duration

	OnCStore CStoreCallback
	OnCFind  CFindCallback
	OnCGet   CGetCallback
	OnCMove  CMoveCallback
	OnCEcho  func() dimse.Status
}

// ServiceProvider is the DIMSE server (SCP) side: it accepts incoming
// associations and dispatches DIMSE-C requests to the registered
// callbacks, P3.7 7.5.
type ServiceProvider struct {
	params   ServiceProviderParams
	listener net.Listener
	label    string
	err      error
}

// NewServiceProvider creates a ServiceProvider bound to no listener yet;
// call Run to start serving. Invalid params (e.g. a malformed AETitle) are
// reported by Run, not here, so construction never fails.
func NewServiceProvider(params ServiceProviderParams) *ServiceProvider {
	if params.AcseTimeout == 0 {
		params.AcseTimeout = DefaultAcseTimeout
	}
	if params.DimseTimeout == 0 {
		params.DimseTimeout = DefaultDimseTimeout
	}
	if params.NetworkTimeout == 0 {
		params.NetworkTimeout = DefaultNetworkTimeout
	}
	sp := &ServiceProvider{params: params, label: fmt.Sprintf("provider(%s)", params.AETitle)}
	sp.err = validateAETitle(params.AETitle)
	return sp
}

// Run listens on addr and serves associations until the listener is
// closed or accept fails terminally.
func (sp *ServiceProvider) Run(addr string) error {
	if sp.err != nil {
		return fmt.Errorf("netdicom: invalid ServiceProviderParams: %w", sp.err)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	sp.listener = listener
	dicomlog.Vprintf(1, "dicom.ServiceProvider(%s): listening on %s", sp.label, addr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go sp.handleConnection(conn)
	}
}

// Shutdown stops accepting new connections.
func (sp *ServiceProvider) Shutdown() {
	if sp.listener != nil {
		sp.listener.Close()
	}
}

func (sp *ServiceProvider) handleConnection(conn net.Conn) {
	label := fmt.Sprintf("%s<-%s", sp.label, conn.RemoteAddr())
	upcallCh := make(chan upcallEvent, 128)
	disp := newServiceDispatcher(label)
	go runStateMachineForServiceProvider(conn, upcallCh, disp.downcallCh, label, sp.params.SupportedSOPClasses)

	var cm *contextManager
	for {
		select {
		case event, ok := <-upcallCh:
			if !ok {
				dicomlog.Vprintf(1, "dicom.ServiceProvider(%s): connection closed", label)
				return
			}
			if event.eventType == upcallEventHandshakeCompleted {
				cm = event.cm
				continue
			}
			sp.handleDIMSERequest(disp, cm, event)
		case <-time.After(sp.params.NetworkTimeout):
			dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): network idle timeout after %v, closing connection", label, sp.params.NetworkTimeout)
			conn.Close()
			return
		}
	}
}

func (sp *ServiceProvider) handleDIMSERequest(disp *serviceDispatcher, cm *contextManager, event upcallEvent) {
	context, err := cm.lookupByContextID(event.contextID)
	if err != nil {
		dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): %v", sp.label, err)
		return
	}
	send := func(command dimse.Message, data []byte) {
		disp.downcallCh <- stateEvent{
			event: evt09,
			dimsePayload: &stateEventDIMSEPayload{
				abstractSyntaxName: context.abstractSyntaxUID,
				command:            command,
				data:               data,
			},
		}
	}
	switch c := event.command.(type) {
	case *dimse.CEchoRq:
		status := dimse.Success
		if sp.params.OnCEcho != nil {
			status = sp.params.OnCEcho()
		}
		send(&dimse.CEchoRsp{
			MessageIDBeingRespondedTo: c.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    status,
		}, nil)
	case *dimse.CStoreRq:
		status := dimse.Success
		if sp.params.OnCStore != nil {
			status = sp.params.OnCStore(context.transferSyntaxUID, c.AffectedSOPClassUID, c.AffectedSOPInstanceUID, event.data)
		}
		send(&dimse.CStoreRsp{
			AffectedSOPClassUID:    c.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: c.MessageID,
			CommandDataSetType:     dimse.CommandDataSetTypeNull,
			AffectedSOPInstanceUID: c.AffectedSOPInstanceUID,
			Status:                 status,
		}, nil)
	case *dimse.CFindRq:
		sp.handleCFind(context, send, c, event.data)
	case *dimse.CGetRq:
		sp.handleCGet(disp, cm, context, send, c, event.data)
	case *dimse.CMoveRq:
		sp.handleCMove(context, send, c, event.data)
	case *dimse.CCancelRq:
		dicomlog.Vprintf(1, "dicom.ServiceProvider(%s): cancel requested for message %d", sp.label, c.MessageIDBeingRespondedTo)
	default:
		dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): unhandled DIMSE command %v", sp.label, event.command)
	}
}

func (sp *ServiceProvider) handleCFind(context contextManagerEntry, send func(dimse.Message, []byte), rq *dimse.CFindRq, data []byte) {
	if sp.params.OnCFind == nil {
		send(&dimse.CFindRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Success,
		}, nil)
		return
	}
	filter, err := decodeDatasetForContext(data, context)
	if err != nil {
		send(&dimse.CFindRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Status{Status: dimse.StatusCode(0xa900)},
		}, nil)
		return
	}
	matches, status := sp.params.OnCFind(rq.AffectedSOPClassUID, filter)
	for _, elems := range matches {
		data, err := encodeElementsForContext(elems, context)
		if err != nil {
			dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): failed to encode C-FIND match: %v", sp.label, err)
			continue
		}
		send(&dimse.CFindRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNonNull,
			Status:                    dimse.Status{Status: dimse.StatusPending},
		}, data)
	}
	send(&dimse.CFindRsp{
		AffectedSOPClassUID:       rq.AffectedSOPClassUID,
		MessageIDBeingRespondedTo: rq.MessageID,
		CommandDataSetType:        dimse.CommandDataSetTypeNull,
		Status:                    status,
	}, nil)
}

// handleCGet answers a C-GET-RQ by invoking OnCGet and pushing each
// matching dataset back to the requestor as a nested C-STORE sub-operation
// over the same association, P3.7 C.4.3.1.4.
func (sp *ServiceProvider) handleCGet(disp *serviceDispatcher, cm *contextManager, context contextManagerEntry, send func(dimse.Message, []byte), rq *dimse.CGetRq, data []byte) {
	if sp.params.OnCGet == nil {
		send(&dimse.CGetRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Success,
		}, nil)
		return
	}
	filter, err := decodeDatasetForContext(data, context)
	if err != nil {
		send(&dimse.CGetRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Status{Status: dimse.StatusCode(0xa900)},
		}, nil)
		return
	}
	matches, status := sp.params.OnCGet(rq.AffectedSOPClassUID, filter)
	var completed, failed uint16
	remaining := uint16(len(matches))
	for _, elems := range matches {
		remaining--
		if sp.storeSubOperation(disp, cm, elems) {
			completed++
		} else {
			failed++
		}
		send(&dimse.CGetRsp{
			AffectedSOPClassUID:            rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo:      rq.MessageID,
			CommandDataSetType:             dimse.CommandDataSetTypeNull,
			NumberOfRemainingSuboperations: remaining,
			NumberOfCompletedSuboperations: completed,
			NumberOfFailedSuboperations:    failed,
			Status:                         dimse.Status{Status: dimse.StatusPending},
		}, nil)
	}
	send(&dimse.CGetRsp{
		AffectedSOPClassUID:            rq.AffectedSOPClassUID,
		MessageIDBeingRespondedTo:      rq.MessageID,
		CommandDataSetType:             dimse.CommandDataSetTypeNull,
		NumberOfCompletedSuboperations: completed,
		NumberOfFailedSuboperations:    failed,
		Status:                         status,
	}, nil)
}

// storeSubOperation pushes one C-GET match to the requestor as a C-STORE-RQ
// over the context negotiated for its own SOP class, P3.7 C.4.3.1.4. It
// reports whether the sub-operation completed successfully.
func (sp *ServiceProvider) storeSubOperation(disp *serviceDispatcher, cm *contextManager, elems []*dicom.Element) bool {
	sopClassUID, sopInstanceUID := sopIdentifiers(elems)
	storeContext, err := cm.lookupByAbstractSyntaxUID(sopClassUID)
	if err != nil {
		dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): C-GET sub-operation: %v", sp.label, err)
		return false
	}
	payload, err := encodeElementsForContext(elems, storeContext)
	if err != nil {
		dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): C-GET sub-operation: failed to encode dataset: %v", sp.label, err)
		return false
	}
	cs, _ := disp.findOrCreateCommand(dimse.NewMessageID(), cm, storeContext)
	defer disp.deleteCommand(cs)
	cs.sendMessage(&dimse.CStoreRq{
		AffectedSOPClassUID:    sopClassUID,
		MessageID:              cs.messageID,
		Priority:               commandset.PriorityMedium,
		CommandDataSetType:     dimse.CommandDataSetTypeNonNull,
		AffectedSOPInstanceUID: sopInstanceUID,
	}, payload)
	var event upcallEvent
	select {
	case e, ok := <-cs.upcallCh:
		if !ok {
			return false
		}
		event = e
	case <-time.After(sp.params.DimseTimeout):
		dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): C-GET sub-operation: C-STORE response timed out after %v", sp.label, sp.params.DimseTimeout)
		return false
	}
	rsp, ok := event.command.(*dimse.CStoreRsp)
	return ok && rsp.Status.Status == dimse.StatusSuccess
}

// handleCMove answers a C-MOVE-RQ by invoking OnCMove to resolve the Move
// Destination AE and the matching datasets, then retrieves them to that
// destination over a fresh association, P3.7 C.4.2.1.4.
func (sp *ServiceProvider) handleCMove(context contextManagerEntry, send func(dimse.Message, []byte), rq *dimse.CMoveRq, data []byte) {
	if sp.params.OnCMove == nil {
		send(&dimse.CMoveRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Success,
		}, nil)
		return
	}
	filter, err := decodeDatasetForContext(data, context)
	if err != nil {
		send(&dimse.CMoveRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Status{Status: dimse.StatusCode(0xa900)},
		}, nil)
		return
	}
	destAddr, matches, status := sp.params.OnCMove(rq.AffectedSOPClassUID, rq.MoveDestination, filter)
	if destAddr == "" {
		send(&dimse.CMoveRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			Status:                    dimse.Status{Status: dimse.StatusCode(0xa801)}, // Move destination unknown
		}, nil)
		return
	}

	sopClasses := uniqueSOPClasses(matches, rq.AffectedSOPClassUID)
	su := NewServiceUser(ServiceUserParams{
		CalledAETitle:    rq.MoveDestination,
		CallingAETitle:   sp.params.AETitle,
		SOPClasses:       sopClasses,
		TransferSyntaxes: uidinfo.StandardTransferSyntaxes,
		AcseTimeout:      sp.params.AcseTimeout,
		DimseTimeout:     sp.params.DimseTimeout,
		NetworkTimeout:   sp.params.NetworkTimeout,
	})
	su.Connect(destAddr)
	defer su.Release()

	var completed, failed uint16
	remaining := uint16(len(matches))
	for _, elems := range matches {
		remaining--
		sopClassUID, sopInstanceUID := sopIdentifiers(elems)
		if err := su.CStore(sopClassUID, sopInstanceUID, &dicom.Dataset{Elements: elems}); err != nil {
			dicomlog.Vprintf(0, "dicom.ServiceProvider(%s): C-MOVE sub-operation to %s failed: %v", sp.label, rq.MoveDestination, err)
			failed++
		} else {
			completed++
		}
		send(&dimse.CMoveRsp{
			AffectedSOPClassUID:            rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo:      rq.MessageID,
			CommandDataSetType:             dimse.CommandDataSetTypeNull,
			NumberOfRemainingSuboperations: remaining,
			NumberOfCompletedSuboperations: completed,
			NumberOfFailedSuboperations:    failed,
			Status:                         dimse.Status{Status: dimse.StatusPending},
		}, nil)
	}
	send(&dimse.CMoveRsp{
		AffectedSOPClassUID:            rq.AffectedSOPClassUID,
		MessageIDBeingRespondedTo:      rq.MessageID,
		CommandDataSetType:             dimse.CommandDataSetTypeNull,
		NumberOfCompletedSuboperations: completed,
		NumberOfFailedSuboperations:    failed,
		Status:                         status,
	}, nil)
}

// uniqueSOPClasses collects the distinct SOP Class UIDs among matches,
// falling back to fallback if none carry one, for use as the storage
// presentation contexts of a C-MOVE retrieve association.
func uniqueSOPClasses(matches [][]*dicom.Element, fallback string) []string {
	seen := map[string]bool{}
	var sopClasses []string
	for _, elems := range matches {
		sopClassUID, _ := sopIdentifiers(elems)
		if sopClassUID == "" || seen[sopClassUID] {
			continue
		}
		seen[sopClassUID] = true
		sopClasses = append(sopClasses, sopClassUID)
	}
	if len(sopClasses) == 0 {
		sopClasses = []string{fallback}
	}
	return sopClasses
}
