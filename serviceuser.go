package netdicom

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dicomcore/netdicom/commandset"
	"github.com/dicomcore/netdicom/dimse"
	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"
)

type serviceUserStatus int

const (
	serviceUserInitial serviceUserStatus = iota
	serviceUserAssociationActive
	serviceUserClosed
)

// ServiceUser is the DIMSE client (SCU) side of an association: it drives
// one TCP connection through the Upper Layer state machine and exposes the
// DIMSE-C verbs as Go methods, P3.7 7.5. CEcho and CStore block until the
// response arrives; CFind, CGet and CMove stream their results on a channel.
//
// A ServiceUser is not safe for concurrent use: callers must wait for one
// C-* method to return before issuing the next.
type ServiceUser struct {
	params ServiceUserParams
	disp   *serviceDispatcher
	label  string

	upcallCh chan upcallEvent

	mu     sync.Mutex
	cond   *sync.Cond
	status serviceUserStatus
	cm     *contextManager
}

// NewServiceUser creates a ServiceUser. Callers must call Connect or
// SetConn before issuing any DIMSE request.
func NewServiceUser(params ServiceUserParams) *ServiceUser {
	if params.AcseTimeout == 0 {
		params.AcseTimeout = DefaultAcseTimeout
	}
	if params.DimseTimeout == 0 {
		params.DimseTimeout = DefaultDimseTimeout
	}
	if params.NetworkTimeout == 0 {
		params.NetworkTimeout = DefaultNetworkTimeout
	}
	mu := sync.Mutex{}
	label := fmt.Sprintf("user(%s->%s)", params.CallingAETitle, params.CalledAETitle)
	su := &ServiceUser{
		params:   params,
		disp:     newServiceDispatcher(label),
		label:    label,
		upcallCh: make(chan upcallEvent, 128),
		status:   serviceUserInitial,
	}
	su.cond = sync.NewCond(&su.mu)
	go runStateMachineForServiceUser(params, su.upcallCh, su.disp.downcallCh, label)
	go su.runUpcallLoop()
	return su
}

func (su *ServiceUser) runUpcallLoop() {
	for event := range su.upcallCh {
		if event.eventType == upcallEventHandshakeCompleted {
			su.mu.Lock()
			su.status = serviceUserAssociationActive
			su.cm = event.cm
			su.cond.Broadcast()
			su.mu.Unlock()
			continue
		}
		su.disp.handleEvent(event)
	}
	dicomlog.Vprintf(1, "dicom.ServiceUser(%s): upcall loop finished", su.label)
	su.mu.Lock()
	su.status = serviceUserClosed
	su.cond.Broadcast()
	su.mu.Unlock()
}

// waitUntilReady blocks until the A-ASSOCIATE handshake completes or fails,
// bounded by AcseTimeout, P3.8 Annex D AE-2.
func (su *ServiceUser) waitUntilReady() error {
	done := make(chan struct{})
	go func() {
		su.mu.Lock()
		for su.status == serviceUserInitial {
			su.cond.Wait()
		}
		su.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(su.params.AcseTimeout):
		return fmt.Errorf("dicom.ServiceUser(%s): A-ASSOCIATE timed out after %v", su.label, su.params.AcseTimeout)
	}
	su.mu.Lock()
	defer su.mu.Unlock()
	if su.status != serviceUserAssociationActive {
		return fmt.Errorf("dicom.ServiceUser(%s): association failed", su.label)
	}
	return nil
}

// recvWithTimeout waits for the next upcallEvent on ch, bounded by
// DimseTimeout, P3.7 Annex mandates a DIMSE timeout per outstanding
// operation.
func (su *ServiceUser) recvWithTimeout(ch chan upcallEvent) (upcallEvent, error) {
	select {
	case event, ok := <-ch:
		if !ok {
			return upcallEvent{}, fmt.Errorf("dicom.ServiceUser(%s): connection closed awaiting DIMSE response", su.label)
		}
		return event, nil
	case <-time.After(su.params.DimseTimeout):
		return upcallEvent{}, fmt.Errorf("dicom.ServiceUser(%s): DIMSE response timed out after %v", su.label, su.params.DimseTimeout)
	}
}

// Connect dials serverAddr and starts the A-ASSOCIATE handshake.
func (su *ServiceUser) Connect(serverAddr string) {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		su.disp.downcallCh <- stateEvent{event: evt17, err: err}
		return
	}
	su.disp.downcallCh <- stateEvent{event: evt02, conn: conn}
}

// SetConn starts the handshake over an already-established connection.
func (su *ServiceUser) SetConn(conn net.Conn) {
	su.disp.downcallCh <- stateEvent{event: evt02, conn: conn}
}

// CEcho issues a C-ECHO-RQ and waits for the C-ECHO-RSP, P3.7 9.1.5.
func (su *ServiceUser) CEcho() error {
	if err := su.waitUntilReady(); err != nil {
		return err
	}
	context, err := su.cm.lookupByAbstractSyntaxUID(uidinfo.VerificationSOPClass)
	if err != nil {
		return err
	}
	cs, _ := su.disp.findOrCreateCommand(dimse.NewMessageID(), su.cm, context)
	defer su.disp.deleteCommand(cs)
	cs.sendMessage(&dimse.CEchoRq{
		MessageID:          cs.messageID,
		CommandDataSetType: dimse.CommandDataSetTypeNull,
	}, nil)
	event, err := su.recvWithTimeout(cs.upcallCh)
	if err != nil {
		return err
	}
	resp, ok := event.command.(*dimse.CEchoRsp)
	if !ok {
		return fmt.Errorf("dicom.ServiceUser(%s): unexpected response to C-ECHO: %v", su.label, event.command)
	}
	if resp.Status.Status != dimse.StatusSuccess {
		return fmt.Errorf("dicom.ServiceUser(%s): C-ECHO failed: %v", su.label, resp.Status)
	}
	return nil
}

// CStore transmits ds to the peer via C-STORE, P3.7 9.1.1. sopClassUID and
// sopInstanceUID are the dataset's own (0008,0016)/(0008,0018) values.
func (su *ServiceUser) CStore(sopClassUID, sopInstanceUID string, ds *dicom.Dataset) error {
	if err := su.waitUntilReady(); err != nil {
		return err
	}
	context, err := su.cm.lookupByAbstractSyntaxUID(sopClassUID)
	if err != nil {
		return err
	}
	cs, _ := su.disp.findOrCreateCommand(dimse.NewMessageID(), su.cm, context)
	defer su.disp.deleteCommand(cs)
	data, err := encodeDatasetForContext(ds, context)
	if err != nil {
		return err
	}
	cs.sendMessage(&dimse.CStoreRq{
		AffectedSOPClassUID:    sopClassUID,
		MessageID:              cs.messageID,
		Priority:               commandset.PriorityMedium,
		CommandDataSetType:     dimse.CommandDataSetTypeNonNull,
		AffectedSOPInstanceUID: sopInstanceUID,
	}, data)
	event, err := su.recvWithTimeout(cs.upcallCh)
	if err != nil {
		return err
	}
	resp, ok := event.command.(*dimse.CStoreRsp)
	if !ok {
		return fmt.Errorf("dicom.ServiceUser(%s): unexpected response to C-STORE: %v", su.label, event.command)
	}
	if resp.Status.Status != dimse.StatusSuccess {
		return fmt.Errorf("dicom.ServiceUser(%s): C-STORE failed: %v", su.label, resp.Status)
	}
	return nil
}

// CFindResult is one item streamed back by CFind: either a matched dataset
// or a terminal error.
type CFindResult struct {
	Err      error
	Elements []*dicom.Element
}

// CFind issues a C-FIND-RQ against sopClassUID with the given query
// filter, streaming each pending match until the final (non-pending)
// status arrives, P3.7 9.1.2.
func (su *ServiceUser) CFind(sopClassUID string, filter []*dicom.Element) chan CFindResult {
	ch := make(chan CFindResult, 128)
	if err := su.waitUntilReady(); err != nil {
		ch <- CFindResult{Err: err}
		close(ch)
		return ch
	}
	context, err := su.cm.lookupByAbstractSyntaxUID(sopClassUID)
	if err != nil {
		ch <- CFindResult{Err: err}
		close(ch)
		return ch
	}
	payload, err := encodeElementsForContext(filter, context)
	if err != nil {
		ch <- CFindResult{Err: err}
		close(ch)
		return ch
	}
	cs, _ := su.disp.findOrCreateCommand(dimse.NewMessageID(), su.cm, context)
	go func() {
		defer close(ch)
		defer su.disp.deleteCommand(cs)
		cs.sendMessage(&dimse.CFindRq{
			AffectedSOPClassUID: sopClassUID,
			MessageID:           cs.messageID,
			Priority:            commandset.PriorityMedium,
			CommandDataSetType:  dimse.CommandDataSetTypeNonNull,
		}, payload)
		for {
			event, err := su.recvWithTimeout(cs.upcallCh)
			if err != nil {
				ch <- CFindResult{Err: err}
				return
			}
			resp, ok := event.command.(*dimse.CFindRsp)
			if !ok {
				ch <- CFindResult{Err: fmt.Errorf("dicom.ServiceUser(%s): unexpected response to C-FIND: %v", su.label, event.command)}
				return
			}
			if len(event.data) > 0 {
				elems, err := decodeDatasetForContext(event.data, context)
				if err != nil {
					ch <- CFindResult{Err: err}
				} else {
					ch <- CFindResult{Elements: elems}
				}
			}
			if resp.Status.Status != dimse.StatusPending {
				if resp.Status.Status != dimse.StatusSuccess {
					ch <- CFindResult{Err: fmt.Errorf("dicom.ServiceUser(%s): C-FIND failed: %v", su.label, resp.Status)}
				}
				return
			}
		}
	}()
	return ch
}

// CGetResult is one item streamed back by CGet: a retrieved dataset pushed
// by the peer as a nested C-STORE sub-operation, progress counts, or a
// terminal error.
type CGetResult struct {
	Err                            error
	Elements                       []*dicom.Element
	NumberOfRemainingSuboperations uint16
	NumberOfCompletedSuboperations uint16
	NumberOfFailedSuboperations    uint16
}

// CGet issues a C-GET-RQ against sopClassUID with the given identifier,
// receiving each matching instance as a nested C-STORE-RQ pushed by the
// peer over the same association, P3.7 C.4.3.1.4. Each sub-operation is
// acknowledged with a C-STORE-RSP of Success.
func (su *ServiceUser) CGet(sopClassUID string, identifier []*dicom.Element) chan CGetResult {
	ch := make(chan CGetResult, 128)
	if err := su.waitUntilReady(); err != nil {
		ch <- CGetResult{Err: err}
		close(ch)
		return ch
	}
	context, err := su.cm.lookupByAbstractSyntaxUID(sopClassUID)
	if err != nil {
		ch <- CGetResult{Err: err}
		close(ch)
		return ch
	}
	payload, err := encodeElementsForContext(identifier, context)
	if err != nil {
		ch <- CGetResult{Err: err}
		close(ch)
		return ch
	}
	cs, _ := su.disp.findOrCreateCommand(dimse.NewMessageID(), su.cm, context)
	su.disp.registerCallback(dimse.CommandFieldCStoreRq, func(msg dimse.Message, data []byte, storeCS *serviceCommandState) {
		rq, ok := msg.(*dimse.CStoreRq)
		if !ok {
			return
		}
		elems, err := decodeDatasetForContext(data, storeCS.context)
		if err != nil {
			ch <- CGetResult{Err: err}
		} else {
			ch <- CGetResult{Elements: elems}
		}
		storeCS.sendMessage(&dimse.CStoreRsp{
			AffectedSOPClassUID:       rq.AffectedSOPClassUID,
			MessageIDBeingRespondedTo: rq.MessageID,
			CommandDataSetType:        dimse.CommandDataSetTypeNull,
			AffectedSOPInstanceUID:    rq.AffectedSOPInstanceUID,
			Status:                    dimse.Success,
		}, nil)
	})
	go func() {
		defer close(ch)
		defer su.disp.deleteCommand(cs)
		defer su.disp.unregisterCallback(dimse.CommandFieldCStoreRq)
		cs.sendMessage(&dimse.CGetRq{
			AffectedSOPClassUID: sopClassUID,
			MessageID:           cs.messageID,
			Priority:            commandset.PriorityMedium,
			CommandDataSetType:  dimse.CommandDataSetTypeNonNull,
		}, payload)
		for {
			event, err := su.recvWithTimeout(cs.upcallCh)
			if err != nil {
				ch <- CGetResult{Err: err}
				return
			}
			resp, ok := event.command.(*dimse.CGetRsp)
			if !ok {
				ch <- CGetResult{Err: fmt.Errorf("dicom.ServiceUser(%s): unexpected response to C-GET: %v", su.label, event.command)}
				return
			}
			if resp.Status.Status != dimse.StatusPending {
				if resp.Status.Status != dimse.StatusSuccess {
					ch <- CGetResult{Err: fmt.Errorf("dicom.ServiceUser(%s): C-GET failed: %v", su.label, resp.Status)}
				}
				return
			}
			ch <- CGetResult{
				NumberOfRemainingSuboperations: resp.NumberOfRemainingSuboperations,
				NumberOfCompletedSuboperations: resp.NumberOfCompletedSuboperations,
				NumberOfFailedSuboperations:    resp.NumberOfFailedSuboperations,
			}
		}
	}()
	return ch
}

// CMoveResult is one item streamed back by CMove: retrieve sub-operation
// progress counts or a terminal error. The matched instances themselves
// arrive at the Move Destination AE, not on this association, P3.7
// C.4.2.1.4.
type CMoveResult struct {
	Err                            error
	NumberOfRemainingSuboperations uint16
	NumberOfCompletedSuboperations uint16
	NumberOfFailedSuboperations    uint16
}

// CMove issues a C-MOVE-RQ against sopClassUID asking the peer to retrieve
// the matching instances to moveDestination, P3.7 9.1.4.
func (su *ServiceUser) CMove(sopClassUID, moveDestination string, identifier []*dicom.Element) chan CMoveResult {
	ch := make(chan CMoveResult, 128)
	if err := su.waitUntilReady(); err != nil {
		ch <- CMoveResult{Err: err}
		close(ch)
		return ch
	}
	context, err := su.cm.lookupByAbstractSyntaxUID(sopClassUID)
	if err != nil {
		ch <- CMoveResult{Err: err}
		close(ch)
		return ch
	}
	payload, err := encodeElementsForContext(identifier, context)
	if err != nil {
		ch <- CMoveResult{Err: err}
		close(ch)
		return ch
	}
	cs, _ := su.disp.findOrCreateCommand(dimse.NewMessageID(), su.cm, context)
	go func() {
		defer close(ch)
		defer su.disp.deleteCommand(cs)
		cs.sendMessage(&dimse.CMoveRq{
			AffectedSOPClassUID: sopClassUID,
			MessageID:           cs.messageID,
			Priority:            commandset.PriorityMedium,
			MoveDestination:     moveDestination,
			CommandDataSetType:  dimse.CommandDataSetTypeNonNull,
		}, payload)
		for {
			event, err := su.recvWithTimeout(cs.upcallCh)
			if err != nil {
				ch <- CMoveResult{Err: err}
				return
			}
			resp, ok := event.command.(*dimse.CMoveRsp)
			if !ok {
				ch <- CMoveResult{Err: fmt.Errorf("dicom.ServiceUser(%s): unexpected response to C-MOVE: %v", su.label, event.command)}
				return
			}
			if resp.Status.Status != dimse.StatusPending {
				if resp.Status.Status != dimse.StatusSuccess {
					ch <- CMoveResult{Err: fmt.Errorf("dicom.ServiceUser(%s): C-MOVE failed: %v", su.label, resp.Status)}
				} else {
					ch <- CMoveResult{
						NumberOfCompletedSuboperations: resp.NumberOfCompletedSuboperations,
						NumberOfFailedSuboperations:    resp.NumberOfFailedSuboperations,
					}
				}
				return
			}
			ch <- CMoveResult{
				NumberOfRemainingSuboperations: resp.NumberOfRemainingSuboperations,
				NumberOfCompletedSuboperations: resp.NumberOfCompletedSuboperations,
				NumberOfFailedSuboperations:    resp.NumberOfFailedSuboperations,
			}
		}
	}()
	return ch
}

// CCancel sends a C-CANCEL-RQ to abort the pending C-FIND/C-GET/C-MOVE
// identified by messageID, P3.7 9.3.2.3.
func (su *ServiceUser) CCancel(messageID dimse.MessageID) error {
	if err := su.waitUntilReady(); err != nil {
		return err
	}
	context, err := su.cm.lookupByAbstractSyntaxUID(su.params.SOPClasses[0])
	if err != nil {
		return err
	}
	cs, _ := su.disp.findOrCreateCommand(dimse.NewMessageID(), su.cm, context)
	defer su.disp.deleteCommand(cs)
	cs.sendMessage(&dimse.CCancelRq{
		MessageIDBeingRespondedTo: messageID,
	}, nil)
	return nil
}

// Release shuts down the association in an orderly fashion, P3.7 7.6.
func (su *ServiceUser) Release() {
	su.waitUntilReady()
	su.disp.downcallCh <- stateEvent{event: evt11}
	su.mu.Lock()
	su.status = serviceUserClosed
	su.cond.Broadcast()
	su.mu.Unlock()
}
