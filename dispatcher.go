package netdicom

import (
	"sync"

	"github.com/dicomcore/netdicom/dimse"
	"github.com/grailbio/go-dicom/dicomlog"
)

// serviceCommandState tracks one in-flight DIMSE exchange (a C-ECHO,
// C-STORE, C-FIND, etc. request and its eventual response(s)).
type serviceCommandState struct {
	messageID dimse.MessageID
	cm        *contextManager
	context   contextManagerEntry

	// upcallCh streams the responses (and, for C-GET, any nested C-STORE
	// requests from the peer) addressed to this command. Closed by the
	// dispatcher when the association goes down.
	upcallCh chan upcallEvent

	downcallCh chan stateEvent
}

// sendMessage encodes and sends one DIMSE command (+ optional dataset
// payload) over the association this command state belongs to.
func (cs *serviceCommandState) sendMessage(command dimse.Message, data []byte) {
	cs.downcallCh <- stateEvent{
		event: evt09,
		dimsePayload: &stateEventDIMSEPayload{
			abstractSyntaxName: cs.context.abstractSyntaxUID,
			command:            command,
			data:               data,
		},
	}
}

// dimseCallback handles an unsolicited DIMSE request arriving on an
// association for which no local command state exists, e.g. a C-STORE-RQ
// pushed by the peer during C-GET.
type dimseCallback func(msg dimse.Message, data []byte, cs *serviceCommandState)

// serviceDispatcher fans the upcallEvents of one association out to the
// serviceCommandState waiting on each MessageID, and lets callers register
// callbacks for DIMSE command fields with no corresponding local command
// state.
type serviceDispatcher struct {
	downcallCh chan stateEvent

	mu        sync.Mutex
	commands  map[dimse.MessageID]*serviceCommandState
	callbacks map[uint16]dimseCallback
	label     string
}

func newServiceDispatcher(label string) *serviceDispatcher {
	return &serviceDispatcher{
		downcallCh: make(chan stateEvent, 128),
		commands:   make(map[dimse.MessageID]*serviceCommandState),
		callbacks:  make(map[uint16]dimseCallback),
		label:      label,
	}
}

// findOrCreateCommand returns the serviceCommandState for messageID,
// creating one if none exists yet. The second return value reports
// whether an existing state was found.
func (d *serviceDispatcher) findOrCreateCommand(messageID dimse.MessageID, cm *contextManager, context contextManagerEntry) (*serviceCommandState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cs, ok := d.commands[messageID]; ok {
		return cs, true
	}
	cs := &serviceCommandState{
		messageID:  messageID,
		cm:         cm,
		context:    context,
		upcallCh:   make(chan upcallEvent, 128),
		downcallCh: d.downcallCh,
	}
	d.commands[messageID] = cs
	return cs, false
}

func (d *serviceDispatcher) deleteCommand(cs *serviceCommandState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.commands, cs.messageID)
	close(cs.upcallCh)
}

func (d *serviceDispatcher) registerCallback(commandField uint16, cb dimseCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks[commandField] = cb
}

func (d *serviceDispatcher) unregisterCallback(commandField uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.callbacks, commandField)
}

// handleEvent routes one upcallEventData event to the command state whose
// MessageID/MessageIDBeingRespondedTo matches, falling back to a
// registered callback for unsolicited requests.
func (d *serviceDispatcher) handleEvent(event upcallEvent) {
	messageID := event.command.GetMessageID()
	d.mu.Lock()
	cs, ok := d.commands[messageID]
	cb, hasCallback := d.callbacks[event.command.CommandField()]
	d.mu.Unlock()
	if ok {
		cs.upcallCh <- event
		return
	}
	if hasCallback {
		tmp := &serviceCommandState{
			messageID:  messageID,
			cm:         event.cm,
			downcallCh: d.downcallCh,
		}
		if entry, err := event.cm.lookupByContextID(event.contextID); err == nil {
			tmp.context = entry
		}
		cb(event.command, event.data, tmp)
		return
	}
	dicomlog.Vprintf(0, "dicom.dispatcher(%s): no command or callback for message %v", d.label, event.command)
}

func (d *serviceDispatcher) close() {
	close(d.downcallCh)
}
