package netdicom

// faultInjectorAction tells the state machine what to do after a fault
// injector observes an outgoing PDU.
type faultInjectorAction int

const (
	faultInjectorContinue faultInjectorAction = iota
	faultInjectorDisconnect
)

// FaultInjector lets tests observe and perturb the state machine's
// behavior, e.g. to simulate a peer that disconnects mid-handshake.
// Production code never sets stateMachine.faults.
type FaultInjector interface {
	// onSend is called just before a PDU is written to the wire. data is
	// the fully-encoded PDU, including its 6-byte header.
	onSend(data []byte) faultInjectorAction
	// onStateTransition is called after every state transition.
	onStateTransition(old stateType, event *stateEvent, action *stateAction, new stateType)
	String() string
}

// getUserFaultInjector returns the FaultInjector to attach to a
// service-user state machine. Production builds never inject faults.
func getUserFaultInjector() FaultInjector { return nil }

// getProviderFaultInjector returns the FaultInjector to attach to a
// service-provider state machine. Production builds never inject faults.
func getProviderFaultInjector() FaultInjector { return nil }
