package dimse

import "sync/atomic"

var messageIDSeq uint32

// NewMessageID allocates a message ID unique within this process, for use
// in the MessageID field of a DIMSE request, P3.7 9.3.
func NewMessageID() MessageID {
	return MessageID(atomic.AddUint32(&messageIDSeq, 1))
}
