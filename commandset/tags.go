// Package commandset names the group-0000 command-set tags used by every
// DIMSE message, P3.7 Annex E.1.
package commandset

import "github.com/suyashkumar/dicom/pkg/tag"

var (
	CommandGroupLength                   = tag.Tag{Group: 0x0000, Element: 0x0000}
	AffectedSOPClassUID                  = tag.Tag{Group: 0x0000, Element: 0x0002}
	RequestedSOPClassUID                 = tag.Tag{Group: 0x0000, Element: 0x0003}
	CommandField                         = tag.Tag{Group: 0x0000, Element: 0x0100}
	MessageID                            = tag.Tag{Group: 0x0000, Element: 0x0110}
	MessageIDBeingRespondedTo            = tag.Tag{Group: 0x0000, Element: 0x0120}
	MoveDestination                      = tag.Tag{Group: 0x0000, Element: 0x0600}
	Priority                             = tag.Tag{Group: 0x0000, Element: 0x0700}
	CommandDataSetType                   = tag.Tag{Group: 0x0000, Element: 0x0800}
	Status                               = tag.Tag{Group: 0x0000, Element: 0x0900}
	OffendingElement                     = tag.Tag{Group: 0x0000, Element: 0x0901}
	ErrorComment                         = tag.Tag{Group: 0x0000, Element: 0x0902}
	ErrorID                              = tag.Tag{Group: 0x0000, Element: 0x0903}
	AffectedSOPInstanceUID               = tag.Tag{Group: 0x0000, Element: 0x1000}
	RequestedSOPInstanceUID              = tag.Tag{Group: 0x0000, Element: 0x1001}
	EventTypeID                          = tag.Tag{Group: 0x0000, Element: 0x1002}
	AttributeIdentifierList              = tag.Tag{Group: 0x0000, Element: 0x1005}
	ActionTypeID                         = tag.Tag{Group: 0x0000, Element: 0x1008}
	NumberOfRemainingSuboperations       = tag.Tag{Group: 0x0000, Element: 0x1020}
	NumberOfCompletedSuboperations       = tag.Tag{Group: 0x0000, Element: 0x1021}
	NumberOfFailedSuboperations          = tag.Tag{Group: 0x0000, Element: 0x1022}
	NumberOfWarningSuboperations         = tag.Tag{Group: 0x0000, Element: 0x1023}
	MoveOriginatorApplicationEntityTitle = tag.Tag{Group: 0x0000, Element: 0x1030}
	MoveOriginatorMessageID              = tag.Tag{Group: 0x0000, Element: 0x1031}
)

// Priority values, P3.7 E.1.2.3.
const (
	PriorityLow    uint16 = 0x0002
	PriorityMedium uint16 = 0x0000
	PriorityHigh   uint16 = 0x0001
)
