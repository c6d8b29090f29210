package netdicom

import (
	"testing"

	"github.com/dicomcore/netdicom/pdu/pdu_item"
	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextManagerNegotiatesMatchingSyntax(t *testing.T) {
	sopClasses := []string{uidinfo.VerificationSOPClass, uidinfo.CTImageStorage}
	transferSyntaxes := []string{uidinfo.ImplicitVRLittleEndian, uidinfo.ExplicitVRLittleEndian}

	requestor := newContextManager("requestor", nil)
	acceptor := newContextManager("acceptor", sopClasses)

	requestItems := requestor.generateAssociateRequest(sopClasses, transferSyntaxes)

	responseItems, err := acceptor.onAssociateRequest(requestItems)
	require.NoError(t, err)

	require.NoError(t, requestor.onAssociateResponse(responseItems))

	for _, sop := range sopClasses {
		rEntry, err := requestor.lookupByAbstractSyntaxUID(sop)
		require.NoError(t, err)
		aEntry, err := acceptor.lookupByContextID(rEntry.contextID)
		require.NoError(t, err)
		assert.Equal(t, sop, aEntry.abstractSyntaxUID)
		assert.Equal(t, uidinfo.ImplicitVRLittleEndian, rEntry.transferSyntaxUID)
		assert.Equal(t, rEntry.transferSyntaxUID, aEntry.transferSyntaxUID)
	}
}

func TestContextManagerUnknownAbstractSyntaxUID(t *testing.T) {
	m := newContextManager("test", nil)
	_, err := m.lookupByAbstractSyntaxUID("1.2.3.4.5.not.negotiated")
	assert.Error(t, err)
}

func TestContextManagerUnknownContextID(t *testing.T) {
	m := newContextManager("test", nil)
	_, err := m.lookupByContextID(99)
	assert.Error(t, err)
}

func TestContextManagerRejectsUnsupportedAbstractSyntax(t *testing.T) {
	sopClasses := []string{"1.2.3.4.5.6"}
	transferSyntaxes := []string{uidinfo.ImplicitVRLittleEndian}

	requestor := newContextManager("requestor", nil)
	acceptor := newContextManager("acceptor", []string{uidinfo.VerificationSOPClass})

	requestItems := requestor.generateAssociateRequest(sopClasses, transferSyntaxes)
	responseItems, err := acceptor.onAssociateRequest(requestItems)
	require.NoError(t, err)

	var found bool
	for _, item := range responseItems {
		pc, ok := item.(*pdu_item.PresentationContextItem)
		if !ok {
			continue
		}
		found = true
		assert.Equal(t, byte(pdu_item.PresentationContextProviderRejectionAbstractSyntaxNotSup), pc.Result)
	}
	require.True(t, found, "expected a presentation context response item")
	_, err = acceptor.lookupByAbstractSyntaxUID("1.2.3.4.5.6")
	assert.Error(t, err)
}
