package pdu_test

import (
	"bytes"
	"testing"

	"github.com/dicomcore/netdicom/pdu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v pdu.PDU) pdu.PDU {
	t.Helper()
	encoded, err := pdu.EncodePDU(v)
	require.NoError(t, err)

	got, err := pdu.ReadPDU(bytes.NewReader(encoded), 1<<20)
	require.NoError(t, err)
	return got
}

func TestAAssociateRQRoundTrip(t *testing.T) {
	v := &pdu.AAssociateRQ{
		ProtocolVersion: pdu.CurrentProtocolVersion,
		CalledAETitle:   "REMOTESCP",
		CallingAETitle:  "MYSCU",
	}
	got, ok := roundTrip(t, v).(*pdu.AAssociateRQ)
	require.True(t, ok)
	assert.Equal(t, v.ProtocolVersion, got.ProtocolVersion)
	assert.Equal(t, "REMOTESCP", trim(got.CalledAETitle))
	assert.Equal(t, "MYSCU", trim(got.CallingAETitle))
}

func TestAAssociateRjRoundTrip(t *testing.T) {
	v := &pdu.AAssociateRj{
		Result: pdu.ResultRejectedPermanent,
		Source: pdu.SourceULServiceUser,
		Reason: pdu.ReasonCalledAETitleNotRecognized,
	}
	got, ok := roundTrip(t, v).(*pdu.AAssociateRj)
	require.True(t, ok)
	assert.Equal(t, v.Result, got.Result)
	assert.Equal(t, v.Source, got.Source)
	assert.Equal(t, v.Reason, got.Reason)
}

func TestAAbortRoundTrip(t *testing.T) {
	v := &pdu.AAbort{Source: 2, Reason: pdu.AbortReasonUnexpectedPDU}
	got, ok := roundTrip(t, v).(*pdu.AAbort)
	require.True(t, ok)
	assert.Equal(t, v.Source, got.Source)
	assert.Equal(t, v.Reason, got.Reason)
}

func TestAReleaseRqRpRoundTrip(t *testing.T) {
	_, ok := roundTrip(t, &pdu.AReleaseRq{}).(*pdu.AReleaseRq)
	assert.True(t, ok)
	_, ok = roundTrip(t, &pdu.AReleaseRp{}).(*pdu.AReleaseRp)
	assert.True(t, ok)
}

func TestPDataTfRoundTrip(t *testing.T) {
	v := &pdu.PDataTf{
		Items: []pdu.PresentationDataValueItem{
			{ContextID: 1, Command: true, Last: true, Value: []byte{0x01, 0x02, 0x03}},
		},
	}
	got, ok := roundTrip(t, v).(*pdu.PDataTf)
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, v.Items[0].ContextID, got.Items[0].ContextID)
	assert.Equal(t, v.Items[0].Command, got.Items[0].Command)
	assert.Equal(t, v.Items[0].Last, got.Items[0].Last)
	assert.Equal(t, v.Items[0].Value, got.Items[0].Value)
}

func trim(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
