package dimse_test

import (
	"bytes"
	"testing"

	"github.com/dicomcore/netdicom/dimse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
)

func roundTrip(t *testing.T, v dimse.Message) dimse.Message {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, dimse.EncodeMessage(&buf, v))

	ds, err := dicom.Parse(&buf, int64(buf.Len()), nil, dicom.SkipMetadataReadOnNewParserInit())
	require.NoError(t, err)

	got, err := dimse.ReadMessage(&ds)
	require.NoError(t, err)
	return got
}

func TestCEchoRqRoundTrip(t *testing.T) {
	v := &dimse.CEchoRq{MessageID: 0x1234, CommandDataSetType: dimse.CommandDataSetTypeNull}
	got, ok := roundTrip(t, v).(*dimse.CEchoRq)
	require.True(t, ok)
	assert.Equal(t, v.MessageID, got.MessageID)
	assert.Equal(t, v.CommandDataSetType, got.CommandDataSetType)
}

func TestCEchoRspRoundTrip(t *testing.T) {
	v := &dimse.CEchoRsp{
		MessageIDBeingRespondedTo: 0x1234,
		CommandDataSetType:        dimse.CommandDataSetTypeNull,
		Status:                    dimse.Success,
	}
	got, ok := roundTrip(t, v).(*dimse.CEchoRsp)
	require.True(t, ok)
	assert.Equal(t, v.MessageIDBeingRespondedTo, got.MessageIDBeingRespondedTo)
	assert.Equal(t, v.Status.Status, got.Status.Status)
}

func TestCStoreRqRoundTrip(t *testing.T) {
	v := &dimse.CStoreRq{
		AffectedSOPClassUID:    "1.2.840.10008.5.1.4.1.1.2",
		MessageID:              0x2345,
		CommandDataSetType:     dimse.CommandDataSetTypeNonNull,
		AffectedSOPInstanceUID: "1.2.3.4.5",
	}
	got, ok := roundTrip(t, v).(*dimse.CStoreRq)
	require.True(t, ok)
	assert.Equal(t, v.AffectedSOPClassUID, got.AffectedSOPClassUID)
	assert.Equal(t, v.AffectedSOPInstanceUID, got.AffectedSOPInstanceUID)
	assert.Equal(t, v.MessageID, got.MessageID)
	assert.True(t, got.HasData())
}

func TestCStoreRspRoundTrip(t *testing.T) {
	v := &dimse.CStoreRsp{
		AffectedSOPClassUID:       "1.2.840.10008.5.1.4.1.1.2",
		MessageIDBeingRespondedTo: 0x2345,
		CommandDataSetType:        dimse.CommandDataSetTypeNull,
		AffectedSOPInstanceUID:    "1.2.3.4.5",
		Status:                    dimse.Status{Status: dimse.CStoreCannotUnderstand},
	}
	got, ok := roundTrip(t, v).(*dimse.CStoreRsp)
	require.True(t, ok)
	assert.Equal(t, v.Status.Status, got.Status.Status)
	assert.Equal(t, v.AffectedSOPInstanceUID, got.AffectedSOPInstanceUID)
}

func TestCCancelRqRoundTrip(t *testing.T) {
	v := &dimse.CCancelRq{MessageIDBeingRespondedTo: 0x5555}
	got, ok := roundTrip(t, v).(*dimse.CCancelRq)
	require.True(t, ok)
	assert.Equal(t, v.MessageIDBeingRespondedTo, got.MessageIDBeingRespondedTo)
}

func TestNewMessageIDIsUnique(t *testing.T) {
	a := dimse.NewMessageID()
	b := dimse.NewMessageID()
	assert.NotEqual(t, a, b)
}
