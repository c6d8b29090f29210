package dimse_test

import (
	"bytes"
	"testing"

	"github.com/dicomcore/netdicom/dimse"
	"github.com/dicomcore/netdicom/pdu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandPDV(t *testing.T, v dimse.Message, contextID byte) pdu.PresentationDataValueItem {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, dimse.EncodeMessage(&buf, v))
	return pdu.PresentationDataValueItem{
		ContextID: contextID,
		Command:   true,
		Last:      true,
		Value:     buf.Bytes(),
	}
}

// TestAddDataPDUDecodesShortCommand proves that a command set smaller than
// 100 bytes, like a real C-ECHO-RSP, still round-trips through AddDataPDU.
func TestAddDataPDUDecodesShortCommand(t *testing.T) {
	v := &dimse.CEchoRsp{
		MessageIDBeingRespondedTo: 7,
		CommandDataSetType:        dimse.CommandDataSetTypeNull,
		Status:                    dimse.Success,
	}
	var assembler dimse.CommandAssembler
	contextID, got, data, err := assembler.AddDataPDU(&pdu.PDataTf{
		Items: []pdu.PresentationDataValueItem{commandPDV(t, v, 3)},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, byte(3), contextID)
	assert.Empty(t, data)

	rsp, ok := got.(*dimse.CEchoRsp)
	require.True(t, ok)
	assert.Equal(t, v.MessageIDBeingRespondedTo, rsp.MessageIDBeingRespondedTo)
	assert.Equal(t, v.Status.Status, rsp.Status.Status)
}

// TestAddDataPDUAssemblesCommandAndData drives AddDataPDU with a command PDV
// followed by a separate dataset PDV, as a real C-STORE-RQ arrives fragmented
// over an association.
func TestAddDataPDUAssemblesCommandAndData(t *testing.T) {
	v := &dimse.CStoreRq{
		AffectedSOPClassUID:    "1.2.840.10008.5.1.4.1.1.2",
		MessageID:              9,
		CommandDataSetType:     dimse.CommandDataSetTypeNonNull,
		AffectedSOPInstanceUID: "1.2.3.4.5",
	}
	var assembler dimse.CommandAssembler

	contextID, got, data, err := assembler.AddDataPDU(&pdu.PDataTf{
		Items: []pdu.PresentationDataValueItem{commandPDV(t, v, 1)},
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, byte(0), contextID)
	assert.Nil(t, data)

	payload := []byte{0x01, 0x02, 0x03, 0x04}
	contextID, got, data, err = assembler.AddDataPDU(&pdu.PDataTf{
		Items: []pdu.PresentationDataValueItem{{
			ContextID: 1,
			Command:   false,
			Last:      true,
			Value:     payload,
		}},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, byte(1), contextID)
	assert.Equal(t, payload, data)

	rq, ok := got.(*dimse.CStoreRq)
	require.True(t, ok)
	assert.Equal(t, v.AffectedSOPClassUID, rq.AffectedSOPClassUID)
	assert.Equal(t, v.AffectedSOPInstanceUID, rq.AffectedSOPInstanceUID)
	assert.True(t, rq.HasData())
}

func TestAddDataPDUMixedContextError(t *testing.T) {
	v := &dimse.CEchoRq{MessageID: 1, CommandDataSetType: dimse.CommandDataSetTypeNull}
	var buf bytes.Buffer
	require.NoError(t, dimse.EncodeMessage(&buf, v))
	half := buf.Len() / 2

	var assembler dimse.CommandAssembler
	_, _, _, err := assembler.AddDataPDU(&pdu.PDataTf{
		Items: []pdu.PresentationDataValueItem{
			{ContextID: 1, Command: true, Last: false, Value: buf.Bytes()[:half]},
			{ContextID: 2, Command: true, Last: true, Value: buf.Bytes()[half:]},
		},
	})
	assert.Error(t, err)
}
