package netdicom

import (
	"testing"

	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestEncodeDecodeElementsForContextRoundTrip(t *testing.T) {
	context := contextManagerEntry{
		contextID:         1,
		abstractSyntaxUID: uidinfo.CTImageStorage,
		transferSyntaxUID: uidinfo.ImplicitVRLittleEndian,
	}

	patientName, err := dicom.NewElement(tag.PatientName, []string{"Doe^John"})
	require.NoError(t, err)
	sopInstanceUID, err := dicom.NewElement(tag.SOPInstanceUID, []string{"1.2.3.4.5"})
	require.NoError(t, err)

	data, err := encodeElementsForContext([]*dicom.Element{patientName, sopInstanceUID}, context)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	elems, err := decodeDatasetForContext(data, context)
	require.NoError(t, err)
	require.Len(t, elems, 2)

	var gotName, gotUID string
	for _, elem := range elems {
		values, ok := elem.Value.GetValue().([]string)
		require.True(t, ok)
		require.NotEmpty(t, values)
		switch elem.Tag {
		case tag.PatientName:
			gotName = values[0]
		case tag.SOPInstanceUID:
			gotUID = values[0]
		}
	}
	assert.Equal(t, "Doe^John", gotName)
	assert.Equal(t, "1.2.3.4.5", gotUID)
}

func TestTransferSyntaxByteOrderAndVR(t *testing.T) {
	bo, implicit := transferSyntaxByteOrderAndVR(uidinfo.ImplicitVRLittleEndian)
	assert.True(t, implicit)
	assert.Equal(t, "LittleEndian", bo.String())

	_, implicit = transferSyntaxByteOrderAndVR(uidinfo.ExplicitVRBigEndian)
	assert.False(t, implicit)
}
