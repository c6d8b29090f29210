package uidinfo_test

import (
	"testing"

	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalTransferSyntaxUIDKnown(t *testing.T) {
	got, err := uidinfo.CanonicalTransferSyntaxUID(uidinfo.ImplicitVRLittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uidinfo.ImplicitVRLittleEndian, got)
}

func TestCanonicalTransferSyntaxUIDStripsTrailingNUL(t *testing.T) {
	got, err := uidinfo.CanonicalTransferSyntaxUID(uidinfo.ExplicitVRLittleEndian + "\x00")
	require.NoError(t, err)
	assert.Equal(t, uidinfo.ExplicitVRLittleEndian, got)
}

func TestCanonicalTransferSyntaxUIDUnknown(t *testing.T) {
	_, err := uidinfo.CanonicalTransferSyntaxUID("1.2.3.4.5.unknown")
	require.Error(t, err)
	var unknownErr *uidinfo.UnknownTransferSyntaxError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestStandardTransferSyntaxesNonEmpty(t *testing.T) {
	assert.NotEmpty(t, uidinfo.StandardTransferSyntaxes)
	for _, uid := range uidinfo.StandardTransferSyntaxes {
		_, err := uidinfo.CanonicalTransferSyntaxUID(uid)
		assert.NoError(t, err, "uid %s should be recognized", uid)
	}
}

func TestStorageSOPClassesNonEmpty(t *testing.T) {
	assert.NotEmpty(t, uidinfo.StorageSOPClasses)
	assert.Contains(t, uidinfo.StorageSOPClasses, uidinfo.CTImageStorage)
}
