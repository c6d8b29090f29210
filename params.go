package netdicom

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dicomcore/netdicom/uidinfo"
)

// DefaultMaxPDUSize is the maximum PDU length, in bytes, this package is
// willing to receive, advertised in the max-length user-information item,
// P3.7 D.3.3.1. 16KB matches what Osirix and pynetdicom3 send as the
// initial offer.
const DefaultMaxPDUSize = 16 * 1024

// Default ACSE/DIMSE/network timeouts. The ACSE default matches the
// acse_timeout=60 of pynetdicom3's movescp/storescp apps; the DIMSE and
// network waits, which those apps leave unbounded, are bounded here.
const (
	DefaultAcseTimeout    = 60 * time.Second
	DefaultDimseTimeout   = 120 * time.Second
	DefaultNetworkTimeout = 300 * time.Second
)

// ServiceUserParams configures a client-side association request, P3.8
// 9.3.2.
type ServiceUserParams struct {
	// CalledAETitle identifies the peer (server) AE. Must be nonempty.
	CalledAETitle string
	// CallingAETitle identifies this (client) AE. Must be nonempty.
	CallingAETitle string

	// SOPClasses is the list of abstract syntax UIDs this client proposes,
	// one presentation context per entry.
	SOPClasses []string

	// TransferSyntaxes is the list of transfer syntax UIDs offered for
	// every proposed abstract syntax. If empty, uidinfo.StandardTransferSyntaxes
	// is used.
	TransferSyntaxes []string

	// AcseTimeout bounds how long to wait for an ACSE response (A-ASSOCIATE,
	// A-RELEASE) once requested, P3.8 Annex D AE-2/AE-3. Zero uses
	// DefaultAcseTimeout.
	AcseTimeout time.Duration
	// DimseTimeout bounds how long to wait for a DIMSE-C/N response once a
	// request has been sent. Zero uses DefaultDimseTimeout.
	DimseTimeout time.Duration
	// NetworkTimeout bounds how long an idle, associated connection may go
	// without any PDU before it is aborted. Zero uses DefaultNetworkTimeout.
	NetworkTimeout time.Duration
}

// validateAETitle rejects AE titles that cannot be encoded as a P3.8
// AE-title field: empty (once insignificant whitespace/nulls are
// stripped), longer than 16 characters, or containing a backslash or any
// control character, grounded on pynetdicom3's validate_ae_title.
func validateAETitle(aeTitle string) error {
	trimmed := trimAETitle(aeTitle)
	if trimmed == "" {
		return fmt.Errorf("netdicom: AE title %q is empty", aeTitle)
	}
	if len(trimmed) > 16 {
		return fmt.Errorf("netdicom: AE title %q exceeds 16 characters", aeTitle)
	}
	for _, r := range trimmed {
		if r == '\\' {
			return fmt.Errorf("netdicom: AE title %q must not contain a backslash", aeTitle)
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("netdicom: AE title %q must not contain control characters", aeTitle)
		}
	}
	return nil
}

// trimAETitle strips the leading/trailing spaces and trailing NUL/control
// padding that a wire-format AE title may carry.
func trimAETitle(aeTitle string) string {
	return strings.TrimRight(strings.TrimSpace(aeTitle), "\x00\r\t\n")
}

// NewServiceUserParams validates and normalizes a ServiceUserParams.
func NewServiceUserParams(calledAETitle, callingAETitle string, sopClasses []string, transferSyntaxUIDs []string) (ServiceUserParams, error) {
	if err := validateAETitle(calledAETitle); err != nil {
		return ServiceUserParams{}, err
	}
	if err := validateAETitle(callingAETitle); err != nil {
		return ServiceUserParams{}, err
	}
	if len(sopClasses) == 0 {
		return ServiceUserParams{}, errors.New("netdicom: no SOP classes given")
	}
	if len(transferSyntaxUIDs) == 0 {
		transferSyntaxUIDs = uidinfo.StandardTransferSyntaxes
	} else {
		normalized := make([]string, len(transferSyntaxUIDs))
		for i, uid := range transferSyntaxUIDs {
			canonical, err := uidinfo.CanonicalTransferSyntaxUID(uid)
			if err != nil {
				return ServiceUserParams{}, err
			}
			normalized[i] = canonical
		}
		transferSyntaxUIDs = normalized
	}
	return ServiceUserParams{
		CalledAETitle:    calledAETitle,
		CallingAETitle:   callingAETitle,
		SOPClasses:       sopClasses,
		TransferSyntaxes: transferSyntaxUIDs,
		AcseTimeout:      DefaultAcseTimeout,
		DimseTimeout:     DefaultDimseTimeout,
		NetworkTimeout:   DefaultNetworkTimeout,
	}, nil
}
