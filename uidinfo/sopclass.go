// Package uidinfo holds the well-known SOP class and transfer syntax UIDs
// used to negotiate presentation contexts, P3.4 Annex B and P3.6 Annex A.
package uidinfo

// Verification service, P3.4 Annex A.
const VerificationSOPClass = "1.2.840.10008.1.1"

// Storage service SOP classes, P3.4 Annex B.5, trimmed to the commonly
// exercised modalities.
const (
	ComputedRadiographyImageStorage = "1.2.840.10008.5.1.4.1.1.1"
	CTImageStorage                  = "1.2.840.10008.5.1.4.1.1.2"
	EnhancedCTImageStorage          = "1.2.840.10008.5.1.4.1.1.2.1"
	UltrasoundImageStorage          = "1.2.840.10008.5.1.4.1.1.6.1"
	MRImageStorage                  = "1.2.840.10008.5.1.4.1.1.4"
	EnhancedMRImageStorage          = "1.2.840.10008.5.1.4.1.1.4.1"
	NuclearMedicineImageStorage     = "1.2.840.10008.5.1.4.1.1.20"
	SecondaryCaptureImageStorage    = "1.2.840.10008.5.1.4.1.1.7"
	XRayAngiographicImageStorage    = "1.2.840.10008.5.1.4.1.1.12.1"
	PETImageStorage                 = "1.2.840.10008.5.1.4.1.1.128"
	RTImageStorage                  = "1.2.840.10008.5.1.4.1.1.481.1"
	RTDoseStorage                   = "1.2.840.10008.5.1.4.1.1.481.2"
	RTStructureSetStorage           = "1.2.840.10008.5.1.4.1.1.481.3"
	RTPlanStorage                   = "1.2.840.10008.5.1.4.1.1.481.5"
)

// Query/Retrieve SOP classes, P3.4 Annex C/F.
const (
	PatientRootQRFindSOPClass  = "1.2.840.10008.5.1.4.1.2.1.1"
	PatientRootQRMoveSOPClass  = "1.2.840.10008.5.1.4.1.2.1.2"
	PatientRootQRGetSOPClass   = "1.2.840.10008.5.1.4.1.2.1.3"
	StudyRootQRFindSOPClass    = "1.2.840.10008.5.1.4.1.2.2.1"
	StudyRootQRMoveSOPClass    = "1.2.840.10008.5.1.4.1.2.2.2"
	StudyRootQRGetSOPClass     = "1.2.840.10008.5.1.4.1.2.2.3"
)

// StorageSOPClasses is the default set offered by storescu-like callers
// that don't care which modality they're forwarding.
var StorageSOPClasses = []string{
	ComputedRadiographyImageStorage,
	CTImageStorage,
	EnhancedCTImageStorage,
	UltrasoundImageStorage,
	MRImageStorage,
	EnhancedMRImageStorage,
	NuclearMedicineImageStorage,
	SecondaryCaptureImageStorage,
	XRayAngiographicImageStorage,
	PETImageStorage,
	RTImageStorage,
	RTDoseStorage,
	RTStructureSetStorage,
	RTPlanStorage,
}

// QRFindSOPClasses is offered by a C-FIND SCU.
var QRFindSOPClasses = []string{PatientRootQRFindSOPClass, StudyRootQRFindSOPClass}

// QRMoveSOPClasses is offered by a C-MOVE SCU.
var QRMoveSOPClasses = []string{PatientRootQRMoveSOPClass, StudyRootQRMoveSOPClass}

// QRGetSOPClasses is offered by a C-GET SCU.
var QRGetSOPClasses = []string{PatientRootQRGetSOPClass, StudyRootQRGetSOPClass}

// DefaultImplementationClassUID identifies this package in the
// implementation-class-uid user-information item, P3.7 D.3.3.2.
const DefaultImplementationClassUID = "1.2.826.0.1.3680043.2.1143.dicomcore"

// DefaultImplementationVersionName identifies this package's version in the
// implementation-version-name user-information item, P3.7 D.3.3.2.
const DefaultImplementationVersionName = "DICOMCORE_001"
