package netdicom

// ApplicationEntity bundles the identity and default presentation-context
// proposals used by cmd/ wrappers, so callers don't have to repeat the
// SOP-class/transfer-syntax lists on every NewServiceUserParams call,
// P3.7 Annex 7.
type ApplicationEntity struct {
	AETitle          string
	SOPClasses       []string
	TransferSyntaxes []string
}

// NewApplicationEntity creates an ApplicationEntity identified by aeTitle,
// willing to negotiate sopClasses over transferSyntaxes (nil for the
// standard list).
func NewApplicationEntity(aeTitle string, sopClasses []string, transferSyntaxes []string) *ApplicationEntity {
	return &ApplicationEntity{AETitle: aeTitle, SOPClasses: sopClasses, TransferSyntaxes: transferSyntaxes}
}

// Associate opens an association to a peer AE and returns the ServiceUser
// driving it.
func (ae *ApplicationEntity) Associate(calledAETitle, addr string) (*ServiceUser, error) {
	params, err := NewServiceUserParams(calledAETitle, ae.AETitle, ae.SOPClasses, ae.TransferSyntaxes)
	if err != nil {
		return nil, err
	}
	su := NewServiceUser(params)
	su.Connect(addr)
	return su, nil
}

// Serve starts a ServiceProvider for this AE, blocking until the listener
// fails or is shut down.
func (ae *ApplicationEntity) Serve(addr string, params ServiceProviderParams) error {
	if params.AETitle == "" {
		params.AETitle = ae.AETitle
	}
	sp := NewServiceProvider(params)
	return sp.Run(addr)
}
