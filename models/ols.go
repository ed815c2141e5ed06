package models

type OLSOptions struct {
	FitIntercept bool
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	return o, nil
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization. It is
// the unit-weight special case of WLSRegression and shares its solver.
type OLSRegression struct {
	*WLSRegression
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	wls, err := NewWLSRegression(&WLSOptions{FitIntercept: opt.FitIntercept})
	if err != nil {
		return nil, err
	}
	return &OLSRegression{WLSRegression: wls}, nil
}
