package timing

import "fmt"

// A MissingParameterError is returned by a component's Setup when a
// required parameter or parameter combination is absent after the full
// model file has been read. The model cannot be evaluated until the input
// is corrected.
type MissingParameterError struct {
	Component string
	Param     string
	Msg       string
}

func (e *MissingParameterError) Error() string {
	s := e.Component + "." + e.Param
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// An UnavailableDerivativeError is returned when neither an analytic nor a
// numeric derivative can be produced for a parameter. It is fatal to the
// single request, not to the model, so a fitter can catch it and skip the
// parameter.
type UnavailableDerivativeError struct {
	Param string
	Msg   string
}

func (e *UnavailableDerivativeError) Error() string {
	return fmt.Sprintf("no derivative available for %s: %s", e.Param, e.Msg)
}

// An EmptyDesignError is returned when a requested design matrix would
// have no rows or no columns. Like a derivative failure it is fatal to
// the single request, not to the model.
type EmptyDesignError struct {
	Msg string
}

func (e *EmptyDesignError) Error() string {
	return "empty design matrix: " + e.Msg
}

// A ParamConflictError is returned when composing a component would
// register a parameter name or prefix index that another component already
// claimed.
type ParamConflictError struct {
	Param     string
	Component string
}

func (e *ParamConflictError) Error() string {
	return fmt.Sprintf("parameter %s from component %s is already defined",
		e.Param, e.Component)
}
