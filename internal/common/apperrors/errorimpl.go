package apperrors

// appError implements the apperrors.Error interface
type appError struct {
	msg           string
	base          Error
	wrappedErrors []error
	statuscode    int
	expandError   bool
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) ErrorAll() string {
	if !e.expandError {
		return e.msg
	}
	var msg string
	for _, err := range e.wrappedErrors {
		msg += err.Error() + ";"
	}
	if len(msg) > 0 {
		// drop the trailing ;
		msg = msg[:len(msg)-1]
		msg = e.msg + ": " + msg
	} else {
		msg = e.msg
	}

	return msg
}

func (e *appError) Unwrap() []error {
	return e.wrappedErrors
}

// New derives a child error. The child inherits the status code and treats
// the receiver as its base for Is matching.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		statuscode:  e.statuscode,
		expandError: e.expandError,
		base:        e,
	}
}

// Msg derives a child carrying the given message. The receiver is left
// untouched so sentinels can be annotated per call site.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:         msg,
		statuscode:  e.statuscode,
		expandError: e.expandError,
		base:        e,
	}
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	return &appError{
		msg:           msg,
		statuscode:    e.statuscode,
		expandError:   e.expandError,
		base:          e,
		wrappedErrors: err,
	}
}

func (e *appError) Err(err ...error) Error {
	return &appError{
		msg:           e.msg,
		statuscode:    e.statuscode,
		expandError:   e.expandError,
		base:          e,
		wrappedErrors: err,
	}
}

func (e *appError) Is(target error) bool {
	if e == target || e.base == target {
		return true
	}
	if e.base != nil && e.base.Is(target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if err == target {
			return true
		}
	}
	return false
}

func (e *appError) SetExpandError(expand bool) Error {
	e.expandError = expand
	return e
}

func (e *appError) SetStatusCode(code int) Error {
	e.statuscode = code
	return e
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}
