package apperrors

import (
	"errors"
	"sort"
	"strings"
)

// appError is the only implementation of Error.
type appError struct {
	msg        string
	parent     *appError         // sentinel this error was derived from
	causes     []error           // wrapped causes, in the order they were attached
	details    map[string]string // method, param, source ...
	statuscode int
	prefix     string
}

// New creates a root sentinel with the given message.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	if e.prefix != "" {
		return e.prefix + ": " + e.msg
	}
	return e.msg
}

// ErrorAll renders the message followed by sorted details and every cause.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(e.details[k])
		}
		b.WriteString("]")
	}
	for _, c := range e.causes {
		b.WriteString("; ")
		b.WriteString(c.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *appError) UnwrapAll() []error {
	return e.causes
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		parent:     e,
		statuscode: e.statuscode,
	}
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		parent:     e,
		details:    e.copyDetails(),
		statuscode: e.statuscode,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	child := e.Msg(msg).(*appError)
	child.causes = append(child.causes, errs...)
	return child
}

func (e *appError) Err(errs ...error) Error {
	return e.MsgErr(e.msg, errs...)
}

// With returns a copy carrying the detail. The receiver is unchanged.
func (e *appError) With(key, value string) Error {
	cp := *e
	cp.details = e.copyDetails()
	cp.details[key] = value
	return &cp
}

func (e *appError) Detail(key string) string {
	return e.details[key]
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func (e *appError) Prefix(p string) Error {
	cp := *e
	cp.prefix = p
	return &cp
}

func (e *appError) Root() Error {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Is matches the error itself, any ancestor sentinel and any wrapped cause.
// Copies made by With/Prefix/SetStatusCode still match the sentinel they
// were copied from since they share its parent and message.
func (e *appError) Is(target error) bool {
	t, ok := target.(*appError)
	if ok && e.sameSentinel(t) {
		return true
	}
	if e.parent != nil && errors.Is(e.parent, target) {
		return true
	}
	for _, c := range e.causes {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

func (e *appError) sameSentinel(t *appError) bool {
	return e == t || (e.parent == t.parent && e.msg == t.msg)
}

func (e *appError) copyDetails() map[string]string {
	out := make(map[string]string, len(e.details)+1)
	for k, v := range e.details {
		out[k] = v
	}
	return out
}
