// Package apperrors provides the chained error type shared by the spore packages.
// Errors are declared as package-level sentinels arranged in a hierarchy
// (ErrSpec -> ErrSpecShape -> ErrSpecVersion). Call sites derive new errors
// from a sentinel so that errors.Is matches every ancestor, and attach the
// offending method, parameter or source as details.
package apperrors

// Error defines the interface for spore errors. It extends the standard error
// interface with derivation, wrapping and detail methods. All methods return
// Error to support chaining at the call site.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derives a child sentinel from the current error
	Msg(msg string) Error                  // replaces the message, keeping the current error in the chain
	MsgErr(msg string, err ...error) Error // like Msg but also wraps the causes
	Err(err ...error) Error                // keeps the message and wraps the causes
	With(key, value string) Error          // attaches a detail such as method=ping
	Detail(key string) string              // returns an attached detail or ""
	SetStatusCode(int) Error               // records a remote status code (transport errors)
	StatusCode() int                       // returns the recorded status code
	Prefix(string) Error                   // adds a prefix to the message
	ErrorAll() string                      // message, details and wrapped causes
	UnwrapAll() []error                    // all wrapped causes
	Root() Error                           // top-most sentinel of the hierarchy
}
