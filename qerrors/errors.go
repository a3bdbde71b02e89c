// Package qerrors implements the closed error taxonomy used at the process
// boundary (resources, invalid input, runtime, file I/O). A Kind carries a
// stable numeric code so the CLI can emit the tagged "_QTK<code>" line on
// exit, mirroring the exit-code partitioning in the external interface spec.
package qerrors

import "fmt"

// Kind is one member of the closed error enumeration. The numeric value is
// part of the wire contract (see Code) and must not be reassigned.
type Kind int

const (
	// Resource exhaustion, 001-100.
	MemoryLimited Kind = iota + 1
	TimeoutInsufficient

	// Invalid input, 101-200.
	DuplicatedVariable
	MissingInput
	InvalidTypes
	InitialConfigError
	ParsingError
	ValueError

	// Runtime, 201-300.
	NotImplemented
	KeyDoesNotExist

	// File I/O, 301-400.
	FileIO
)

// code maps each Kind to its stable exit-code value.
var code = map[Kind]int{
	MemoryLimited:       1,
	TimeoutInsufficient: 2,

	DuplicatedVariable:  101,
	MissingInput:        102,
	InvalidTypes:        103,
	InitialConfigError:  104,
	ParsingError:        105,
	ValueError:          107,

	NotImplemented:  201,
	KeyDoesNotExist: 202,

	FileIO: 301,
}

var name = map[Kind]string{
	MemoryLimited:       "MemoryLimited",
	TimeoutInsufficient: "TimeoutInsufficient",
	DuplicatedVariable:  "DuplicatedVariable",
	MissingInput:        "MissingInput",
	InvalidTypes:        "InvalidTypes",
	InitialConfigError:  "InitialConfigError",
	ParsingError:        "ParsingError",
	ValueError:          "ValueError",
	NotImplemented:      "NotImplemented",
	KeyDoesNotExist:     "KeyDoesNotExist",
	FileIO:              "FileIO",
}

func (k Kind) String() string {
	if s, ok := name[k]; ok {
		return s
	}
	return "Unknown"
}

// Code returns the stable exit-code value for k, or 0 if k is not a member
// of the enumeration.
func (k Kind) Code() int {
	return code[k]
}

// Error is a user-facing or runtime error tagged with a Kind. User errors
// surface at the process boundary with the "_QTK<code>" prefix; runtime
// errors (NotImplemented, KeyDoesNotExist) are fatal and logged by the
// caller through logrus instead, without a stack trace.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind around an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsUserError reports whether kind belongs to the resource/invalid-input/
// file-I/O ranges (001-200, 301-400) rather than the runtime range
// (201-300), which is always fatal.
func IsUserError(kind Kind) bool {
	c := kind.Code()
	return (c >= 1 && c <= 200) || (c >= 301 && c <= 400)
}

// Tag formats the process-boundary line for a user error, e.g.
// "_QTK105 missing required field terms".
func Tag(err *Error) string {
	return fmt.Sprintf("_QTK%03d %s", err.Kind.Code(), err.Msg)
}
