package command

import "fmt"

// ErrorKind classifies a UserInputError.
type ErrorKind int

const (
	UnknownCommand ErrorKind = iota
	BadParameter
	NoSuchBuffer
	Ambiguous
	MultipleCommands
	External
)

// String returns the string representation of the kind
func (k ErrorKind) String() string {
	switch k {
	case UnknownCommand:
		return "unknown-command"
	case BadParameter:
		return "bad-parameter"
	case NoSuchBuffer:
		return "no-such-buffer"
	case Ambiguous:
		return "ambiguous"
	case MultipleCommands:
		return "multiple-commands"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// UserInputError is an expected failure caused by what the user typed. Its
// message is shown to the user verbatim.
type UserInputError struct {
	Kind    ErrorKind
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

// Userf builds a UserInputError with a formatted message.
func Userf(kind ErrorKind, format string, args ...any) *UserInputError {
	return &UserInputError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
