package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindRenderFailure     Kind = "render_failure"
	KindExtractionFailure Kind = "extraction_failure"
	KindParseFailure      Kind = "parse_failure"
	KindInternalFault     Kind = "internal_fault"
)

// Stage names the pipeline step that produced an error.
type Stage string

const (
	StageUpload    Stage = "upload"
	StageValidate  Stage = "validation"
	StageRasterize Stage = "rasterization"
	StageExtract   Stage = "extraction"
	StageParse     Stage = "parsing"
)

// Sentinel causes wrapped by pipeline errors.
var (
	ErrInvalidExtension    = errors.New("invalid file type, expected a .pdf document")
	ErrUnreadableDocument  = errors.New("failed to process document, not a readable PDF")
	ErrNoPages             = errors.New("document has no pages")
	ErrExtractionTimeout   = errors.New("model request timed out")
	ErrEmptyModelResponse  = errors.New("model returned an empty response")
	ErrResponseNotAnObject = errors.New("model response is not a JSON object")
)

// Error is a classified pipeline error. Message is safe to show to callers;
// Err carries the underlying cause for logs.
type Error struct {
	Kind     Kind
	Stage    Stage
	Filename string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PublicMessage renders the caller-facing message, naming the stage and file.
func (e *Error) PublicMessage() string {
	switch {
	case e.Stage != "" && e.Filename != "":
		return fmt.Sprintf("%s failed for %q: %s", e.Stage, e.Filename, e.Message)
	case e.Stage != "":
		return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
	default:
		return e.Message
	}
}

// NewError creates a new classified error
func NewError(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func InvalidInputError(message string, err error) *Error {
	return NewError(KindInvalidInput, message, err)
}

func RenderError(message string, err error) *Error {
	return NewError(KindRenderFailure, message, err)
}

func ExtractionError(message string, err error) *Error {
	return NewError(KindExtractionFailure, message, err)
}

func ParseError(message string, err error) *Error {
	return NewError(KindParseFailure, message, err)
}

func InternalError(message string, err error) *Error {
	return NewError(KindInternalFault, message, err)
}

// Classify attaches stage and filename to err. Anything that is not already
// an *Error becomes an InternalFault.
func Classify(err error, stage Stage, filename string) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if !errors.As(err, &de) {
		de = InternalError("unexpected error", err)
	}
	out := *de
	if out.Stage == "" {
		out.Stage = stage
	}
	if out.Filename == "" {
		out.Filename = filename
	}
	return &out
}

// KindOf reports the Kind of err, defaulting to KindInternalFault.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternalFault
}

// IsClientFault reports whether the kind is attributable to the caller's input.
func (k Kind) IsClientFault() bool {
	switch k {
	case KindInvalidInput, KindRenderFailure, KindExtractionFailure, KindParseFailure:
		return true
	default:
		return false
	}
}

// StatusCode maps a kind to the HTTP status returned to the caller.
func StatusCode(k Kind) int {
	if k.IsClientFault() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
