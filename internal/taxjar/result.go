package taxjar

// Kind tags which variant of Result is populated.
type Kind string

const (
	KindSuccess    Kind = "success"
	KindFailure    Kind = "failure"
	KindUnexpected Kind = "unexpected"
)

// Result is the normalized outcome of one gateway call.
//
// Success and Failure carry the HTTP status and raw body. Unexpected means no
// HTTP response was obtained; StatusCode is zero and Message holds the cause.
type Result struct {
	Kind       Kind
	StatusCode int
	Body       []byte
	Message    string
}

func Success(statusCode int, body []byte) Result {
	return Result{Kind: KindSuccess, StatusCode: statusCode, Body: body}
}

func Failure(statusCode int, body []byte) Result {
	return Result{Kind: KindFailure, StatusCode: statusCode, Body: body}
}

func Unexpected(message string) Result {
	return Result{Kind: KindUnexpected, Message: message}
}

func (r Result) IsSuccess() bool    { return r.Kind == KindSuccess }
func (r Result) IsFailure() bool    { return r.Kind == KindFailure }
func (r Result) IsUnexpected() bool { return r.Kind == KindUnexpected }

// HasStatus reports whether an HTTP response was received.
func (r Result) HasStatus() bool {
	return r.Kind == KindSuccess || r.Kind == KindFailure
}
