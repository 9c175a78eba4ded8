package session

import "errors"

var (
	// ErrInvalidConfig indicates the manager could not be built from its configuration
	ErrInvalidConfig = errors.New("session.invalid_config")

	// ErrSerialize indicates the session data could not be encoded as JSON
	ErrSerialize = errors.New("session.serialize_failed")

	// ErrSealFailed indicates the session data could not be sealed
	ErrSealFailed = errors.New("session.seal_failed")

	// ErrStageFailed indicates the sealed cookie could not be staged on the response
	ErrStageFailed = errors.New("session.stage_failed")

	// ErrCommitFailed is returned to writes issued after the commit gate failed
	ErrCommitFailed = errors.New("session.commit_failed")

	// ErrHeadersWritten indicates a session change arrived after the response headers were sent
	ErrHeadersWritten = errors.New("session.headers_written")

	// ErrNotObject indicates a value that is not a JSON object was used as session root
	ErrNotObject = errors.New("session.not_object")

	// ErrNotList indicates a list handle no longer points at an array
	ErrNotList = errors.New("session.not_list")

	// ErrIndexOutOfRange indicates a list index outside the array bounds
	ErrIndexOutOfRange = errors.New("session.index_out_of_range")

	// ErrTooDeep indicates a value nested too deeply to be stored, usually a cycle
	ErrTooDeep = errors.New("session.too_deep")
)
