package publish

import "fmt"

// AuthenticationError means the credential was missing or rejected.
// Fatal, never retried. When the credential is absent from the environment
// the error is produced before any network call.
type AuthenticationError struct {
	Target string // index URL
	Ref    string // env var name the credential was expected under
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication to %s failed: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("authentication to %s failed: credential %s not set", e.Target, e.Ref)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// UploadError means the transport failed or the server rejected an upload.
// Fatal; retrying is an external decision and never automatic. Duplicate
// marks the terminal case of re-uploading an already-published version —
// retrying that is itself an error.
type UploadError struct {
	Target    string
	Artifact  string
	Status    int // HTTP status, 0 on transport failure
	Duplicate bool
	Err       error
}

func (e *UploadError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("uploading %s to %s: version already exists (not retryable)", e.Artifact, e.Target)
	}
	if e.Status > 0 {
		return fmt.Sprintf("uploading %s to %s: server returned %d", e.Artifact, e.Target, e.Status)
	}
	return fmt.Sprintf("uploading %s to %s: %v", e.Artifact, e.Target, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
