package owncloud

import "fmt"

// OutcomeKind tags the variant carried by an Outcome.
type OutcomeKind int

const (
	// Success variants from ShareManager operations.
	OutcomeShareCreated OutcomeKind = iota
	OutcomeLinkShareCreated
	OutcomeSharesFetched

	// Success variants from entity mutators.
	OutcomePermissionsSet
	OutcomeDeleted
	OutcomePasswordSet
	OutcomeExpireDateSet
	OutcomePublicUploadSet

	// RequiresPassword means the server refused a link-share creation
	// because no password was supplied. It is not a hard failure; the
	// caller should re-prompt and retry.
	OutcomeRequiresPassword

	// Failure variants.
	OutcomeServerError
	OutcomeProtocolError
	OutcomeInvalidRequest
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeShareCreated:
		return "share created"
	case OutcomeLinkShareCreated:
		return "link share created"
	case OutcomeSharesFetched:
		return "shares fetched"
	case OutcomePermissionsSet:
		return "permissions set"
	case OutcomeDeleted:
		return "deleted"
	case OutcomePasswordSet:
		return "password set"
	case OutcomeExpireDateSet:
		return "expire date set"
	case OutcomePublicUploadSet:
		return "public upload set"
	case OutcomeRequiresPassword:
		return "requires password"
	case OutcomeServerError:
		return "server error"
	case OutcomeProtocolError:
		return "protocol error"
	case OutcomeInvalidRequest:
		return "invalid request"
	default:
		return "unknown"
	}
}

// Outcome is the single, terminal notification for one issued operation.
// Exactly one Outcome is delivered per operation, after which the channel
// is closed.
type Outcome struct {
	Kind OutcomeKind

	// Share carries the created entity or the updated snapshot for
	// single-entity success variants.
	Share *Share

	// Shares carries the fetched entities in server order for
	// OutcomeSharesFetched.
	Shares []*Share

	// Code and Message carry the server-reported status for
	// OutcomeServerError and OutcomeRequiresPassword, or a description
	// for the other failure variants.
	Code    int
	Message string
}

// Err folds the failure variants into an error. Success variants and
// OutcomeRequiresPassword return nil; RequiresPassword is a recoverable
// condition, not a failure.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeServerError:
		return &ServerError{Code: o.Code, Message: o.Message}
	case OutcomeProtocolError:
		return &ProtocolError{Field: o.Message}
	case OutcomeInvalidRequest:
		return fmt.Errorf("invalid request: %s", o.Message)
	default:
		return nil
	}
}

// ServerError is a failure reported by the server, surfaced verbatim and
// never retried by this package.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// ProtocolError reports a server payload that did not match the expected
// shape, e.g. a share record without an id. Missing optional fields are not
// protocol errors; missing required ones are.
type ProtocolError struct {
	Field string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: missing or malformed field %q", e.Field)
}

// rejected delivers an immediate invalid-request outcome for calls that
// fail local preconditions before any remote call is issued.
func rejected(message string) <-chan Outcome {
	out := make(chan Outcome, 1)
	out <- Outcome{Kind: OutcomeInvalidRequest, Message: message}
	close(out)
	return out
}
