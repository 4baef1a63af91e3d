package owncloud

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Remote performs one request/response exchange against the server. It is
// the only collaborator the manager talks to: implementations own transport
// policy (TLS, timeouts, socket-level retries) and decode successful bodies
// into a generic Payload. Server-reported failures must be returned as (or
// wrapped around) a *ServerError so the manager can surface code and
// message verbatim.
type Remote interface {
	Do(ctx context.Context, method, path string, params map[string]string) (Payload, error)
}

// RequiresPasswordFunc decides whether a failed link-share creation without
// a password means the server demands one. Older servers signal this only
// through the error status, so the heuristic is configurable.
type RequiresPasswordFunc func(code int, message string) bool

// defaultRequiresPassword treats a plain forbidden status as the
// password-enforcement answer of older servers.
func defaultRequiresPassword(code int, _ string) bool {
	return code == StatusForbidden
}

// opKind enumerates the logical operations a continuation can belong to.
type opKind int

const (
	opCreateShare opKind = iota
	opCreateLinkShare
	opFetchShares
	opSetPermissions
	opDelete
	opSetPassword
	opSetExpireDate
	opSetPublicUpload
)

// continuation carries what the success handler needs to finish building
// the outcome for one in-flight call. The shared error handler only ever
// reads kind and passwordSent.
type continuation struct {
	kind opKind
	out  chan Outcome

	// createLinkShare: whether the request carried a password, which
	// gates the requires-password classification.
	passwordSent bool

	// Mutators: the snapshot the mutation was derived from plus the
	// single pending field value to apply on confirmation.
	target       *Share
	permissions  Permissions
	passwordSet  bool
	expireDate   *time.Time
	publicUpload bool
}

// reply is the terminal result of one remote call, funneled through the
// manager's single dispatch channel.
type reply struct {
	id      string
	payload Payload
	err     error
}

// Manager orchestrates the share lifecycle: it issues remote operations,
// correlates each in-flight call back to the logical request that spawned
// it, maps raw payloads into Share snapshots and delivers exactly one
// Outcome per operation without blocking the caller.
//
// Concurrent mutators on the same share are not serialized. Because
// snapshots are immutable, two in-flight mutations derived from the same
// snapshot simply yield two independent outcome snapshots; the caller keeps
// whichever it observes last.
type Manager struct {
	remote           Remote
	requiresPassword RequiresPasswordFunc

	mu      sync.Mutex
	pending map[string]continuation

	replies chan reply
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithRequiresPassword replaces the predicate that classifies a failed
// no-password link-share creation as "requires password".
func WithRequiresPassword(fn RequiresPasswordFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.requiresPassword = fn
		}
	}
}

// NewManager creates a Manager over the given remote collaborator and
// starts its dispatch loop. Call Close when done.
func NewManager(remote Remote, opts ...Option) *Manager {
	m := &Manager{
		remote:           remote,
		requiresPassword: defaultRequiresPassword,
		pending:          make(map[string]continuation),
		replies:          make(chan reply),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.wg.Add(1)
	go m.dispatch()
	return m
}

// Close stops the dispatch loop. Outcomes for calls still in flight are no
// longer delivered; their channels stay open and empty.
func (m *Manager) Close() {
	close(m.done)
	m.wg.Wait()
}

// PendingCalls returns the number of correlation entries currently held for
// in-flight calls. It returns to its pre-call value once an operation's
// outcome has been delivered.
func (m *Manager) PendingCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// CreateLinkShare requests creation of a link share for path, optionally
// protected by password. A server that demands a password for links yields
// an OutcomeRequiresPassword instead of a server error so the caller can
// re-prompt; any other failure is surfaced verbatim.
func (m *Manager) CreateLinkShare(ctx context.Context, path, password string) <-chan Outcome {
	if path == "" {
		return rejected("path must not be empty")
	}
	params := map[string]string{
		"path":      path,
		"shareType": strconv.Itoa(int(ShareTypeLink)),
	}
	if password != "" {
		params["password"] = password
	}
	return m.issue(ctx, "POST", "shares", params, continuation{
		kind:         opCreateLinkShare,
		passwordSent: password != "",
	})
}

// CreateShare requests creation of a user, group or federated share.
// shareType must not be ShareTypeLink; use CreateLinkShare for links.
func (m *Manager) CreateShare(ctx context.Context, path string, shareType ShareType, shareWith string, permissions Permissions) <-chan Outcome {
	if path == "" {
		return rejected("path must not be empty")
	}
	if shareType == ShareTypeLink {
		return rejected("use CreateLinkShare for link shares")
	}
	if shareWith == "" {
		return rejected("shareWith must not be empty")
	}
	params := map[string]string{
		"path":        path,
		"shareType":   strconv.Itoa(int(shareType)),
		"shareWith":   shareWith,
		"permissions": strconv.Itoa(int(permissions)),
	}
	return m.issue(ctx, "POST", "shares", params, continuation{kind: opCreateShare})
}

// FetchShares requests all shares defined for path. The fetched snapshot
// list preserves server order; every link-typed record exposes its link
// fields, every other record is a plain share.
func (m *Manager) FetchShares(ctx context.Context, path string) <-chan Outcome {
	if path == "" {
		return rejected("path must not be empty")
	}
	params := map[string]string{"path": path}
	return m.issue(ctx, "GET", "shares", params, continuation{kind: opFetchShares})
}

func (m *Manager) setPermissions(ctx context.Context, s *Share, permissions Permissions) <-chan Outcome {
	params := map[string]string{"permissions": strconv.Itoa(int(permissions))}
	return m.issue(ctx, "PUT", sharePath(s.id), params, continuation{
		kind:        opSetPermissions,
		target:      s,
		permissions: permissions,
	})
}

func (m *Manager) deleteShare(ctx context.Context, s *Share) <-chan Outcome {
	return m.issue(ctx, "DELETE", sharePath(s.id), nil, continuation{
		kind:   opDelete,
		target: s,
	})
}

func (m *Manager) setPassword(ctx context.Context, s *Share, password string) <-chan Outcome {
	// The password is sent once and dropped; only the flag survives.
	params := map[string]string{"password": password}
	return m.issue(ctx, "PUT", sharePath(s.id), params, continuation{
		kind:        opSetPassword,
		target:      s,
		passwordSet: password != "",
	})
}

func (m *Manager) setExpireDate(ctx context.Context, s *Share, expireDate *time.Time) <-chan Outcome {
	value := ""
	if expireDate != nil {
		value = expireDate.Format("2006-01-02")
	}
	params := map[string]string{"expireDate": value}
	return m.issue(ctx, "PUT", sharePath(s.id), params, continuation{
		kind:       opSetExpireDate,
		target:     s,
		expireDate: expireDate,
	})
}

func (m *Manager) setPublicUpload(ctx context.Context, s *Share, publicUpload bool) <-chan Outcome {
	params := map[string]string{"publicUpload": strconv.FormatBool(publicUpload)}
	return m.issue(ctx, "PUT", sharePath(s.id), params, continuation{
		kind:         opSetPublicUpload,
		target:       s,
		publicUpload: publicUpload,
	})
}

func sharePath(id string) string {
	return "shares/" + url.PathEscape(id)
}

// issue registers the continuation under a fresh call id before dispatching
// the remote call, guaranteeing the correlation entry exists whenever the
// reply arrives. The returned channel receives exactly one Outcome and is
// then closed.
func (m *Manager) issue(ctx context.Context, method, path string, params map[string]string, c continuation) <-chan Outcome {
	c.out = make(chan Outcome, 1)
	id := uuid.NewString()

	m.mu.Lock()
	m.pending[id] = c
	m.mu.Unlock()

	go func() {
		payload, err := m.remote.Do(ctx, method, path, params)
		select {
		case m.replies <- reply{id: id, payload: payload, err: err}:
		case <-m.done:
		}
	}()

	return c.out
}

// dispatch is the single delivery path for all completions and errors.
// Running it on one goroutine keeps outcome delivery ordered per call and
// the correlation map free of concurrent completion handlers.
func (m *Manager) dispatch() {
	defer m.wg.Done()
	for {
		select {
		case r := <-m.replies:
			m.finish(r)
		case <-m.done:
			return
		}
	}
}

// finish removes the correlation entry for one reply and delivers its
// single outcome. No entry survives its operation.
func (m *Manager) finish(r reply) {
	m.mu.Lock()
	c, ok := m.pending[r.id]
	if ok {
		delete(m.pending, r.id)
	}
	m.mu.Unlock()
	if !ok {
		logger.Debug("dropping reply without continuation, call ", r.id)
		return
	}

	c.out <- m.complete(c, r)
	close(c.out)
}

// complete translates a raw reply into the outcome for its continuation.
func (m *Manager) complete(c continuation, r reply) Outcome {
	if r.err != nil {
		return m.fail(c, r.err)
	}

	switch c.kind {
	case opFetchShares:
		return m.completeFetch(r.payload)
	case opCreateLinkShare:
		share, err := parseShare(m, r.payload)
		if err != nil {
			return protocolOutcome(err)
		}
		if !share.IsLink() {
			return protocolOutcome(&ProtocolError{Field: "share_type"})
		}
		return Outcome{Kind: OutcomeLinkShareCreated, Share: share}
	case opCreateShare:
		share, err := parseShare(m, r.payload)
		if err != nil {
			return protocolOutcome(err)
		}
		return Outcome{Kind: OutcomeShareCreated, Share: share}
	case opSetPermissions:
		next := c.target.clone()
		next.permissions = c.permissions
		return Outcome{Kind: OutcomePermissionsSet, Share: next}
	case opDelete:
		return Outcome{Kind: OutcomeDeleted}
	case opSetPassword:
		next := c.target.clone()
		next.link.PasswordSet = c.passwordSet
		return Outcome{Kind: OutcomePasswordSet, Share: next}
	case opSetExpireDate:
		next := c.target.clone()
		next.link.ExpireDate = c.expireDate
		return Outcome{Kind: OutcomeExpireDateSet, Share: next}
	case opSetPublicUpload:
		next := c.target.clone()
		next.link.PublicUpload = c.publicUpload
		return Outcome{Kind: OutcomePublicUploadSet, Share: next}
	default:
		return protocolOutcome(&ProtocolError{Field: "operation"})
	}
}

// fail is the error handler shared by all operation kinds. It only needs
// the server code and message, never the continuation's payload-building
// data, with one exception: a failed no-password link-share creation is
// re-classified through the requires-password predicate.
func (m *Manager) fail(c continuation, err error) Outcome {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		if c.kind == opCreateLinkShare && !c.passwordSent && m.requiresPassword(serverErr.Code, serverErr.Message) {
			return Outcome{
				Kind:    OutcomeRequiresPassword,
				Code:    serverErr.Code,
				Message: serverErr.Message,
			}
		}
		return Outcome{
			Kind:    OutcomeServerError,
			Code:    serverErr.Code,
			Message: serverErr.Message,
		}
	}
	// Transport-level failure: no server code to report.
	return Outcome{Kind: OutcomeServerError, Message: err.Error()}
}

func (m *Manager) completeFetch(payload Payload) Outcome {
	records, ok := payload.list("shares")
	if !ok {
		return protocolOutcome(&ProtocolError{Field: "shares"})
	}
	shares := make([]*Share, 0, len(records))
	for _, record := range records {
		share, err := parseShare(m, record)
		if err != nil {
			return protocolOutcome(err)
		}
		shares = append(shares, share)
	}
	return Outcome{Kind: OutcomeSharesFetched, Shares: shares}
}

func protocolOutcome(err error) Outcome {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return Outcome{Kind: OutcomeProtocolError, Message: protoErr.Field}
	}
	return Outcome{Kind: OutcomeProtocolError, Message: err.Error()}
}
