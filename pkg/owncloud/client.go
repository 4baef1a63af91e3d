package owncloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Sentinel errors callers can test with errors.Is. Server failures also
// carry a *ServerError in the chain with the verbatim code and message.
var (
	ErrReauthRequired   = errors.New("re-authentication required")
	ErrAccessDenied     = errors.New("access denied")
	ErrResourceNotFound = errors.New("resource not found")
	ErrOperationFailed  = errors.New("operation failed")
)

// Logger is the interface the SDK uses for logging.
type Logger interface {
	Debug(v ...interface{})
}

type DefaultLogger struct{}

func (l DefaultLogger) Debug(v ...interface{}) {}

var logger Logger = DefaultLogger{}

// SetLogger allows users of the SDK to set their own logger.
func SetLogger(l Logger) {
	logger = l
}

// Token represents an OAuth2 token and is the canonical representation used
// by the SDK.
type Token oauth2.Token

// Client talks to the OCS Share API of one ownCloud server and implements
// the Remote collaborator contract. Authentication is either HTTP basic
// (username plus app password) or an OAuth2 bearer token.
type Client struct {
	httpClient *http.Client
	serverURL  string
	username   string
	password   string
	debug      bool
}

// NewClient creates a client using basic authentication with an app
// password.
func NewClient(serverURL, username, password string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		serverURL:  strings.TrimRight(serverURL, "/"),
		username:   username,
		password:   password,
	}
}

// NewOAuthClient creates a client that authenticates with bearer tokens
// from the given source, refreshing as needed.
func NewOAuthClient(ctx context.Context, serverURL string, source oauth2.TokenSource) *Client {
	return &Client{
		httpClient: oauth2.NewClient(ctx, source),
		serverURL:  strings.TrimRight(serverURL, "/"),
	}
}

// SetDebug toggles request/response dumping to the standard log.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ocsEnvelope is the outer structure every OCS reply carries.
type ocsEnvelope struct {
	OCS struct {
		Meta struct {
			Status     string `json:"status"`
			StatusCode int    `json:"statuscode"`
			Message    string `json:"message"`
		} `json:"meta"`
		Data json.RawMessage `json:"data"`
	} `json:"ocs"`
}

// Do performs one request/response exchange against the OCS Share API.
// relPath is relative to the shares collection, e.g. "shares" or
// "shares/42". The decoded data is returned as a generic Payload; list
// replies are wrapped under the "shares" key so the payload is always a
// map. Server-reported failures come back as a *ServerError, wrapped with a
// matching sentinel where one applies.
func (c *Client) Do(ctx context.Context, method, relPath string, params map[string]string) (Payload, error) {
	logger.Debug("ocs call ", method, " ", relPath)

	endpoint := c.serverURL + ocsSharePath + relPath
	values := url.Values{"format": {"json"}}
	for k, v := range params {
		values.Set(k, v)
	}

	var body io.Reader
	requestURL := endpoint
	contentType := ""
	switch method {
	case http.MethodPost, http.MethodPut:
		requestURL = endpoint + "?format=json"
		body = strings.NewReader(values.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		requestURL = endpoint + "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Required by the OCS API to distinguish API calls from browser
	// traffic and suppress auth redirects.
	req.Header.Set("OCS-APIREQUEST", "true")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	if c.debug {
		if dump, dumpErr := httputil.DumpRequestOut(req, true); dumpErr == nil {
			log.Printf("DEBUG Request:\n%s\n", string(dump))
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during API call to %s %s: %w", method, requestURL, err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			logger.Debug("closing response body: ", closeErr)
		}
	}()

	if c.debug {
		if dump, dumpErr := httputil.DumpResponse(res, true); dumpErr == nil {
			log.Printf("DEBUG Response:\n%s\n", string(dump))
		}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %v", err)
	}

	var envelope ocsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Not an OCS body at all; classify by HTTP status.
		if res.StatusCode >= StatusBadRequest {
			return nil, c.classify(&ServerError{Code: res.StatusCode, Message: res.Status})
		}
		return nil, fmt.Errorf("%w: decoding OCS envelope: %v", ErrOperationFailed, err)
	}

	meta := envelope.OCS.Meta
	if meta.StatusCode != OcsStatusOK && meta.StatusCode != OcsStatusOKAlternate {
		message := meta.Message
		if message == "" {
			message = meta.Status
		}
		return nil, c.classify(&ServerError{Code: meta.StatusCode, Message: message})
	}

	return decodeData(envelope.OCS.Data)
}

// classify wraps a server error with the matching sentinel so callers can
// use errors.Is while errors.As still recovers the code and message.
func (c *Client) classify(serverErr *ServerError) error {
	switch serverErr.Code {
	case StatusUnauthorized, OcsStatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrReauthRequired, serverErr)
	case StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAccessDenied, serverErr)
	case StatusNotFound:
		return fmt.Errorf("%w: %w", ErrResourceNotFound, serverErr)
	default:
		return serverErr
	}
}

// decodeData turns the raw OCS data element into a Payload. Share list
// replies are arrays; they are wrapped under "shares" so the manager always
// receives a map. An empty or null data element becomes an empty Payload,
// which delete and update replies legitimately produce.
func decodeData(raw json.RawMessage) (Payload, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == `""` || trimmed == "[]" {
		if trimmed == "[]" {
			return Payload{"shares": []any{}}, nil
		}
		return Payload{}, nil
	}

	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decoding OCS data: %v", ErrOperationFailed, err)
	}

	switch t := data.(type) {
	case map[string]any:
		return Payload(t), nil
	case []any:
		return Payload{"shares": t}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected OCS data shape", ErrOperationFailed)
	}
}
