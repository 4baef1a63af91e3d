// Package owncloud constants shared across the client and manager.
package owncloud

import "time"

// HTTP status codes the client reacts to.
const (
	StatusOK           = 200
	StatusBadRequest   = 400
	StatusUnauthorized = 401
	StatusForbidden    = 403
	StatusNotFound     = 404
)

// OCS meta statuscodes. OCS v1 reports success as 100 inside a 200 HTTP
// response; some endpoints use plain 200. 997 is the OCS unauthorised code.
const (
	OcsStatusOK           = 100
	OcsStatusOKAlternate  = 200
	OcsStatusUnauthorized = 997
)

// Default HTTP configuration.
const (
	DefaultTimeout = 30 * time.Second
)

// ocsSharePath is the OCS Share API collection, relative to the server root.
const ocsSharePath = "/ocs/v1.php/apps/files_sharing/api/v1/"
