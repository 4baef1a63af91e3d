package owncloud

import (
	"encoding/json"
	"strconv"
	"time"
)

// Payload is the generic decoded body of one OCS reply: string keys mapping
// to scalars, nested maps or lists. The transport decodes it; the manager
// interprets it per operation kind.
type Payload map[string]any

// OCS expiration timestamps come as "2017-10-24 00:00:00".
const expireDateLayout = "2006-01-02 15:04:05"

// str reads a string-ish field. Numeric values are rendered as their
// decimal string because some servers return share ids as numbers.
func (p Payload) str(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}

// intVal reads an integer field, tolerating the number representations
// encoding/json may produce plus numeric strings.
func (p Payload) intVal(key string) (int, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// boolVal reads a boolean field, tolerating "true"/"false" strings and 0/1
// numbers as some server versions send those.
func (p Payload) boolVal(key string) (bool, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		if n, ok := p.intVal(key); ok {
			return n != 0, true
		}
		return false, false
	}
}

// list reads a list field as a sequence of records, skipping entries that
// are not maps.
func (p Payload) list(key string) ([]Payload, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	records := make([]Payload, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			records = append(records, Payload(m))
		}
	}
	return records, true
}

// parseShare maps one raw share record into an entity snapshot attached to
// mgr. The record's share_type decides whether link-only fields are read.
// Required fields (id, share_type, and url for links) yield a ProtocolError
// when missing; optional ones map to explicit absence.
func parseShare(mgr *Manager, data Payload) (*Share, error) {
	id, ok := data.str("id")
	if !ok || id == "" {
		return nil, &ProtocolError{Field: "id"}
	}
	rawType, ok := data.intVal("share_type")
	if !ok {
		return nil, &ProtocolError{Field: "share_type"}
	}
	shareType := ShareType(rawType)

	path, _ := data.str("path")
	permissions := PermissionDefault
	if v, ok := data.intVal("permissions"); ok {
		permissions = Permissions(v)
	}

	share := &Share{
		mgr:         mgr,
		id:          id,
		path:        path,
		shareType:   shareType,
		permissions: permissions,
	}

	if shareType != ShareTypeLink {
		if with, ok := data.str("share_with"); ok && with != "" {
			display, _ := data.str("share_with_displayname")
			if display == "" {
				display = with
			}
			share.shareWith = &Sharee{ID: with, DisplayName: display, Type: shareType}
		}
		return share, nil
	}

	url, ok := data.str("url")
	if !ok || url == "" {
		return nil, &ProtocolError{Field: "url"}
	}
	link := &LinkData{URL: url}

	// For link shares the server stores the password hash in share_with,
	// so a non-empty value means the link is password protected.
	if with, ok := data.str("share_with"); ok && with != "" {
		link.PasswordSet = true
	}

	if raw, ok := data.str("expiration"); ok && raw != "" {
		expire, err := time.Parse(expireDateLayout, raw)
		if err != nil {
			return nil, &ProtocolError{Field: "expiration"}
		}
		link.ExpireDate = &expire
	}

	if b, ok := data.boolVal("public_upload"); ok {
		link.PublicUpload = b
	} else {
		// Older servers omit the flag; upload capability is then implied
		// by the create bit in the permission mask.
		link.PublicUpload = permissions != PermissionDefault && permissions.Has(PermissionCreate)
	}

	share.link = link
	return share, nil
}
