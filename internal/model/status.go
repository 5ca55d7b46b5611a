package model

import "strings"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleDean  Role = "dean"
	RoleUser  Role = "user"
)

// Older front-end builds send these names for dean's-office staff.
var roleAliases = map[string]Role{
	"dekanat":  RoleDean,
	"operator": RoleDean,
}

// ParseRole maps s onto the fixed role set. ok is false for anything outside it.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch Role(s) {
	case RoleAdmin, RoleDean, RoleUser:
		return Role(s), true
	}
	if r, ok := roleAliases[s]; ok {
		return r, true
	}
	return "", false
}

// IsStaff reports whether the role belongs to dean's-office staff.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleDean
}

type RequestStatus string

const (
	RequestNew        RequestStatus = "new"
	RequestInProgress RequestStatus = "in_progress"
	RequestDone       RequestStatus = "done"
	RequestRejected   RequestStatus = "rejected"
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch st := RequestStatus(strings.TrimSpace(s)); st {
	case RequestNew, RequestInProgress, RequestDone, RequestRejected:
		return st, true
	}
	return "", false
}

type CallbackStatus string

const (
	CallbackWaiting    CallbackStatus = "waiting"
	CallbackProcessing CallbackStatus = "processing"
	CallbackSuccess    CallbackStatus = "success"
	CallbackFailed     CallbackStatus = "failed"
)

func ParseCallbackStatus(s string) (CallbackStatus, bool) {
	switch st := CallbackStatus(strings.TrimSpace(s)); st {
	case CallbackWaiting, CallbackProcessing, CallbackSuccess, CallbackFailed:
		return st, true
	}
	return "", false
}

// Attachment kinds the front-end sends. They are not enforced by the store.
const (
	AttachmentImage = "image"
	AttachmentVideo = "video"
	AttachmentFile  = "file"
	AttachmentAudio = "audio"
)
