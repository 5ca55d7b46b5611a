package dto

import (
	"time"
)

// TimestampLayout is the textual form of every timestamp leaving this module (UTC).
const TimestampLayout = "2006-01-02T15:04:05.000000"

// UnnamedOwner labels joined rows whose owner has no display name.
const UnnamedOwner = "без имени"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}

func ownerName(name *string) string {
	if name == nil || *name == "" {
		return UnnamedOwner
	}
	return *name
}

const StatusOK = "ok"

type StatusResponse struct {
	Status string `json:"status"`
}

func OK() StatusResponse {
	return StatusResponse{Status: StatusOK}
}

// ErrorResponse is the only error shape a command ever returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DispatchRequest is the body of an HTTP command call. Args are positional, as on the command line.
type DispatchRequest struct {
	Args []string `json:"args"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}
