package model

import (
	"fmt"
	"strconv"
)

// InternalID is a surrogate key assigned by the store. It only links rows inside the store
// (broadcast -> attachment) and addresses requests, callbacks and broadcasts.
type InternalID uint

// ExternalID is the user identifier issued by the messaging platform. Users are related to
// requests, callbacks and broadcasts by this value, never by their InternalID.
type ExternalID int64

func (id InternalID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ExternalID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseInternalID(s string) (InternalID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid internal id %q", s)
	}
	return InternalID(v), nil
}

func ParseExternalID(s string) (ExternalID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid external id %q", s)
	}
	return ExternalID(v), nil
}
