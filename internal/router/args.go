package router

import (
	"fmt"
	"strings"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/pkg/apperror"
)

// Args hands out positional command arguments in order.
type Args struct {
	raw []string
	pos int
}

func NewArgs(raw []string) *Args {
	return &Args{raw: raw}
}

func (a *Args) next() (string, bool) {
	if a.pos >= len(a.raw) {
		return "", false
	}
	v := a.raw[a.pos]
	a.pos++
	return v, true
}

func missing(name string) error {
	return apperror.Validation("missing argument: " + name)
}

func invalid(name, raw string) error {
	return apperror.Validation(fmt.Sprintf("invalid %s: %q", name, raw))
}

// String returns the next argument. An absent or empty argument is an error.
func (a *Args) String(name string) (string, error) {
	v, ok := a.next()
	if !ok || v == "" {
		return "", missing(name)
	}
	return v, nil
}

// Optional returns the next argument, or nil when it is absent or empty.
func (a *Args) Optional() *string {
	v, ok := a.next()
	if !ok || v == "" {
		return nil
	}
	return &v
}

func (a *Args) ExternalID(name string) (model.ExternalID, error) {
	v, err := a.String(name)
	if err != nil {
		return 0, err
	}
	id, err := model.ParseExternalID(strings.TrimSpace(v))
	if err != nil {
		return 0, invalid(name, v)
	}
	return id, nil
}

func (a *Args) OptionalExternalID(name string) (*model.ExternalID, error) {
	v := a.Optional()
	if v == nil {
		return nil, nil
	}
	id, err := model.ParseExternalID(strings.TrimSpace(*v))
	if err != nil {
		return nil, invalid(name, *v)
	}
	return &id, nil
}

func (a *Args) InternalID(name string) (model.InternalID, error) {
	v, err := a.String(name)
	if err != nil {
		return 0, err
	}
	id, err := model.ParseInternalID(strings.TrimSpace(v))
	if err != nil {
		return 0, invalid(name, v)
	}
	return id, nil
}

// Rest joins every remaining argument with single spaces.
func (a *Args) Rest(name string) (string, error) {
	v := a.OptionalRest()
	if v == nil {
		return "", missing(name)
	}
	return *v, nil
}

func (a *Args) OptionalRest() *string {
	if a.pos >= len(a.raw) {
		return nil
	}
	v := strings.Join(a.raw[a.pos:], " ")
	a.pos = len(a.raw)
	if v == "" {
		return nil
	}
	return &v
}
