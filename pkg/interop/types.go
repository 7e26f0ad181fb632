package interop

import (
	"errors"
	"fmt"
)

// ErrNotSetup is returned when no Space access token is configured.
var ErrNotSetup = errors.New("space access token is not configured")

// Action is an app action exposed by an installed Space app instance.
type Action struct {
	InstanceID    string        `json:"instance_id"`
	InstanceAlias string        `json:"instance_alias,omitempty"`
	AppName       string        `json:"app_name,omitempty"`
	Name          string        `json:"name"`
	Title         string        `json:"title,omitempty"`
	Input         []ActionInput `json:"input,omitempty"`
}

// ActionInput describes one parameter an action accepts.
type ActionInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// Error is returned for non-2xx responses from the Space API.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("space api returned status %d", e.Status)
	}
	return fmt.Sprintf("space api returned status %d: %s", e.Status, e.Body)
}

type listActionsResponse struct {
	Actions []Action `json:"actions"`
}
