package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chatspace-app/chatspace/pkg/integration"
)

// UserMessage renders a push error as a short sentence for the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrInFlight) {
		return "This content is already being sent."
	}

	var nc *integration.NotConfiguredError
	if errors.As(err, &nc) {
		return fmt.Sprintf("Integration %q is not configured.", nc.Key)
	}

	if errors.Is(err, context.Canceled) {
		return "Push cancelled."
	}

	pe, ok := integration.AsPushError(err)
	if !ok {
		return "Something went wrong: " + err.Error()
	}

	switch pe.Kind {
	case integration.KindNetworkUnreachable:
		return "No internet connection."
	case integration.KindTimeout:
		return pe.Key + " did not respond in time."
	case integration.KindMalformedResponse:
		return pe.Key + " returned an unexpected response."
	case integration.KindHTTPStatus:
		if detail := strings.TrimSpace(pe.Detail); detail != "" && detail != http.StatusText(pe.Status) {
			return detail
		}
		return fmt.Sprintf("%s rejected the request (HTTP %d).", pe.Key, pe.Status)
	default:
		return "Something went wrong: " + err.Error()
	}
}
