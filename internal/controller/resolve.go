package controller

import (
	"context"
	"errors"
	"net"

	"github.com/rmacdonaldsmith/planflow-go/pkg/httpclient"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// User-facing messages per error kind.
const (
	msgTimeout = "The request took too long. Please try again."
	msgNetwork = "We couldn't reach the server. Check your connection and try again."
	msgServer  = "Something went wrong on our side. Please try again later."
	msgUnknown = "Something unexpected happened. Please try again."
)

// resolveError maps any failure to exactly one ResolvedError kind.
func resolveError(err error) plan.ResolvedError {
	var callErr *httpclient.Error
	if errors.As(err, &callErr) {
		switch callErr.Kind {
		case httpclient.FailureTimeout:
			return plan.ResolvedError{Kind: plan.KindTimeout, Message: msgTimeout, Raw: err}
		case httpclient.FailureNetwork:
			return plan.ResolvedError{Kind: plan.KindNetwork, Message: msgNetwork, Raw: err}
		case httpclient.FailureStatus:
			msg := msgServer
			if callErr.Message != "" {
				msg = msgServer + " (" + callErr.Message + ")"
			}
			return plan.ResolvedError{Kind: plan.KindServer, Message: msg, Status: callErr.StatusCode, Raw: err}
		default:
			return plan.ResolvedError{Kind: plan.KindUnknown, Message: msgUnknown, Raw: err}
		}
	}

	var netErr net.Error
	switch {
	case err == nil:
		return plan.ResolvedError{Kind: plan.KindUnknown, Message: msgUnknown}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return plan.ResolvedError{Kind: plan.KindTimeout, Message: msgTimeout, Raw: err}
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return plan.ResolvedError{Kind: plan.KindTimeout, Message: msgTimeout, Raw: err}
		}
		return plan.ResolvedError{Kind: plan.KindNetwork, Message: msgNetwork, Raw: err}
	default:
		return plan.ResolvedError{Kind: plan.KindUnknown, Message: msgUnknown, Raw: err}
	}
}
