// Package lifecycle runs panel requests and tracks their state:
// idle, busy, then success or a typed failure.
//
// A Tracker owns at most one in-flight request. Every Start hands out a new
// sequence number; results carrying an older number are stale and dropped.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/naveenspark/tutor/pkg/client"
	"github.com/naveenspark/tutor/pkg/domain"
)

// Phase is where a request stands.
type Phase int

const (
	Idle Phase = iota
	Busy
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindValidation: input rejected locally, nothing was sent.
	KindValidation
	// KindAuth: the server rejected the token (HTTP 401).
	KindAuth
	// KindServer: any other non-2xx reply.
	KindServer
	// KindConnectivity: no reply arrived.
	KindConnectivity
	// KindMalformed: a 2xx reply without a usable result.
	KindMalformed
	// KindCanceled: the caller gave up on the request.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindConnectivity:
		return "connectivity"
	case KindMalformed:
		return "malformed"
	case KindCanceled:
		return "canceled"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CanceledText is shown in place of a result after a cancel.
const CanceledText = "Request cancelled."

// ErrEmptyInput is returned for blank submissions.
var ErrEmptyInput = errors.New("empty input")

// Submitter is the part of the API client a panel needs.
type Submitter interface {
	Submit(ctx context.Context, p domain.Panel, value string) (string, bool, error)
}

var _ Submitter = (*client.Client)(nil)

// Outcome is a finished request. Text is always renderable.
type Outcome struct {
	Seq   uint64
	Phase Phase
	Kind  ErrorKind
	Text  string
	Err   error
	At    time.Time
}

// OK reports whether the server produced a real result.
func (o Outcome) OK() bool {
	return o.Phase == Succeeded
}

// Blank reports whether value is empty after trimming, along with the
// validation Outcome to show for it.
func Blank(p domain.Panel, value string) (Outcome, bool) {
	if strings.TrimSpace(value) != "" {
		return Outcome{}, false
	}
	return Outcome{
		Phase: Failed,
		Kind:  KindValidation,
		Text:  fmt.Sprintf("Please enter a %s.", p.RequestField),
		Err:   fmt.Errorf("lifecycle %s: %w", p.Endpoint, ErrEmptyInput),
		At:    time.Now(),
	}, true
}

// Invoke submits value to the panel endpoint and maps the reply onto an
// Outcome. Blank input fails validation without a request.
func Invoke(ctx context.Context, s Submitter, p domain.Panel, value string) Outcome {
	if o, blank := Blank(p, value); blank {
		return o
	}

	text, found, err := s.Submit(ctx, p, value)
	if err == nil {
		if !found {
			return Outcome{Phase: Failed, Kind: KindMalformed, Text: p.Fallback, At: time.Now()}
		}
		return Outcome{Phase: Succeeded, Text: text, At: time.Now()}
	}

	o := Outcome{Phase: Failed, Err: err, At: time.Now()}
	switch {
	case client.IsCanceled(err) || errors.Is(ctx.Err(), context.Canceled):
		o.Kind, o.Text = KindCanceled, CanceledText
	case client.IsMalformed(err):
		o.Kind, o.Text = KindMalformed, p.Fallback
	case client.IsStatus(err, http.StatusUnauthorized):
		o.Kind, o.Text = KindAuth, orFallback(client.ServerMessage(err), p.Fallback)
	case isHTTP(err):
		o.Kind, o.Text = KindServer, orFallback(client.ServerMessage(err), p.Fallback)
	default:
		// Transport errors and anything else that produced no reply.
		o.Kind, o.Text = KindConnectivity, domain.ConnectivityError
	}
	return o
}

func isHTTP(err error) bool {
	var he *client.HTTPError
	return errors.As(err, &he)
}

func orFallback(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
