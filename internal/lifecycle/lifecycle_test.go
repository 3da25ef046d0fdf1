package lifecycle

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/tutor/internal/tutortest"
	"github.com/naveenspark/tutor/pkg/client"
	"github.com/naveenspark/tutor/pkg/domain"
)

func setup(t *testing.T) (*tutortest.Server, *client.Client) {
	t.Helper()
	srv := tutortest.New(t)
	tok := srv.IssueToken("alice")
	return srv, client.New(srv.URL, client.StaticToken(tok))
}

func TestInvoke_Success(t *testing.T) {
	srv, c := setup(t)

	for _, p := range domain.Panels {
		t.Run(p.Title, func(t *testing.T) {
			o := Invoke(context.Background(), c, p, "What is a div?")
			assert.Equal(t, Succeeded, o.Phase)
			assert.Equal(t, KindNone, o.Kind)
			assert.Equal(t, tutortest.Reply(p, "What is a div?"), o.Text)
			assert.NoError(t, o.Err)
			assert.Equal(t, map[string]string{p.RequestField: "What is a div?"}, srv.LastBody(p.Endpoint))
		})
	}
}

func TestInvoke_BlankInputSendsNothing(t *testing.T) {
	srv, c := setup(t)
	p := domain.PanelFor(domain.PanelAsk)

	o := Invoke(context.Background(), c, p, "   \n")
	assert.Equal(t, Failed, o.Phase)
	assert.Equal(t, KindValidation, o.Kind)
	assert.ErrorIs(t, o.Err, ErrEmptyInput)
	assert.Zero(t, srv.Calls(p.Endpoint))
}

func TestInvoke_Failures(t *testing.T) {
	p := domain.PanelFor(domain.PanelQuiz)
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind ErrorKind
		wantText string
	}{
		{"missing field", tutortest.JSON(http.StatusOK, map[string]string{}), KindMalformed, "No quiz generated."},
		{"empty field", tutortest.JSON(http.StatusOK, map[string]string{"quiz": ""}), KindMalformed, "No quiz generated."},
		{"server detail", tutortest.JSON(http.StatusInternalServerError, map[string]string{"detail": "model overloaded"}), KindServer, "model overloaded"},
		{"server bare", tutortest.JSON(http.StatusBadGateway, map[string]string{}), KindServer, "No quiz generated."},
		{"unauthorized", tutortest.JSON(http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"}), KindAuth, "Not authenticated"},
		{"html body", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("<html>oops</html>"))
		}, KindMalformed, "No quiz generated."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := setup(t)
			srv.Override(p.Endpoint, tt.handler)

			o := Invoke(context.Background(), c, p, "HTML basics")
			assert.Equal(t, Failed, o.Phase)
			assert.Equal(t, tt.wantKind, o.Kind)
			assert.Equal(t, tt.wantText, o.Text)
		})
	}
}

func TestInvoke_Connectivity(t *testing.T) {
	srv, c := setup(t)
	srv.Close()

	o := Invoke(context.Background(), c, domain.PanelFor(domain.PanelReview), "<p>hi</p>")
	assert.Equal(t, KindConnectivity, o.Kind)
	assert.Equal(t, domain.ConnectivityError, o.Text)
}

func TestInvoke_Canceled(t *testing.T) {
	srv, c := setup(t)
	p := domain.PanelFor(domain.PanelAsk)
	release := make(chan struct{})
	srv.Override(p.Endpoint, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	o := Invoke(ctx, c, p, "slow question")
	assert.Equal(t, KindCanceled, o.Kind)
	assert.Equal(t, CanceledText, o.Text)
}

func TestTracker_StaleResultIsDropped(t *testing.T) {
	var tr Tracker

	_, first, ok := tr.Start(context.Background())
	require.True(t, ok)
	require.True(t, tr.Cancel())
	assert.Equal(t, Idle, tr.Phase())

	_, second, ok := tr.Start(context.Background())
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	assert.False(t, tr.Finish(Outcome{Seq: first, Phase: Succeeded, Text: "late"}))
	assert.True(t, tr.Busy())

	assert.True(t, tr.Finish(Outcome{Seq: second, Phase: Succeeded, Text: "fresh"}))
	assert.Equal(t, Succeeded, tr.Phase())
	assert.Equal(t, "fresh", tr.Last().Text)
}

func TestTracker_SubmitIgnoredWhileBusy(t *testing.T) {
	var tr Tracker
	_, _, ok := tr.Start(context.Background())
	require.True(t, ok)

	_, _, ok = tr.Start(context.Background())
	assert.False(t, ok)
	assert.False(t, tr.Reject(Outcome{Phase: Failed, Kind: KindValidation}))
}

func TestTracker_CancelAbortsContext(t *testing.T) {
	var tr Tracker
	ctx, _, _ := tr.Start(context.Background())

	tr.Cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, KindCanceled, tr.Last().Kind)
	assert.False(t, tr.Cancel(), "nothing left to cancel")
}

func TestTracker_ParentCancelPropagates(t *testing.T) {
	var tr Tracker
	parent, cancel := context.WithCancel(context.Background())
	ctx, _, _ := tr.Start(parent)

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestTracker_Reset(t *testing.T) {
	var tr Tracker
	_, seq, _ := tr.Start(context.Background())
	tr.Finish(Outcome{Seq: seq, Phase: Failed, Kind: KindServer, Text: "x"})

	tr.Reset()
	assert.Equal(t, Idle, tr.Phase())
	assert.Equal(t, Outcome{}, tr.Last())
}

func TestPhaseAndKindStrings(t *testing.T) {
	assert.Equal(t, "busy", Busy.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "connectivity", KindConnectivity.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}
