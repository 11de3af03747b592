package mailer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"notekeeper/cmd/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport fails the first failures calls, then succeeds.
type fakeTransport struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []*Message
}

func (f *fakeTransport) Send(_ context.Context, msg *Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("smtp: connection reset")
	}
	f.sent = append(f.sent, msg)
	return "<id-1@test>", nil
}

func newTestSender(t *testing.T, transport Transport, attempts int) *Sender {
	t.Helper()

	renderer, err := NewRenderer("http://localhost:3000/", "Notes")
	require.NoError(t, err)
	return NewSender(transport, renderer, RetryPolicy{MaxAttempts: attempts, Delay: time.Millisecond})
}

func TestRender(t *testing.T) {
	renderer, err := NewRenderer("https://notes.example.com/", "Notes")
	require.NoError(t, err)

	t.Run("verify", func(t *testing.T) {
		r, err := renderer.Render(entity.TokenVerify, "abc123")
		require.NoError(t, err)

		assert.Equal(t, "Verify Your Email Address", r.Subject)
		assert.Equal(t, "https://notes.example.com/verifyemail?token=abc123", r.Link)
		assert.Contains(t, r.HTML, "https://notes.example.com/verifyemail?token=abc123")
		assert.Contains(t, r.HTML, "Welcome to Notes!")
		assert.Contains(t, r.HTML, "1 hour")
		assert.True(t, strings.HasPrefix(r.Text, "Verify your email"))
		assert.Contains(t, r.Text, r.Link)
	})

	t.Run("reset", func(t *testing.T) {
		r, err := renderer.Render(entity.TokenReset, "abc123")
		require.NoError(t, err)

		assert.Equal(t, "Reset Your Password", r.Subject)
		assert.Equal(t, "https://notes.example.com/reset-password?token=abc123", r.Link)
		assert.Contains(t, r.HTML, "Reset Password")
		assert.Contains(t, r.Text, "Reset your password")
	})

	t.Run("unknown purpose", func(t *testing.T) {
		_, err := renderer.Render("DELETE", "abc")
		assert.ErrorIs(t, err, ErrUnknownPurpose)
	})
}

func TestRetryPolicySchedule(t *testing.T) {
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, DefaultRetryPolicy().Schedule())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
		RetryPolicy{MaxAttempts: 4, Delay: time.Second}.Schedule())
	assert.Empty(t, RetryPolicy{}.Schedule())
	assert.Equal(t, DefaultRetryPolicy(), NewSender(&fakeTransport{}, nil, RetryPolicy{}).policy)
}

func TestSendAccountEmail(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		transport := &fakeTransport{}
		sender := newTestSender(t, transport, 3)

		res, err := sender.SendAccountEmail(context.Background(), "alice@example.com", entity.TokenVerify, "tok")
		require.NoError(t, err)

		assert.Equal(t, 1, transport.calls)
		assert.Equal(t, 1, res.Attempts)
		assert.Equal(t, "<id-1@test>", res.MessageID)
		require.Len(t, transport.sent, 1)
		assert.Equal(t, "alice@example.com", transport.sent[0].To)
		assert.Contains(t, transport.sent[0].HTML, "verifyemail?token=tok")
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		transport := &fakeTransport{failures: 2}
		sender := newTestSender(t, transport, 3)

		res, err := sender.SendAccountEmail(context.Background(), "alice@example.com", entity.TokenReset, "tok")
		require.NoError(t, err)

		assert.Equal(t, 3, transport.calls)
		assert.Equal(t, 3, res.Attempts)
		assert.Len(t, transport.sent, 1)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		transport := &fakeTransport{failures: 10}
		sender := newTestSender(t, transport, 3)

		_, err := sender.SendAccountEmail(context.Background(), "alice@example.com", entity.TokenReset, "tok")
		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.Equal(t, 3, transport.calls)
		assert.Empty(t, transport.sent)
	})

	t.Run("unknown purpose never reaches the transport", func(t *testing.T) {
		transport := &fakeTransport{}
		sender := newTestSender(t, transport, 3)

		_, err := sender.SendAccountEmail(context.Background(), "alice@example.com", "OTHER", "tok")
		assert.ErrorIs(t, err, ErrUnknownPurpose)
		assert.Zero(t, transport.calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		transport := &fakeTransport{failures: 10}
		renderer, err := NewRenderer("http://localhost", "Notes")
		require.NoError(t, err)
		sender := NewSender(transport, renderer, RetryPolicy{MaxAttempts: 5, Delay: time.Hour})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = sender.SendAccountEmail(ctx, "alice@example.com", entity.TokenVerify, "tok")
		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, transport.calls)
	})
}

func TestLogTransport(t *testing.T) {
	id, err := LogTransport{}.Send(context.Background(), &Message{To: "a@b.c", Subject: "s", Text: "t"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, "@localhost>"))
}
