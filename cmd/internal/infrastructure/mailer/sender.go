package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notekeeper/cmd/internal/domain/entity"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-retry"
)

var ErrDeliveryFailed = errors.New("email delivery failed")

// RetryPolicy bounds delivery attempts. The wait after the n-th failed
// attempt is Delay*n.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Schedule lists the waits between attempts.
func (p RetryPolicy) Schedule() []time.Duration {
	waits := make([]time.Duration, 0, p.attempts()-1)
	for n := 1; n < p.attempts(); n++ {
		waits = append(waits, p.Delay*time.Duration(n))
	}
	return waits
}

func (p RetryPolicy) backoff() retry.Backoff {
	var n time.Duration
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return p.Delay * n, false
	})
	return retry.WithMaxRetries(uint64(p.attempts()-1), linear)
}

type SendResult struct {
	MessageID string `json:"messageId"`
	Attempts  int    `json:"attempts"`
	Message   string `json:"message"`
}

type Sender struct {
	transport Transport
	renderer  *Renderer
	policy    RetryPolicy
}

// NewSender uses DefaultRetryPolicy when policy is the zero value.
func NewSender(transport Transport, renderer *Renderer, policy RetryPolicy) *Sender {
	if policy == (RetryPolicy{}) {
		policy = DefaultRetryPolicy()
	}
	return &Sender{
		transport: transport,
		renderer:  renderer,
		policy:    policy,
	}
}

// SendAccountEmail renders the template for purpose around token and
// delivers it to address, retrying transport failures per the policy.
func (s *Sender) SendAccountEmail(ctx context.Context, address string, purpose entity.TokenPurpose, token string) (*SendResult, error) {
	if address == "" || token == "" {
		return nil, errors.New("send account email: missing address or token")
	}

	rendered, err := s.renderer.Render(purpose, token)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		To:      address,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	}

	var (
		attempts  int
		messageID string
	)
	err = retry.Do(ctx, s.policy.backoff(), func(ctx context.Context) error {
		attempts++
		id, serr := s.transport.Send(ctx, msg)
		if serr != nil {
			log.Warnf("%s email attempt %d/%d to %s failed: %v", purpose, attempts, s.policy.attempts(), address, serr)
			return retry.RetryableError(serr)
		}
		messageID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempt(s): %w", ErrDeliveryFailed, attempts, err)
	}

	log.Infof("%s email sent to %s (%s)", purpose, address, messageID)
	return &SendResult{
		MessageID: messageID,
		Attempts:  attempts,
		Message:   fmt.Sprintf("%s email sent successfully", purpose),
	}, nil
}
