package h2keepalive

import (
	"errors"
	"time"
)

// config holds the resolved configuration for a Manager. Fields are
// unexported; callers configure a Manager exclusively through Option values
// resolved by New.
type config struct {
	idleDuration         time.Duration
	ackTimeout           time.Duration
	withoutActiveStreams bool
	logger               Logger
}

// Option configures a Manager at construction time.
type Option interface {
	apply(*config) error
}

// optionFunc implements Option via a closure.
type optionFunc struct {
	fn func(*config) error
}

func (o *optionFunc) apply(c *config) error { return o.fn(c) }

// WithIdleDuration sets the idleness threshold after which a keep-alive PING
// is emitted. A value <= 0 disables keep-alive probing entirely (§3).
func WithIdleDuration(d time.Duration) Option {
	return &optionFunc{fn: func(c *config) error {
		c.idleDuration = d
		return nil
	}}
}

// WithAckTimeout sets how long to wait for a PING-ACK. The same value also
// bounds the post-output-shutdown wait for the peer's reciprocal
// input-shutdown (§5). Must be positive.
func WithAckTimeout(d time.Duration) Option {
	return &optionFunc{fn: func(c *config) error {
		if d <= 0 {
			return errors.New("h2keepalive: ackTimeout must be positive")
		}
		c.ackTimeout = d
		return nil
	}}
}

// WithoutActiveStreams controls whether idle keep-alive probing continues
// while the active-stream count is zero. Passing false suppresses probes
// while idle with no streams (§3, §8 boundary behavior).
func WithoutActiveStreams(allow bool) Option {
	return &optionFunc{fn: func(c *config) error {
		c.withoutActiveStreams = allow
		return nil
	}}
}

// WithLogger installs a structured Logger. Passing nil is equivalent to
// NewNoOpLogger().
func WithLogger(l Logger) Option {
	return &optionFunc{fn: func(c *config) error {
		if l == nil {
			l = NewNoOpLogger()
		}
		c.logger = l
		return nil
	}}
}

// resolveConfig applies opts over sane defaults: keep-alive probing
// disabled (idleDuration == 0), a 20s ack timeout, probing suppressed with
// no active streams, and a no-op logger.
func resolveConfig(opts []Option) (*config, error) {
	c := &config{
		idleDuration:         0,
		ackTimeout:           20 * time.Second,
		withoutActiveStreams: false,
		logger:               NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
