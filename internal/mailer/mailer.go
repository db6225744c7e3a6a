// Package mailer sends the transactional emails the registration flows
// produce. Sends are synchronous: a failed send surfaces as the enclosing
// handler's server error, there is no compensating action once the state
// write has committed.
package mailer

import (
	"context"
	"log"
	"sync"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Console logs outbound mail instead of delivering it. Used when no SendGrid
// key is configured.
type Console struct{}

var _ Mailer = Console{}

func (Console) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("mail to %s: %s", to, subject)
	return nil
}

// Recorder captures messages for tests.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
	Fail     error
}

type Message struct {
	To      string
	Subject string
	HTML    string
}

var _ Mailer = (*Recorder)(nil)

func (r *Recorder) Send(_ context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Messages = append(r.Messages, Message{To: to, Subject: subject, HTML: html})
	return nil
}

func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.Messages))
	copy(out, r.Messages)
	return out
}
