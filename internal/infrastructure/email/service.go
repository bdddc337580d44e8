package email

import "context"

// Sender delivers one templated email. A non-nil error means the message was not
// accepted for delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResultRecorder receives the outcome of each send attempt.
type ResultRecorder interface {
	EmailResult(template string, err error)
}

type instrumentedSender struct {
	next     Sender
	recorder ResultRecorder
}

// WithResults reports every Send outcome to recorder.
func WithResults(next Sender, recorder ResultRecorder) Sender {
	if recorder == nil {
		return next
	}
	return &instrumentedSender{next: next, recorder: recorder}
}

func (s *instrumentedSender) Send(ctx context.Context, msg Message) error {
	err := s.next.Send(ctx, msg)
	s.recorder.EmailResult(msg.Template, err)
	return err
}
