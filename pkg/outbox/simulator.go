package outbox

import (
	"bytes"
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/mail"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	"github.com/Veenbreeze/aru-connect-mail/pkg/metric"
	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/Veenbreeze/aru-connect-mail/pkg/webui/sanitize"
	"github.com/google/uuid"
	"github.com/jhillyerd/enmime/v2"
	"github.com/rs/zerolog/log"
)

var (
	expOutbox     = expvar.NewMap("outbox")
	sentTotal     = metric.NewCounter(expOutbox, "Sent")
	deniedTotal   = metric.NewCounter(expOutbox, "Denied")
	audienceTotal = metric.NewCounter(expOutbox, "Recipients")
)

// DeniedError is returned when an extension refuses a message.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "message denied: " + e.Reason
}

// Simulator stands in for a mail transport.
type Simulator struct {
	ComposeDelay time.Duration
	BulkDelay    time.Duration
	Addressing   *policy.Addressing
	Outbox       *Outbox
	Host         *extension.Host
}

// SendDraft renders and sends a compose draft on behalf of from.  The draft must already be
// validated; its address fields are parsed here.
func (s *Simulator) SendDraft(ctx context.Context, from mail.Address, replyTo string,
	d compose.Draft) (*Message, error) {
	to, err := s.Addressing.ParseList(d.To)
	if err != nil {
		return nil, &compose.ValidationError{Fields: []string{"to"}, Err: err}
	}
	cc, err := s.optionalList(d.CC, "cc")
	if err != nil {
		return nil, err
	}
	bcc, err := s.optionalList(d.BCC, "bcc")
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Kind:       KindCompose,
		From:       from,
		To:         to,
		CC:         cc,
		BCC:        bcc,
		Subject:    d.Subject,
		Recipients: len(to) + len(cc) + len(bcc),
		ReplyTo:    replyTo,
	}
	builder := enmime.Builder().
		Text([]byte(d.Body)).
		CCAddrs(cc).
		BCCAddrs(bcc)
	if replyTo != "" {
		builder = builder.Header("X-CampusMail-Reply-To-ID", replyTo)
	}

	return msg, s.send(msg, builder, s.ComposeDelay)
}

func (s *Simulator) optionalList(list, field string) ([]mail.Address, error) {
	addrs, err := s.Addressing.ParseList(list)
	if errors.Is(err, policy.ErrEmptyList) {
		return nil, nil
	}
	if err != nil {
		return nil, &compose.ValidationError{Fields: []string{field}, Err: err}
	}
	return addrs, nil
}

// SendBulk renders and sends a bulk message.  Each selected segment is addressed through its
// list address on the campus domain.
func (s *Simulator) SendBulk(ctx context.Context, from mail.Address, m bulk.Message) (
	*Message, error) {
	segments := append(append([]bulk.Segment{}, m.Groups...), m.Departments...)
	to := make([]mail.Address, 0, len(segments))
	for _, seg := range segments {
		to = append(to, mail.Address{
			Name:    seg.Name,
			Address: seg.ID + "@lists." + s.Addressing.Domain,
		})
	}

	html, err := sanitize.HTML(m.Body)
	if err != nil {
		return nil, fmt.Errorf("sanitize bulk body: %w", err)
	}
	msg := &Message{
		Kind:       KindBulk,
		From:       from,
		To:         to,
		Subject:    m.Subject,
		Recipients: m.Recipients,
	}
	builder := enmime.Builder().
		Text([]byte(sanitize.Text(m.Body))).
		HTML([]byte(html)).
		Header("Precedence", "bulk")

	return msg, s.send(msg, builder, s.BulkDelay)
}

// send completes msg, consults extensions, waits out the simulated latency, and records it.  Once
// past the extensions the send always completes.
func (s *Simulator) send(msg *Message, builder enmime.MailBuilder, delay time.Duration) error {
	msg.ID = uuid.NewString()
	msg.Mailbox = msg.From.Address
	msg.Date = time.Now()
	logger := log.With().Str("module", "outbox").Str("kind", msg.Kind).Str("id", msg.ID).
		Str("mailbox", msg.Mailbox).Logger()

	part, err := builder.
		From(msg.From.Name, msg.From.Address).
		ToAddrs(msg.To).
		Subject(msg.Subject).
		Date(msg.Date).
		Header("Message-ID", "<"+msg.ID+"@"+s.Addressing.Domain+">").
		Build()
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := part.Encode(buf); err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	msg.Source = buf.Bytes()
	msg.Size = int64(buf.Len())

	if s.Host != nil {
		meta := outboundEvent(msg)
		if verdict := s.Host.Events.BeforeMessageSent.Emit(&meta); verdict != nil &&
			verdict.Action == event.ActionDeny {
			deniedTotal.Add(1)
			logger.Info().Str("reason", verdict.Reason).Msg("Message denied by extension")
			return &DeniedError{Reason: verdict.Reason}
		}
	}

	time.Sleep(delay)

	s.Outbox.Add(msg)
	sentTotal.Add(1)
	audienceTotal.Add(int64(msg.Recipients))
	logger.Info().Int("recipients", msg.Recipients).Int64("size", msg.Size).Msg("Message sent")

	if s.Host != nil {
		meta := outboundEvent(msg)
		s.Host.Events.AfterMessageSent.Emit(&meta)
	}
	return nil
}

func outboundEvent(msg *Message) event.OutboundMessage {
	return event.OutboundMessage{
		ID:         msg.ID,
		Kind:       msg.Kind,
		Mailbox:    msg.Mailbox,
		From:       msg.From,
		To:         append([]mail.Address(nil), msg.To...),
		CC:         append([]mail.Address(nil), msg.CC...),
		BCC:        append([]mail.Address(nil), msg.BCC...),
		Subject:    msg.Subject,
		Recipients: msg.Recipients,
		Size:       msg.Size,
	}
}
