package mailer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/euroirte/avanzamento/internal/config"
)

// emailRe is the syntactic gate for recipient addresses: local part, "@",
// domain containing a dot, no whitespace.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// machineIDRe matches the fixed 14-character identifier block some exports
// prepend to the technician name.
var machineIDRe = regexp.MustCompile(`^[A-Z0-9]{14}\s+`)

// Notification is one technician's rendered-progress payload for one month.
type Notification struct {
	Tecnico   string
	Email     string
	UpdatedAt time.Time
	Rate      float64 // €/h
	Hours     float64
}

// Status classifies the outcome of one recipient in a dispatch run.
type Status string

const (
	StatusSent     Status = "sent"
	StatusRejected Status = "rejected"
	StatusInvalid  Status = "invalid_address"
)

// Outcome is the per-recipient result of one dispatch attempt.
type Outcome struct {
	Tecnico string
	Email   string
	Status  Status
	Reason  string
}

// Report is the aggregate result of one complete dispatch run. A run is
// fire-once: it never retries, the caller re-invokes if needed.
type Report struct {
	Mode     Mode
	Outcomes []Outcome
	Sent     int
	Rejected int
	Invalid  int
}

// Dispatcher turns notifications into outbound messages.
type Dispatcher struct {
	cfg config.SMTPConfig
}

// NewDispatcher creates a Dispatcher with explicit mail settings.
func NewDispatcher(cfg config.SMTPConfig) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// ValidateAddress reports whether the recipient address passes the syntactic
// pattern. Invalid addresses are never attempted.
func ValidateAddress(addr string) bool {
	return emailRe.MatchString(addr)
}

// DisplayName strips the leading machine-generated identifier block from a
// technician name, if present.
func DisplayName(name string) string {
	return machineIDRe.ReplaceAllString(strings.TrimSpace(name), "")
}

// RenderBody produces the deterministic plain-text message body.
func RenderBody(n Notification) string {
	return fmt.Sprintf(
		"Ciao %s,\n\nil tuo avanzamento economico aggiornato al %s è di %.2f €/h e il totale delle ore lavorate è %.0f.\n",
		DisplayName(n.Tecnico),
		n.UpdatedAt.Format("02/01/2006"),
		n.Rate,
		n.Hours,
	)
}

// Run dispatches every notification over the transport, collecting one
// outcome per recipient. Individual failures never abort the batch; only the
// caller's failure to obtain a transport (connect/auth) prevents a run.
func (d *Dispatcher) Run(t Transport, notifications []Notification) Report {
	report := Report{Mode: t.Mode(), Outcomes: make([]Outcome, 0, len(notifications))}
	from := d.cfg.Sender()

	for _, n := range notifications {
		outcome := Outcome{Tecnico: DisplayName(n.Tecnico), Email: n.Email}

		if !ValidateAddress(n.Email) {
			outcome.Status = StatusInvalid
			report.Invalid++
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		msg := d.buildMessage(from, n)
		if err := t.Send(from, n.Email, msg); err != nil {
			outcome.Status = StatusRejected
			outcome.Reason = err.Error()
			report.Rejected++
			zap.L().Warn("recipient rejected",
				zap.String("tecnico", outcome.Tecnico),
				zap.String("email", n.Email),
				zap.Error(err),
			)
		} else {
			outcome.Status = StatusSent
			report.Sent++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	zap.L().Info("dispatch complete",
		zap.String("mode", string(report.Mode)),
		zap.Int("sent", report.Sent),
		zap.Int("rejected", report.Rejected),
		zap.Int("invalid", report.Invalid),
	)
	return report
}

// buildMessage assembles the RFC 5322 message bytes for one notification.
func (d *Dispatcher) buildMessage(from string, n Notification) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", n.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", d.cfg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.New().String(), d.cfg.Host)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(RenderBody(n))
	return b.Bytes()
}
