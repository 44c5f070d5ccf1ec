// Package mailer dispatches per-technician progress notifications over SMTP
// with an SSL-then-STARTTLS transport fallback and per-recipient outcome
// reporting.
package mailer

import (
	"crypto/tls"
	"net"
	"net/smtp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/euroirte/avanzamento/internal/config"
)

// Mode identifies which transport negotiation succeeded for a dispatch run.
type Mode string

const (
	// ModeSSL465 is implicit TLS on port 465, tried first.
	ModeSSL465 Mode = "ssl465"
	// ModeSTARTTLS587 is a plaintext handshake on port 587 upgraded via
	// STARTTLS, the fallback.
	ModeSTARTTLS587 Mode = "starttls587"
)

// Transport is an authenticated mail connection scoped to one dispatch run.
type Transport interface {
	Mode() Mode
	// Send submits one message. An error is a server-side rejection of this
	// specific message, not a transport fault; the connection stays usable.
	Send(from, to string, msg []byte) error
	Close() error
}

// ErrAuth marks an authentication rejection, which is fatal to the whole
// run, unlike per-recipient failures.
var ErrAuth = eris.New("smtp authentication rejected")

type smtpTransport struct {
	client *smtp.Client
	mode   Mode
}

// Dial connects to the configured SMTP host, trying implicit TLS on 465
// first and falling back to STARTTLS on 587, then authenticates. Exactly one
// mode is used for the run; the caller must Close the transport.
func Dial(cfg config.SMTPConfig) (Transport, error) {
	client, mode, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	auth := smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		_ = client.Quit()
		return nil, eris.Wrap(ErrAuth, err.Error())
	}

	zap.L().Info("smtp connected",
		zap.String("host", cfg.Host),
		zap.String("mode", string(mode)),
	)
	return &smtpTransport{client: client, mode: mode}, nil
}

func connect(cfg config.SMTPConfig) (*smtp.Client, Mode, error) {
	dialer := &net.Dialer{Timeout: cfg.Timeout()}
	tlsCfg := &tls.Config{ServerName: cfg.Host}

	conn, sslErr := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(cfg.Host, "465"), tlsCfg)
	if sslErr == nil {
		client, err := smtp.NewClient(conn, cfg.Host)
		if err == nil {
			return client, ModeSSL465, nil
		}
		_ = conn.Close()
		sslErr = err
	}

	zap.L().Debug("smtp ssl465 failed, falling back to starttls587", zap.Error(sslErr))

	plain, err := dialer.Dial("tcp", net.JoinHostPort(cfg.Host, "587"))
	if err != nil {
		return nil, "", eris.Wrapf(err, "smtp: connect to %s (465 and 587 both failed)", cfg.Host)
	}
	client, err := smtp.NewClient(plain, cfg.Host)
	if err != nil {
		_ = plain.Close()
		return nil, "", eris.Wrap(err, "smtp: handshake on 587")
	}
	if err := client.StartTLS(tlsCfg); err != nil {
		_ = client.Quit()
		return nil, "", eris.Wrap(err, "smtp: starttls on 587")
	}
	return client, ModeSTARTTLS587, nil
}

func (t *smtpTransport) Mode() Mode {
	return t.mode
}

func (t *smtpTransport) Send(from, to string, msg []byte) error {
	if err := t.transact(from, to, msg); err != nil {
		// Reset so the next recipient starts a clean transaction.
		_ = t.client.Reset()
		return err
	}
	return nil
}

func (t *smtpTransport) transact(from, to string, msg []byte) error {
	if err := t.client.Mail(from); err != nil {
		return eris.Wrap(err, "mail from")
	}
	if err := t.client.Rcpt(to); err != nil {
		return eris.Wrap(err, "rcpt to")
	}
	w, err := t.client.Data()
	if err != nil {
		return eris.Wrap(err, "data")
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return eris.Wrap(err, "write body")
	}
	if err := w.Close(); err != nil {
		return eris.Wrap(err, "close body")
	}
	return nil
}

func (t *smtpTransport) Close() error {
	return t.client.Quit()
}
