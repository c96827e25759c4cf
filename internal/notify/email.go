package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/mbellini/effwatch/internal/domain"
)

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host     string `yaml:"smtp_host"`
	Port     int    `yaml:"smtp_port"`
	User     string `yaml:"smtp_user"`
	Password string `yaml:"smtp_password" json:"-"`
	To       string `yaml:"to_address"`
	UseSSL   bool   `yaml:"use_ssl"`
}

// EmailNotifier sends the report as a plain-text email. The markdown
// body is sent as-is.
type EmailNotifier struct {
	cfg EmailConfig
}

// NewEmailNotifier creates an SMTP notifier.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Send(ctx context.Context, title, content string) error {
	msg := n.message(title, content)
	addr := net.JoinHostPort(n.cfg.Host, fmt.Sprint(n.cfg.Port))
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)

	var err error
	if n.cfg.UseSSL {
		err = n.sendTLS(addr, auth, msg)
	} else {
		err = smtp.SendMail(addr, auth, n.cfg.User, []string{n.cfg.To}, msg)
	}
	if err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}
	return nil
}

// sendTLS speaks SMTP over an implicit-TLS connection (port 465), which
// net/smtp.SendMail does not cover.
func (n *EmailNotifier) sendTLS(addr string, auth smtp.Auth, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.Host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(n.cfg.User); err != nil {
		return err
	}
	if err := client.Rcpt(n.cfg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (n *EmailNotifier) message(title, content string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.User)
	fmt.Fprintf(&b, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", title)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(content)
	return []byte(b.String())
}
