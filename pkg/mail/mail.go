// Package mail provides a fluent SMTP mailer.
//
//	mail.To(user.Email).
//	    Subject("Your order is confirmed").
//	    Body("<h1>Thanks!</h1>").
//	    Send()
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bloomkart/bloomkart/config"
)

// SMTP holds connection credentials (populated from env/config).
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func defaultSMTP() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@bloomkart.shop"),
		FromName: config.Get("MAIL_FROM_NAME", "Bloomkart"),
	}
}

// Message is a mail under construction.
type Message struct {
	to      []string
	subject string
	body    string
	smtp    SMTP
}

// To starts a new message to one or more recipients.
func To(recipients ...string) *Message {
	return &Message{to: recipients, smtp: defaultSMTP()}
}

// Subject sets the subject line.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	return m
}

// Send delivers the message via SMTP.
func (m *Message) Send() error {
	if len(m.to) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.smtp.FromName, m.smtp.From),
		fmt.Sprintf("To: %s", strings.Join(m.to, ", ")),
		fmt.Sprintf("Subject: %s", m.subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + m.body

	addr := m.smtp.Host + ":" + m.smtp.Port
	auth := smtp.PlainAuth("", m.smtp.Username, m.smtp.Password, m.smtp.Host)

	if err := smtp.SendMail(addr, auth, m.smtp.From, m.to, []byte(raw)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", strings.Join(m.to, ","), err)
	}
	return nil
}
