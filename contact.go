package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/termfolio/internal/config"
)

var errSMTPNotConfigured = errors.New("SMTP credentials not configured")

type contactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type mailer interface {
	Send(msg contactMessage) error
}

type smtpMailer struct {
	cfg config.SMTP
}

func (m smtpMailer) Send(msg contactMessage) error {
	if !m.cfg.Configured() {
		return errSMTPNotConfigured
	}
	to := m.cfg.To
	if to == "" {
		to = m.cfg.User
	}

	subject := "Portfolio Contact: " + msg.Name
	if msg.Subject != "" {
		subject += " - " + msg.Subject
	}
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio terminal
`, msg.Name, msg.Email, msg.Message)

	raw := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + m.cfg.User + "\r\n" +
		"Reply-To: " + msg.Email + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{to}, raw); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

// Header injection guard for the fields that end up in mail headers
func singleLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

func (s *server) contact(c *gin.Context) {
	msg := contactMessage{
		Name:    singleLine(c.PostForm("fullName")),
		Email:   singleLine(c.PostForm("email")),
		Subject: singleLine(c.PostForm("subject")),
		Message: strings.TrimSpace(c.PostForm("message")),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Name, email and message are required.",
		})
		return
	}

	if err := s.mailer.Send(msg); err != nil {
		log.Printf("Error sending email: %v", err)
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}

	log.Printf("Email sent successfully from %s (%s)", msg.Name, msg.Email)
	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}
