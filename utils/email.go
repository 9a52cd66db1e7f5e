package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

// SendWelcomeEmail fires off the signup email in the background; failures are
// logged, never propagated.
func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to Thorbis!"
		body := fmt.Sprintf(`<h2>Welcome to Thorbis, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Discover and review local businesses</li>
<li>Claim and manage your own listings</li>
<li>Track how customers find you</li>
</ul>
<p>The Thorbis Team</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

// SendVerificationEmail sends the email-verification link in the background.
func SendVerificationEmail(email, token string) {
	go func() {
		frontend := os.Getenv("FRONTEND_URL")
		subject := "Verify your Thorbis email"
		body := fmt.Sprintf(`<h2>Verify your email</h2>
<p>Click the link below to verify your email address:</p>
<p><a href="%s/verify?token=%s">Verify email</a></p>`, frontend, token)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send verification email to %s: %v", email, err)
		}
	}()
}

// SendApprovalEmail notifies an owner that their business listing went live.
// Fire-and-forget: approval must never fail because SMTP is down.
func SendApprovalEmail(email, businessName string) {
	go func() {
		subject := "Your business listing is live"
		body := fmt.Sprintf(`<h2>Good news!</h2>
<p>Your listing <strong>%s</strong> has been approved and is now visible in the directory.</p>
<p>The Thorbis Team</p>`, businessName)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send approval email to %s: %v", email, err)
		}
	}()
}
