package mail

import (
	"fmt"
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends templated product emails over SMTP. All sends are best-effort
// from the caller's point of view; nothing here retries.
type Mailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.SMTPFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPassword)
	return d.DialAndSend(msg)
}

// SendPlanActivated notifies a user that their pro plan started or renewed.
func (m *Mailer) SendPlanActivated(to string, renewed bool, expiresAt time.Time) error {
	subject := "Your ChatLens Pro plan is active"
	if renewed {
		subject = "Your ChatLens Pro plan has been renewed"
	}
	return m.send(to, subject, planActivatedBody(renewed, expiresAt))
}

// SendRenewalReminder notifies a pro user that their plan is about to expire.
func (m *Mailer) SendRenewalReminder(to string, expiresAt time.Time) error {
	return m.send(to, "Your ChatLens Pro plan expires soon", renewalReminderBody(expiresAt))
}
