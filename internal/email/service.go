package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/vitaltrack/vitaltrack-api/internal/config"
)

// Service sends transactional mail. Every send is best effort; callers log
// failures and never fail the request over them.
type Service interface {
	SendWelcome(to, name string) error
	SendRiskAlert(to, patientName string, highRiskProba float64) error
}

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

func NewService(cfg config.SMTPConfig) Service {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &smtpService{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		timeout: timeout,
	}
}

func (s *smtpService) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour VitalTrack account is ready. You can now add patient profiles and start recording health data.\n",
		name,
	)
	return s.send(to, "Welcome to VitalTrack", body)
}

func (s *smtpService) SendRiskAlert(to, patientName string, highRiskProba float64) error {
	body := fmt.Sprintf(
		"A recent health reading for %s indicates an elevated cardiovascular risk (%.0f%%).\n\nThis is an advisory estimate, not a diagnosis. Please consult a medical professional.\n",
		patientName, highRiskProba*100,
	)
	return s.send(to, "VitalTrack health alert", body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := await(func() error { return s.dialer.DialAndSend(m) }, s.timeout); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// await bounds a blocking SMTP exchange; the dialer carries no deadline of
// its own and mail must never stall the request path.
func await(send func() error, timeout time.Duration) error {
	errc := make(chan error, 1)
	go func() { errc <- send() }()
	select {
	case err := <-errc:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("smtp send timed out after %s", timeout)
	}
}
