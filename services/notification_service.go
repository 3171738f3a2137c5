// services/notification_service.go
package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/brandlens/brandlens-workflows/internal/config"
)

type notificationService struct {
	cfg config.SMTPConfig
}

// NewNotificationService creates the admin alert side-channel. Alerts go out
// over plain SMTP; when no admin recipient is configured the service logs
// and drops the alert instead of failing the calling task.
func NewNotificationService(cfg config.SMTPConfig) NotificationService {
	return &notificationService{cfg: cfg}
}

func (s *notificationService) SendModelFailureAlert(modelName string, consecutiveFailures int, lastErr string) error {
	if s.cfg.AdminTo == "" {
		fmt.Printf("[NotificationService] ⚠️ No admin alert email configured - dropping alert for model %s\n", modelName)
		return nil
	}

	subject := fmt.Sprintf("Model %s disabled after %d consecutive health-check failures", modelName, consecutiveFailures)
	body := fmt.Sprintf(
		"The AI model %q was automatically disabled at %s after failing %d consecutive health checks.\n\nLast error:\n%s\n\nRe-enable it from the admin panel once the provider is healthy again.\n",
		modelName, time.Now().Format(time.RFC3339), consecutiveFailures, lastErr,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.AdminTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send model failure alert: %w", err)
	}

	fmt.Printf("[NotificationService] ✅ Sent failure alert for model %s to %s\n", modelName, s.cfg.AdminTo)
	return nil
}
