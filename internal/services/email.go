package services

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/config"
)

// EmailService delivers transactional mail over SMTP. When the SMTP config is
// absent it logs and no-ops, so local development never needs a mail server —
// but skipped deliveries stay visible for invites whose only carrier is email.
type EmailService struct {
	cfg config.SMTPConfig
	log *zap.Logger
}

func NewEmailService(cfg config.SMTPConfig, log *zap.Logger) *EmailService {
	return &EmailService{cfg: cfg, log: log}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		s.log.Warn("smtp not configured, skipping email",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendWorkspaceInvite(to, workspaceName, inviterName, acceptURL string) error {
	subject := fmt.Sprintf("You've been invited to join %s", workspaceName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Workspace Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to join the workspace <strong>%s</strong>.</p>
			<p><a href="%s">Click here to view and respond to this invitation</a></p>
			<p>This invitation expires in 7 days.</p>
		</body>
		</html>
	`, inviterName, workspaceName, acceptURL)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendClientInvite(to, projectName, inviterName, acceptURL string) error {
	subject := fmt.Sprintf("You've been given access to %s", projectName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Project Access Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to follow the project <strong>%s</strong>.</p>
			<p><a href="%s">Click here to set up your account</a></p>
			<p>This invitation expires in 7 days.</p>
		</body>
		</html>
	`, inviterName, projectName, acceptURL)

	return s.Send(to, subject, body)
}
