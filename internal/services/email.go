package services

import (
	"context"
	"fmt"
	"net/smtp"

	"forumtalks/internal/config"
	"forumtalks/internal/logger"

	"go.uber.org/zap"
)

type EmailService struct {
	auth smtp.Auth
	from string
	host string
	port string
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth: auth,
		from: cfg.SMTPUser,
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
	}
}

func (s *EmailService) Send(to []string, subject, body string) error {
	msg := []byte("Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, to, msg)
}

// SendPasswordReset отправляется синхронно: по результату решается,
// оставлять ли токен сброса в базе.
func (s *EmailService) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	body := "Скопируйте ссылку в адресную строку браузера и нажмите Enter:\n\n" + resetLink
	return s.Send([]string{to}, "Восстановление пароля", body)
}

// QueueVerification ставит письмо подтверждения в очередь — регистрация
// не ждёт SMTP.
func (s *EmailService) QueueVerification(to, name, verifyLink string) {
	body := fmt.Sprintf("Здравствуйте, %s!\n\nДля подтверждения почты перейдите по ссылке:\n\n%s", name, verifyLink)
	EmailQueue <- EmailJob{
		To:      []string{to},
		Subject: "Подтверждение регистрации",
		Body:    body,
	}
}

type EmailJob struct {
	To      []string
	Subject string
	Body    string
}

var EmailQueue = make(chan EmailJob, 100) // очередь на 100 писем

func StartEmailWorker(emailService *EmailService) {
	go func() {
		for job := range EmailQueue {
			if err := emailService.Send(job.To, job.Subject, job.Body); err != nil {
				logger.Log.Error("Не удалось отправить письмо", zap.Error(err))
			}
		}
	}()
}
