package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"queridodiario/internal/models"
	"queridodiario/internal/validation"
)

// EmailSender is the part of the SES client used to send mail
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     EmailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. Without a sender address the service
// is disabled and sends nothing.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{appBaseURL: appBaseURL, logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("Email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, logger), nil
}

func newEmailService(client EmailSender, fromEmail, fromName, appBaseURL string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// PanelURL returns the shareable panel link of a diary. The token travels in the
// URL fragment so it never reaches server logs.
func (s *EmailService) PanelURL(token string) string {
	return fmt.Sprintf("%s/painel#token=%s", strings.TrimRight(s.appBaseURL, "/"), token)
}

// SendPanelLink emails the panel link of a diary to a caregiver
func (s *EmailService) SendPanelLink(ctx context.Context, toEmail string, diary *models.Diary) error {
	if err := validation.ValidateEmail(toEmail); err != nil {
		return err
	}
	if !s.enabled {
		s.logger.Info("Skipping email send (service disabled)", zap.String("diary_id", diary.ID))
		return nil
	}

	link := s.PanelURL(diary.AccessToken)
	subject := fmt.Sprintf("Diário de %s", diary.Name)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h1>%s %s</h1>
	<p>Você recebeu acesso ao painel diário de <strong>%s</strong>.</p>
	<p><a href="%s">Abrir o painel</a></p>
	<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
	<p style="font-size: 12px; color: #666;">Quem tiver este link pode registrar atividades no diário. Não compartilhe publicamente.</p>
</body>
</html>
`, html.EscapeString(diary.Avatar), html.EscapeString(diary.Name), html.EscapeString(diary.Name), link, link)

	textBody := fmt.Sprintf(`Você recebeu acesso ao painel diário de %s.

Abra o painel: %s

Quem tiver este link pode registrar atividades no diário. Não compartilhe publicamente.
`, diary.Name, link)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("Email sent", fields...)
	return nil
}
