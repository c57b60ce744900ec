package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// Mailer sends the platform's notification emails
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
	SendSectionJoinedEmail(ctx context.Context, toEmail, teacherName, studentName, sectionName string) error
}

// sesAPI is the part of the SES v2 client the email service calls
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	logger     *zap.Logger
}

// NewEmailService creates an email service. With an empty fromEmail the
// service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	s := &EmailService{
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		logger:     logger,
	}
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return s, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s.client = sesv2.NewFromConfig(cfg)

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return s, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.client != nil
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	subject := "Welcome to EduCross!"
	link := s.appBaseURL + "/login"

	htmlBody := wrapHTML("Welcome to EduCross!", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your EduCross account is ready. Pick a subject, open a lesson and play the games built from its key terms.</p>
			<p style="text-align: center;"><a href="%s" class="button">Start Learning</a></p>`,
		html.EscapeString(toName), link))

	textBody := fmt.Sprintf(`Hi %s,

Your EduCross account is ready. Pick a subject, open a lesson and play the games built from its key terms.

Start learning: %s
`, toName, link) + textFooter

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendSectionJoinedEmail tells a teacher that a student joined a section
func (s *EmailService) SendSectionJoinedEmail(ctx context.Context, toEmail, teacherName, studentName, sectionName string) error {
	subject := fmt.Sprintf("%s joined %s", studentName, sectionName)
	link := s.appBaseURL + "/teacher"

	htmlBody := wrapHTML("New student in your section", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p><strong>%s</strong> joined your section <strong>%s</strong>.</p>
			<p style="text-align: center;"><a href="%s" class="button">Open Dashboard</a></p>`,
		html.EscapeString(teacherName), html.EscapeString(studentName), html.EscapeString(sectionName), link))

	textBody := fmt.Sprintf(`Hi %s,

%s joined your section %s.

Open your dashboard: %s
`, teacherName, studentName, sectionName, link) + textFooter

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

const textFooter = `
---
This is an automated email from EduCross. Please do not reply.
`

func wrapHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2f9e8f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2f9e8f; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s
		</div>
		<div class="footer"><p>This is an automated email from EduCross. Please do not reply.</p></div>
	</div>
</body>
</html>
`, html.EscapeString(title), content)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.IsEnabled() {
		s.logger.Debug("skipping email send (service disabled)", zap.String("to", toEmail), zap.String("subject", subject))
		return nil
	}

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
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.logger.Info("email sent",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
