// internal/connections/notify.go
// Invite notification delivery, best effort. A failed notification never
// fails the invite itself.

package connections

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// InviteNotice carries everything needed to notify an invitee
type InviteNotice struct {
	ToEmail    string
	ToPhone    string
	FromName   string
	CircleName string
}

// EmailProvider defines the email provider interface
type EmailProvider interface {
	SendInviteEmail(ctx context.Context, notice *InviteNotice) error
}

// SMSProvider defines the SMS provider interface
type SMSProvider interface {
	SendInviteSMS(ctx context.Context, notice *InviteNotice) error
}

func inviteSubject(notice *InviteNotice) string {
	return fmt.Sprintf("%s invited you to their %s circle", notice.FromName, notice.CircleName)
}

func inviteBody(notice *InviteNotice) string {
	return fmt.Sprintf(
		"%s has invited you to join their %s circle.\n\nSign up or log in to accept the invitation.",
		notice.FromName, notice.CircleName)
}

// SMTPEmailProvider implements EmailProvider using SMTP
type SMTPEmailProvider struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPEmailProvider(host, port, username, password, from string) EmailProvider {
	return &SMTPEmailProvider{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (p *SMTPEmailProvider) SendInviteEmail(ctx context.Context, notice *InviteNotice) error {
	message := fmt.Sprintf("From: %s\r\n", p.from)
	message += fmt.Sprintf("To: %s\r\n", notice.ToEmail)
	message += fmt.Sprintf("Subject: %s\r\n", inviteSubject(notice))
	message += "\r\n"
	message += inviteBody(notice)

	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	addr := fmt.Sprintf("%s:%s", p.host, p.port)

	if err := smtp.SendMail(addr, auth, p.from, []string{notice.ToEmail}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridEmailProvider implements EmailProvider using SendGrid
type SendGridEmailProvider struct {
	apiKey string
	from   string
}

func NewSendGridEmailProvider(apiKey, from string) EmailProvider {
	return &SendGridEmailProvider{
		apiKey: apiKey,
		from:   from,
	}
}

func (p *SendGridEmailProvider) SendInviteEmail(ctx context.Context, notice *InviteNotice) error {
	from := mail.NewEmail("CircleScore", p.from)
	to := mail.NewEmail("", notice.ToEmail)

	message := mail.NewSingleEmail(from, inviteSubject(notice), to, inviteBody(notice), "")
	client := sendgrid.NewSendClient(p.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}
	return nil
}

// TwilioSMSProvider implements SMSProvider using Twilio
type TwilioSMSProvider struct {
	client      *twilio.RestClient
	phoneNumber string
}

func NewTwilioSMSProvider(accountSID, authToken, phoneNumber string) SMSProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSProvider{
		client:      client,
		phoneNumber: phoneNumber,
	}
}

func (p *TwilioSMSProvider) SendInviteSMS(ctx context.Context, notice *InviteNotice) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(notice.ToPhone)
	params.SetFrom(p.phoneNumber)
	params.SetBody(inviteBody(notice))

	if _, err := p.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS via Twilio: %w", err)
	}
	return nil
}

// MockEmailProvider implements EmailProvider for testing
type MockEmailProvider struct {
	SentNotices []InviteNotice
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{SentNotices: make([]InviteNotice, 0)}
}

func (p *MockEmailProvider) SendInviteEmail(ctx context.Context, notice *InviteNotice) error {
	p.SentNotices = append(p.SentNotices, *notice)
	return nil
}

// MockSMSProvider implements SMSProvider for testing
type MockSMSProvider struct {
	SentNotices []InviteNotice
}

func NewMockSMSProvider() *MockSMSProvider {
	return &MockSMSProvider{SentNotices: make([]InviteNotice, 0)}
}

func (p *MockSMSProvider) SendInviteSMS(ctx context.Context, notice *InviteNotice) error {
	p.SentNotices = append(p.SentNotices, *notice)
	return nil
}
