package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// LeadAssignedMail carries what a provider needs to follow up on a lead.
type LeadAssignedMail struct {
	ProviderName string
	LeadId       uint
	LeadName     string
	LeadPhone    string
	LeadEmail    string
	ZipCode      string
	ProjectType  string
	Timing       string
	LocationName string
}

type IEmailService interface {
	SendLeadAssigned(toEmail string, mail LeadAssignedMail) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, frontendURL string) IEmailService {
	if host == "" {
		return noopEmailService{}
	}
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendLeadAssigned(toEmail string, mail LeadAssignedMail) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New lead assigned: %s", mail.LeadName))

	leadLink := fmt.Sprintf("%s/provider/leads/%d", s.frontendURL, mail.LeadId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s, you have a new lead</h2>
			<table style="border-collapse: collapse;">
				<tr><td><b>Name</b></td><td>%s</td></tr>
				<tr><td><b>Phone</b></td><td>%s</td></tr>
				<tr><td><b>Email</b></td><td>%s</td></tr>
				<tr><td><b>Zip code</b></td><td>%s</td></tr>
				<tr><td><b>Project</b></td><td>%s</td></tr>
				<tr><td><b>Timing</b></td><td>%s</td></tr>
				<tr><td><b>Location</b></td><td>%s</td></tr>
			</table>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block; margin-top: 16px;">Open lead</a>
		</div>
	`,
		html.EscapeString(mail.ProviderName),
		html.EscapeString(mail.LeadName),
		html.EscapeString(mail.LeadPhone),
		html.EscapeString(mail.LeadEmail),
		html.EscapeString(mail.ZipCode),
		html.EscapeString(mail.ProjectType),
		html.EscapeString(mail.Timing),
		html.EscapeString(mail.LocationName),
		leadLink,
	)

	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

// noopEmailService is used when SMTP is not configured.
type noopEmailService struct{}

func (noopEmailService) SendLeadAssigned(string, LeadAssignedMail) error { return nil }
