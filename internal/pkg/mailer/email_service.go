package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type OrderLine struct {
	Title string
	Price float64
}

type IEmailService interface {
	SendOrderConfirmation(toEmail, orderID string, lines []OrderLine, total float64) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendOrderConfirmation(toEmail, orderID string, lines []OrderLine, total float64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Order %s confirmed", orderID))

	var items strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&items, "<li>%s — $%.2f</li>", l.Title, l.Price)
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thanks for your order!</h2>
			<p>Order ID: <strong>%s</strong></p>
			<ul>%s</ul>
			<p>Total: <strong>$%.2f</strong></p>
			<p>We'll let you know when it ships.</p>
		</div>
	`, orderID, items.String(), total)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send order confirmation to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Order confirmation sent to %s\n", toEmail)
	return nil
}
