package mail

import (
	"context"
	"errors"
	"fmt"
	"log"

	gomail "github.com/wneessen/go-mail"

	"optika/internal/models"
)

const confirmationSubject = "Order Confirmation - i Optika"

// Notifier delivers the order confirmation to the shopper.
type Notifier interface {
	OrderConfirmation(ctx context.Context, order models.Order) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender relays confirmations through an SMTP server. Port 465 uses implicit
// TLS; any other port requires STARTTLS.
type Sender struct {
	cfg SMTPConfig
}

var _ Notifier = (*Sender)(nil)

func NewSender(cfg SMTPConfig) (*Sender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("sender address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	return &Sender{cfg: cfg}, nil
}

func (s *Sender) OrderConfirmation(ctx context.Context, order models.Order) error {
	body, err := Render(NewReceipt(order))
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat("i Optika Store", s.cfg.From); err != nil {
		return err
	}
	if err := msg.To(order.Shipping.Email); err != nil {
		return err
	}
	msg.Subject(confirmationSubject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	opts := []gomail.Option{gomail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return err
	}

	log.Println("[MAIL] [INFO] confirmation sent for order:", order.ID.Hex())
	return nil
}

// Discard is used when no relay is configured.
type Discard struct{}

func (Discard) OrderConfirmation(_ context.Context, order models.Order) error {
	log.Println("[MAIL] [INFO] mail disabled, skipping confirmation for order:", order.ID.Hex())
	return nil
}
