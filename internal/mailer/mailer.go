package mailer

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Lead is a credit-intermediation request captured by the public form.
type Lead struct {
	Name         string
	Phone        string
	Email        string
	CarYear      string
	Amount       string
	Installments string
	Message      string
	Attachment   *Attachment
}

// Attachment is an optional document (typically a PDF) the requester uploads
// with the form.
type Attachment struct {
	Filename string
	Data     []byte
}

// Sender delivers lead messages to the dealership mailbox.
type Sender interface {
	Send(ctx context.Context, lead Lead) error
}

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Recipient string
}

type smtpSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) Sender {
	return &smtpSender{cfg: cfg, logger: logger}
}

func (s *smtpSender) Send(ctx context.Context, lead Lead) error {
	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		s.logger.Error("SMTP configuration is incomplete, lead not sent",
			zap.String("host", s.cfg.Host),
			zap.Bool("password_set", s.cfg.Password != ""))
		return fmt.Errorf("smtp configuration is incomplete")
	}

	message := lead.Message
	if message == "" {
		message = "Nenhuma mensagem enviada"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.Recipient)
	m.SetHeader("Subject", fmt.Sprintf("Solicitação de Financiamento de %s", lead.Name))
	m.SetBody("text/plain", fmt.Sprintf(
		"Nome: %s\nTelefone: %s\nEmail: %s\nAno do Carro: %s\nValor Pretendido: %s\nMensalidades: %s\nMensagem: %s",
		lead.Name, lead.Phone, lead.Email, lead.CarYear, lead.Amount, lead.Installments, message))

	if att := lead.Attachment; att != nil && len(att.Data) > 0 {
		name := att.Filename
		if name == "" {
			name = "anexo.pdf"
		}
		m.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(att.Data)
			return err
		}))
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		s.logger.Error("failed to send lead email",
			zap.String("lead_email", lead.Email), zap.Error(err))
		return fmt.Errorf("send lead email: %w", err)
	}

	s.logger.Info("lead email sent", zap.String("lead_email", lead.Email))
	return nil
}
