package service

import (
	"crypto/tls"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/config"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

type EmailSender struct {
	dialer     *mail.Dialer
	from       string
	salesInbox string
	logger     *logrus.Logger
	enabled    bool
}

func NewEmailSender(cfg *config.Config, logger *logrus.Logger) *EmailSender {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SMTPHost,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	enabled := cfg.EmailEnabled
	if enabled && cfg.SalesInbox == "" {
		logger.Warn("SALES_INBOX vacío: se deshabilita el envío de correos")
		enabled = false
	}

	return &EmailSender{
		dialer:     d,
		from:       cfg.SMTPUser,
		salesInbox: cfg.SalesInbox,
		logger:     logger,
		enabled:    enabled,
	}
}

// SendQuotationNotification avisa al buzón comercial y, si dejó correo, al cliente
func (es *EmailSender) SendQuotationNotification(q *model.Quotation) error {
	if !es.enabled {
		es.logger.Debug("Envío de notificaciones deshabilitado")
		return nil
	}

	subject := fmt.Sprintf("Nueva cotización %s - %s", q.Number, q.CustomerName)
	if err := es.sendEmail(es.salesInbox, subject, quotationEmailBody(q)); err != nil {
		return err
	}

	if q.CustomerEmail != "" {
		return es.sendEmail(q.CustomerEmail, fmt.Sprintf("Tu cotización %s", q.Number), quotationEmailBody(q))
	}
	return nil
}

func (es *EmailSender) SendDailySummary(summary *model.DailySummary) error {
	if !es.enabled {
		es.logger.Debug("Envío de notificaciones deshabilitado")
		return nil
	}

	subject := fmt.Sprintf("Resumen de cotizaciones %s (%d)", summary.Date, summary.Total)
	return es.sendEmail(es.salesInbox, subject, dailySummaryBody(summary))
}

func quotationEmailBody(q *model.Quotation) string {
	category := "Sin categoría"
	if q.Category != nil {
		category = q.Category.Category
	}
	lender := "-"
	if q.Lender != nil {
		lender = fmt.Sprintf("%s (%.2f%% mensual)", q.Lender.Name, q.Lender.MonthlyInterestRate)
	}

	return fmt.Sprintf(`
		<h1>Cotización %s</h1>
		<p>Cliente: <strong>%s</strong> (%s)</p>
		<p>Interés: <strong>%s</strong> - categoría %s</p>
		<p>Cuota diaria: <strong>$%.0f</strong>, cuota inicial: <strong>$%.0f</strong>, plazo: <strong>%d meses</strong></p>
		<p>Precio máximo de la moto: <strong>$%d</strong></p>
		<p>Cuota mensual estimada: <strong>$%d</strong></p>
		<p>Entidad sugerida: <strong>%s</strong></p>
		<small>Este es un mensaje automático, por favor no lo respondas</small>
	`,
		html.EscapeString(q.Number),
		html.EscapeString(q.CustomerName), html.EscapeString(q.CustomerPhone),
		html.EscapeString(q.Interest), html.EscapeString(category),
		q.DailyBudget, q.DownPayment, q.TermMonths,
		q.Affordability.MaxAssetPrice,
		q.Affordability.EstimatedMonthlyPayment,
		html.EscapeString(lender),
	)
}

func dailySummaryBody(summary *model.DailySummary) string {
	categories := make([]string, 0, len(summary.ByCategory))
	for c := range summary.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Cotizaciones del %s</h1><p>Total: <strong>%d</strong></p><ul>", summary.Date, summary.Total)
	for _, c := range categories {
		fmt.Fprintf(&b, "<li>%s: %d</li>", html.EscapeString(c), summary.ByCategory[c])
	}
	b.WriteString("</ul>")
	return b.String()
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Error enviando el correo")
		return fmt.Errorf("failed to send email: %w", err)
	}

	es.logger.Infof("Correo enviado a %s", to)
	return nil
}
