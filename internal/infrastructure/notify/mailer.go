// Package notify entrega las alertas de baja confianza al operador por correo.
package notify

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/pkg/config"
	"github.com/sewellco/hts-manager/pkg/logger"
)

var _ ports.Notifier = (*Mailer)(nil)

// Mailer notificador SMTP. Sin host configurado degrada a solo-log: la alerta
// queda visible para el operador en los logs y la clasificación nunca falla
// por un problema de correo.
type Mailer struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

// NewMailer construye el notificador con la configuración SMTP de la app.
func NewMailer(cfg config.SMTPConfig, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// NotifyLowConfidence envía la alerta de revisión al correo del administrador.
func (m *Mailer) NotifyLowConfidence(alert ports.LowConfidenceAlert) error {
	if m.cfg.Host == "" || m.cfg.AdminEmail == "" {
		m.log.Info().
			Str("product_id", alert.ProductID).
			Str("hts_code", alert.HTSCode).
			Int("confidence_percent", alert.ConfidencePercent).
			Msg("alerta de baja confianza (SMTP no configurado, solo log)")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.AdminEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Revisión HTS: %s (%d%% de confianza)", alert.ProductName, alert.ConfidencePercent))
	msg.SetBody("text/plain", alertBody(alert))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("enviar alerta SMTP: %w", err)
	}
	return nil
}

func alertBody(alert ports.LowConfidenceAlert) string {
	body := fmt.Sprintf(
		"El clasificador asignó un código HTS con confianza baja y requiere revisión humana.\n\n"+
			"Producto: %s (SKU %s)\n"+
			"Código HTS: %s\n"+
			"Confianza: %d%%\n",
		alert.ProductName, alert.SKU, alert.HTSCode, alert.ConfidencePercent,
	)
	if alert.Reasoning != "" {
		body += "\nRazonamiento del modelo:\n" + alert.Reasoning + "\n"
	}
	if alert.ReviewLink != "" {
		body += "\nRevisar: " + alert.ReviewLink + "\n"
	}
	return body
}
