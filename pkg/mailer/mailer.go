package mailer

import (
	"OptiSense/internal/entity"
	"fmt"
	smtpPkg "net/smtp"
	"os"
	"strings"
)

type ItfMailer interface {
	SendMeasurementReport(recipient string, record entity.MeasurementRecord) error
}

type mailer struct {
	auth smtpPkg.Auth
	mail string
	host string
	addr string
}

func New() ItfMailer {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &mailer{auth: auth, mail: mail, host: host, addr: host + ":587"}
}

func (m *mailer) SendMeasurementReport(recipient string, record entity.MeasurementRecord) error {
	to := []string{recipient}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	body.WriteString(fmt.Sprintf("Subject: Pupil measurement report - %s\r\n\r\n", record.PatientLabel))
	body.WriteString(fmt.Sprintf("Patient: %s\r\n", record.PatientLabel))
	body.WriteString(fmt.Sprintf("Measured: %s\r\n\r\n", record.CreatedAt.Format("02 Jan 2006 15:04")))
	body.WriteString(fmt.Sprintf("Frame height: %.1f mm\r\n", record.FrameHeightMm))
	body.WriteString(fmt.Sprintf("Left pupil height: %.1f mm\r\n", record.LeftPupilHeightMm))
	body.WriteString(fmt.Sprintf("Right pupil height: %.1f mm\r\n", record.RightPupilHeightMm))
	body.WriteString(fmt.Sprintf("Pupil distance: %.1f mm\r\n", record.PupilDistanceMm))
	body.WriteString(fmt.Sprintf("Scale: %.2f px/mm\r\n", record.PixelPerMm))
	if record.ImageLink != "" {
		body.WriteString(fmt.Sprintf("\r\nPhoto: %s\r\n", record.ImageLink))
	}

	return smtpPkg.SendMail(m.addr, m.auth, m.mail, to, []byte(body.String()))
}
