package otp

import (
	"bytes"
	"html/template"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
)

var emailTpl = template.Must(template.New("otp").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif; color: #1f2933;">
    <h2>{{ .Heading }}</h2>
    <p>Use the code below to {{ .Action }}. It expires in {{ .Minutes }} minutes.</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{ .Code }}</p>
    <p>If you did not request this code you can ignore this email.</p>
  </body>
</html>`))

type emailData struct {
	Heading string
	Action  string
	Code    string
	Minutes int
}

func renderEmail(v *domain.Verification, ttl time.Duration) (subject, body string, err error) {
	d := emailData{Code: v.Code, Minutes: int(ttl.Minutes())}
	switch v.Purpose {
	case domain.PurposeRecovery:
		subject = "Reset your Bright Wellbeing password"
		d.Heading = "Password reset"
		d.Action = "reset your password"
	default:
		subject = "Your Bright Wellbeing verification code"
		d.Heading = "Verify your email"
		d.Action = "finish creating your account"
	}
	var buf bytes.Buffer
	if err := emailTpl.Execute(&buf, d); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
