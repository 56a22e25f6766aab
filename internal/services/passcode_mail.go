package services

import (
	"bytes"
	"html/template"
	"time"

	"ecanteen/internal/models"
)

var passcodeMailTmpl = template.Must(template.New("passcode").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ef4444;">Food Ordering System</h2>
  <div style="background: #f8fafc; padding: 20px; border-radius: 10px;">
    <h3>{{.Title}}</h3>
    <p>Your verification code is:</p>
    <div style="font-size: 32px; font-weight: bold; color: #ef4444; letter-spacing: 8px; text-align: center; margin: 20px 0;">
      {{.Code}}
    </div>
    <p>This code will expire in {{.Minutes}} minutes.</p>
    <p style="color: #6b7280; font-size: 12px;">
      If you didn't request this, please ignore this email.
    </p>
  </div>
</div>
`))

func passcodeSubject(purpose models.PasscodePurpose) string {
	if purpose == models.PurposePasswordReset {
		return "Password Reset OTP - Food Ordering System"
	}
	return "Email Verification - Food Ordering System"
}

func renderPasscodeMail(purpose models.PasscodePurpose, code string, ttl time.Duration) (string, error) {
	title := "Email Verification"
	if purpose == models.PurposePasswordReset {
		title = "Password Reset"
	}
	var buf bytes.Buffer
	err := passcodeMailTmpl.Execute(&buf, struct {
		Title   string
		Code    string
		Minutes int
	}{title, code, int(ttl / time.Minute)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
