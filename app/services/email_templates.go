package services

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/biotap/biotap/app/dto"
)

var welcomeEmailTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f8fafc; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px; text-align: center;">
      <h1 style="color: white; margin: 0;">Welcome to {{.AppName}}!</h1>
    </div>
    <div style="padding: 40px;">
      <p>Hi <strong>{{.Username}}</strong>,</p>
      <p>Your account has been created successfully! You can now create links, track how they perform, and customize your page.</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.FrontendURL}}/dashboard" style="display: inline-block; background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold;">Go to Dashboard</a>
      </div>
      <p>Best regards,<br>The {{.AppName}} Team</p>
    </div>
    <div style="text-align: center; padding: 30px; color: #6b7280; font-size: 14px;">
      <p>This email was sent to {{.Email}}</p>
    </div>
  </div>
</body>
</html>`))

var passwordResetEmailTmpl = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f8fafc; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white;">
    <div style="background: linear-gradient(135deg, #dc2626 0%, #b91c1c 100%); padding: 40px; text-align: center;">
      <h1 style="color: white; margin: 0;">Password Reset Request</h1>
    </div>
    <div style="padding: 40px;">
      <p>Hi <strong>{{.Username}}</strong>,</p>
      <p>We received a request to reset your password for your {{.AppName}} account.</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.ResetLink}}" style="display: inline-block; background: #dc2626; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold;">Reset Your Password</a>
      </div>
      <p>This link will expire in 30 minutes. If you didn't request this reset, you can safely ignore this email.</p>
      <p>Best regards,<br>The {{.AppName}} Team</p>
    </div>
    <div style="text-align: center; padding: 30px; color: #6b7280; font-size: 14px;">
      <p>This email was sent to {{.Email}}</p>
    </div>
  </div>
</body>
</html>`))

var analyticsSummaryEmailTmpl = template.Must(template.New("analytics_summary").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f8fafc; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white;">
    <div style="background: linear-gradient(135deg, #059669 0%, #047857 100%); padding: 40px; text-align: center;">
      <h1 style="color: white; margin: 0;">Weekly Analytics Summary</h1>
    </div>
    <div style="padding: 40px;">
      <p>Hi <strong>{{.Username}}</strong>,</p>
      <p>Here's how your links performed this week:</p>
      <table style="width: 100%; margin: 30px 0;">
        <tr>
          <td style="background-color: #f8fafc; padding: 20px; border-radius: 8px; text-align: center;">
            <div style="font-size: 32px; font-weight: bold; color: #059669;">{{.TotalClicks}}</div>
            <div style="color: #6b7280; font-size: 14px;">Total Clicks</div>
          </td>
          <td style="background-color: #f8fafc; padding: 20px; border-radius: 8px; text-align: center;">
            <div style="font-size: 32px; font-weight: bold; color: #059669;">{{.UniqueVisitors}}</div>
            <div style="color: #6b7280; font-size: 14px;">Unique Visitors</div>
          </td>
        </tr>
      </table>
      {{if .TopLinks}}
      <div style="background-color: #f8fafc; padding: 20px; border-radius: 8px; margin: 30px 0;">
        <h3>Top Performing Links:</h3>
        {{range .TopLinks}}
        <div style="display: flex; justify-content: space-between; padding: 10px 0; border-bottom: 1px solid #e5e7eb;">
          <span>{{.Title}}</span><span>{{.Clicks}} clicks</span>
        </div>
        {{end}}
      </div>
      {{end}}
      <p><strong>Growth:</strong> Your clicks are {{pct .GrowthPercentage}}% compared to last week!</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.FrontendURL}}/dashboard/analytics" style="display: inline-block; background: #059669; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold;">View Full Analytics</a>
      </div>
      <p>Keep up the great work!</p>
      <p>Best regards,<br>The {{.AppName}} Team</p>
    </div>
    <div style="text-align: center; padding: 30px; color: #6b7280; font-size: 14px;">
      <p>This email was sent to {{.Email}}</p>
    </div>
  </div>
</body>
</html>`))

type welcomeEmailData struct {
	AppName     string
	Username    string
	Email       string
	FrontendURL string
}

type passwordResetEmailData struct {
	AppName   string
	Username  string
	Email     string
	ResetLink string
}

type analyticsSummaryEmailData struct {
	AppName          string
	Username         string
	Email            string
	FrontendURL      string
	TotalClicks      int64
	UniqueVisitors   int64
	TopLinks         []dto.LinkStat
	GrowthPercentage float64
}

func renderWelcomeEmail(data welcomeEmailData) (string, error) {
	var buf bytes.Buffer
	if err := welcomeEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderPasswordResetEmail(data passwordResetEmailData) (string, error) {
	var buf bytes.Buffer
	if err := passwordResetEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderAnalyticsSummaryEmail(data analyticsSummaryEmailData) (string, error) {
	var buf bytes.Buffer
	if err := analyticsSummaryEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
