package notification

import "html/template"

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background-color: #284498; color: white; padding: 20px; text-align: center; }
  .content { padding: 20px; background-color: #f7f7f7; }
  .box { background-color: white; padding: 15px; margin: 15px 0; border-radius: 8px; }
  .bank { background-color: #fff3cd; padding: 15px; margin: 15px 0; border-radius: 8px; border-left: 4px solid #FFC632; }
  .highlight { color: #284498; font-weight: bold; }
  .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>{{.Brand}}</h1><p>{{.Heading}}</p></div>
  <div class="content">{{template "body" .}}</div>
  <div class="footer"><p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p></div>
</div>
</body>
</html>{{end}}`

const bookingDetailsTemplate = `{{define "details"}}
<div class="box">
  <h3>Booking Details</h3>
  <p><strong>Booking Reference:</strong> <span class="highlight">{{.Reference}}</span></p>
  <p><strong>Check-in:</strong> {{.CheckIn}}</p>
  <p><strong>Check-out:</strong> {{.CheckOut}}</p>
  <p><strong>Nights:</strong> {{.Nights}}</p>
  <p><strong>Guests:</strong> {{.GuestCount}}</p>
  <p><strong>Total Amount:</strong> {{.Total}}</p>
  {{if .SpecialRequests}}<p><strong>Special Requests:</strong> {{.SpecialRequests}}</p>{{end}}
</div>{{end}}`

const guestCreatedBody = `{{define "body"}}
<p>Dear {{.GuestName}},</p>
<p>Thank you for booking with {{.Brand}}! Your booking has been received.</p>
{{template "details" .}}
<div class="bank">
  <h3>Payment Required</h3>
  <p>Please make payment within {{.HoldWindow}} to confirm your booking. Unpaid bookings are released after that.</p>
  <p><strong>Bank Name:</strong> {{.Bank.BankName}}</p>
  <p><strong>Account Name:</strong> {{.Bank.AccountName}}</p>
  <p><strong>Account Number:</strong> {{.Bank.AccountNumber}}</p>
  <p><strong>Amount:</strong> {{.Total}}</p>
  <p><strong>Reference:</strong> {{.Reference}}</p>
</div>
<p><strong>Important:</strong> After making payment, please send your payment confirmation to {{.ReplyTo}} with your booking reference.</p>
<p>Your booking will be confirmed once we verify your payment.</p>
<p>Best regards,<br>The {{.Brand}} Team</p>
{{end}}`

const adminCreatedBody = `{{define "body"}}
<div class="box">
  <h3>New booking received</h3>
  <p><strong>Reference:</strong> {{.Reference}}</p>
  <p><strong>Guest:</strong> {{.GuestName}}</p>
  <p><strong>Email:</strong> {{.GuestEmail}}</p>
  <p><strong>Phone:</strong> {{.GuestPhone}}</p>
  <p><strong>Property:</strong> {{.PropertyID}}</p>
  <p><strong>Check-in:</strong> {{.CheckIn}}</p>
  <p><strong>Check-out:</strong> {{.CheckOut}}</p>
  <p><strong>Nights:</strong> {{.Nights}}</p>
  <p><strong>Guests:</strong> {{.GuestCount}}</p>
  <p><strong>Total:</strong> {{.Total}}</p>
  <p><strong>Status:</strong> Pending Payment (hold expires {{.ExpiresAt}})</p>
  {{if .SpecialRequests}}<p><strong>Special Requests:</strong> {{.SpecialRequests}}</p>{{end}}
</div>
<p>Please check your bank account for payment and update the booking status in the admin dashboard once confirmed.</p>
{{end}}`

const guestConfirmedBody = `{{define "body"}}
<p>Dear {{.GuestName}},</p>
<p>We have received your payment. Your booking is <span class="highlight">confirmed</span>.</p>
{{template "details" .}}
<p>We look forward to hosting you.</p>
<p>Best regards,<br>The {{.Brand}} Team</p>
{{end}}`

const guestCancelledBody = `{{define "body"}}
<p>Dear {{.GuestName}},</p>
{{if .Expired}}<p>We did not receive payment within {{.HoldWindow}}, so your booking has been released.</p>
{{else}}<p>Your booking has been cancelled.</p>{{end}}
{{template "details" .}}
<p>If you believe this is a mistake or would like to book again, please contact {{.ReplyTo}}.</p>
<p>Best regards,<br>The {{.Brand}} Team</p>
{{end}}`

const approvalBody = `{{define "body"}}
<p>A new admin account is waiting for approval.</p>
<div class="box">
  <p><strong>Name:</strong> {{.AdminName}}</p>
  <p><strong>Email:</strong> {{.AdminEmail}}</p>
</div>
<p><a href="{{.ApproveURL}}">Approve this admin</a></p>
<p>The link expires in 7 days. Ignore this email to leave the account inactive.</p>
{{end}}`

var (
	guestCreatedTmpl   = mustParse("guest_created", guestCreatedBody)
	adminCreatedTmpl   = mustParse("admin_created", adminCreatedBody)
	guestConfirmedTmpl = mustParse("guest_confirmed", guestConfirmedBody)
	guestCancelledTmpl = mustParse("guest_cancelled", guestCancelledBody)
	approvalTmpl       = mustParse("approval", approvalBody)
)

func mustParse(name, body string) *template.Template {
	t := template.Must(template.New(name).Parse(layoutTemplate))
	t = template.Must(t.Parse(bookingDetailsTemplate))
	return template.Must(t.Parse(body))
}
