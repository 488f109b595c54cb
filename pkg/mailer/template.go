package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

var notificationTmpl = template.Must(template.New("notification").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
<h2>New project submission</h2>
<table cellpadding="4">
  <tr><td><b>Name</b></td><td>{{.Sub.Name}}</td></tr>
  <tr><td><b>Email</b></td><td>{{.Sub.Email}}</td></tr>
  <tr><td><b>Business</b></td><td>{{.Sub.BusinessName}}</td></tr>
  <tr><td><b>Description</b></td><td>{{.Sub.BusinessDesc}}</td></tr>
  <tr><td><b>Pages</b></td><td>{{.Sub.PageCount}}</td></tr>
  {{if .Sub.ProjectTypes}}<tr><td><b>Project types</b></td><td>{{range $i, $t := .Sub.ProjectTypes}}{{if $i}}, {{end}}{{$t}}{{end}}</td></tr>{{end}}
  {{if .Sub.ReferenceURL}}<tr><td><b>Reference</b></td><td>{{.Sub.ReferenceURL}}</td></tr>{{end}}
  <tr><td><b>Plan</b></td><td>{{.PlanName}} ({{.Sub.BillingCycle}})</td></tr>
  {{if .AddOnNames}}<tr><td><b>Add-ons</b></td><td>{{range $i, $a := .AddOnNames}}{{if $i}}, {{end}}{{$a}}{{end}}</td></tr>{{end}}
</table>
<h3>Totals</h3>
<table cellpadding="4">
  <tr><td>Setup fee</td><td>${{.Sub.Totals.SetupFee}}</td></tr>
  <tr><td>One-time add-ons</td><td>${{.Sub.Totals.OneTimeTotal}}</td></tr>
  <tr><td>First month</td><td>${{.Sub.Totals.FirstMonth}}</td></tr>
  <tr><td>Monthly recurring</td><td>${{.Sub.Totals.MonthlyRecurring}}</td></tr>
  <tr><td><b>Total today</b></td><td><b>${{.Sub.Totals.GrandTotal}}</b></td></tr>
</table>
{{if .AttachmentCount}}<p>{{.AttachmentCount}} attachment(s) included.</p>{{end}}
</body>
</html>
`))

type notificationData struct {
	Sub             *submission.Submission
	PlanName        string
	AddOnNames      []string
	AttachmentCount int
}

// RenderNotification renders the operator notification body for one
// submission. Display names come from the canonical price table.
func RenderNotification(table *pricing.Table, sub *submission.Submission, attachmentCount int) (string, error) {
	data := notificationData{
		Sub:             sub,
		PlanName:        string(sub.Plan),
		AttachmentCount: attachmentCount,
	}
	if p, ok := table.Plan(sub.Plan); ok {
		data.PlanName = p.DisplayName
	}
	for _, a := range table.AddOns() {
		if sub.AddOns[a.ID] {
			data.AddOnNames = append(data.AddOnNames, a.DisplayName)
		}
	}

	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render notification: %w", err)
	}
	return buf.String(), nil
}
