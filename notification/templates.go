package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"complaintdesk/models"
)

// Email templates rendered into the outbox. Layout mirrors the operational
// emails the desk sends: a colored header, a details block, a footer.

const baseLayout = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: {{.HeaderColor}}; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
  .content { background: #f9fafb; padding: 20px; border-radius: 0 0 8px 8px; }
  .details { background: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid {{.HeaderColor}}; }
  .footer { text-align: center; margin-top: 20px; color: #6b7280; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>{{.Heading}}</h1></div>
  <div class="content">
    <p>{{.Lead}}</p>
    <div class="details">
      <h3>Complaint Details:</h3>
      <p><strong>Complaint Number:</strong> {{.Complaint.ComplaintNumber}}</p>
      <p><strong>Customer Name:</strong> {{.Complaint.CustomerName}}</p>
      <p><strong>Customer ID:</strong> {{.Complaint.CustomerID}}</p>
      <p><strong>Policy Number:</strong> {{.Complaint.PolicyNumber}}</p>
      <p><strong>Policy Type:</strong> {{.Complaint.PolicyType}}</p>
      <p><strong>Description:</strong> {{.Complaint.Description}}</p>
      <p><strong>Due Date:</strong> {{.DueDate}}</p>
    </div>
    <p>{{.Closing}}</p>
  </div>
  <div class="footer"><p>This is an automated notification from Complaint Management System</p></div>
</div>
</body>
</html>`

var emailTemplate = template.Must(template.New("email").Parse(baseLayout))

type templateData struct {
	HeaderColor string
	Heading     string
	Lead        string
	Closing     string
	Complaint   *models.Complaint
	DueDate     string
}

func render(data templateData) string {
	data.DueDate = data.Complaint.DueDate.Format(time.RFC1123)
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		// Template and data shapes are fixed at compile time; execution
		// cannot fail on valid inputs.
		return ""
	}
	return buf.String()
}

// ComplaintCreatedEmail renders the new-complaint notification email
func ComplaintCreatedEmail(c *models.Complaint, assigneeName string) (subject, body string) {
	lead := "A new complaint has been created and requires assignment."
	if assigneeName != "" {
		lead = fmt.Sprintf("A new complaint has been created and assigned to %s.", assigneeName)
	}
	subject = fmt.Sprintf("New Complaint Created - %s", c.ComplaintNumber)
	body = render(templateData{
		HeaderColor: "#2563eb",
		Heading:     "New Complaint Created",
		Lead:        lead,
		Closing:     "Please take appropriate action on this complaint.",
		Complaint:   c,
	})
	return subject, body
}

// AssignmentEmail renders the email sent to a newly assigned agent
func AssignmentEmail(c *models.Complaint, assigneeName string) (subject, body string) {
	subject = fmt.Sprintf("Complaint Assigned to You - %s", c.ComplaintNumber)
	body = render(templateData{
		HeaderColor: "#059669",
		Heading:     "Complaint Assigned to You",
		Lead:        fmt.Sprintf("Hello %s, you have been assigned a new complaint that requires your attention.", assigneeName),
		Closing:     "Please review this complaint and take necessary action to resolve it within the specified timeframe.",
		Complaint:   c,
	})
	return subject, body
}

// SLAReminderEmail renders the 1-hour/2-hour reminder email
func SLAReminderEmail(c *models.Complaint, hours int) (subject, body string) {
	subject = fmt.Sprintf("SLA Reminder - %s", c.ComplaintNumber)
	body = render(templateData{
		HeaderColor: "#dc2626",
		Heading:     "SLA Reminder",
		Lead:        fmt.Sprintf("This is a reminder that the following complaint is still unresolved after %d %s.", hours, pluralHours(hours)),
		Closing:     "Please prioritize this complaint to avoid an SLA breach.",
		Complaint:   c,
	})
	return subject, body
}

// SLABreachEmail renders the breach alert email
func SLABreachEmail(c *models.Complaint) (subject, body string) {
	subject = fmt.Sprintf("SLA BREACH ALERT - %s", c.ComplaintNumber)
	body = render(templateData{
		HeaderColor: "#991b1b",
		Heading:     "SLA Breach Alert",
		Lead:        fmt.Sprintf("Complaint %s - %s has breached its SLA deadline.", c.ComplaintNumber, c.CustomerName),
		Closing:     "Immediate action is required on this complaint.",
		Complaint:   c,
	})
	return subject, body
}

func pluralHours(hours int) string {
	if hours == 1 {
		return "hour"
	}
	return "hours"
}
