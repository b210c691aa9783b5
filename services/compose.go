package services

import (
	"fmt"
	"html"
	"strings"

	"gymdesk/models"
)

const (
	ReminderCategory   = "Fee Reminder"
	dueDatePlaceholder = "your due date"
	dueDateLayout      = "Mon Jan 2 2006"
)

type ReminderMessage struct {
	Subject string
	HTML    string
	Text    string
	SMS     string
}

// DueDateLabel renders the member's plan end date, or a placeholder when unknown.
func DueDateLabel(u models.User) string {
	if u.PlanEndDate == nil || u.PlanEndDate.IsZero() {
		return dueDatePlaceholder
	}
	return u.PlanEndDate.Format(dueDateLayout)
}

// ComposeFeeReminder builds the email and SMS bodies for a pending-fee member.
// It never fails: missing fields fall back to placeholder text.
func ComposeFeeReminder(u models.User, club, note string) ReminderMessage {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = "Member"
	}
	plan := strings.TrimSpace(u.CurrentPlan)
	if plan == "" {
		plan = "your current plan"
	}
	due := DueDateLabel(u)
	note = strings.TrimSpace(note)

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>\n", html.EscapeString(name))
	b.WriteString("<p>This is a kind reminder that your gym fee is pending.</p>\n")
	fmt.Fprintf(&b, "<p><strong>Plan:</strong> %s</p>\n", html.EscapeString(plan))
	fmt.Fprintf(&b, "<p><strong>Due Date:</strong> %s</p>\n", html.EscapeString(due))
	if note != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(note))
	}
	b.WriteString("<p>Please clear your dues to avoid membership suspension.</p>\n")
	fmt.Fprintf(&b, "<p>Thanks,<br/>%s</p>\n", html.EscapeString(club))

	text := fmt.Sprintf("Hi %s,\n\nThis is a kind reminder that your gym fee is pending.\nPlan: %s\nDue Date: %s\n",
		name, plan, due)
	if note != "" {
		text += "\n" + note + "\n"
	}
	text += fmt.Sprintf("\nPlease clear your dues to avoid membership suspension.\n\nThanks,\n%s\n", club)

	sms := fmt.Sprintf("Hi %s, your gym fee is pending for plan %q. Due: %s.", name, plan, due)
	if note != "" {
		sms += " " + note
	}
	sms += " - " + club

	return ReminderMessage{
		Subject: "Gym Fee Reminder",
		HTML:    b.String(),
		Text:    text,
		SMS:     sms,
	}
}
