package notify

import "fmt"

// DefaultQuotes are appended to break-end alerts.
var DefaultQuotes = []string{
	"The secret of getting ahead is getting started.",
	"Focus on being productive instead of busy.",
	"Small steps every day.",
	"Do one thing at a time, and do it well.",
	"Rest is not idleness.",
	"Deep work is a superpower.",
	"Start where you are. Use what you have. Do what you can.",
}

// FocusEndBody is the focus-end alert text.
func FocusEndBody(breakMinutes int) string {
	body := "Your focus session has ended."
	if breakMinutes > 0 {
		body += fmt.Sprintf(" Enjoy a %d-minute break.", breakMinutes)
	}
	return body
}

// BreakEndBody is the break-end alert text, with quote on its own line.
func BreakEndBody(quote string) string {
	body := "Ready for another focus session?"
	if quote != "" {
		body += "\n" + quote
	}
	return body
}
