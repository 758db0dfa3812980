package mail

import (
	"fmt"
	"time"
)

func planActivatedBody(renewed bool, expiresAt time.Time) string {
	headline := "Welcome to ChatLens Pro!"
	if renewed {
		headline = "Your ChatLens Pro plan has been renewed."
	}
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2 style="color:#4f46e5;">%s</h2>
  <p>Your monthly credits have been topped up and conversation storage is now unlimited.</p>
  <p>Your plan is active until <strong>%s</strong>.</p>
  <p style="color:#6b7280; font-size:13px;">— The ChatLens team</p>
</div>`, headline, expiresAt.UTC().Format("January 2, 2006"))
}

func renewalReminderBody(expiresAt time.Time) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2 style="color:#4f46e5;">Your Pro plan expires on %s</h2>
  <p>Renew now to keep unlimited conversation storage and your monthly credits.</p>
  <p style="color:#6b7280; font-size:13px;">— The ChatLens team</p>
</div>`, expiresAt.UTC().Format("January 2, 2006"))
}
