package chat

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/notify"
)

const (
	msgUnknownCommand    = "Unknown command. Type /help to see available commands."
	msgCancelNeedsID     = "Please provide a job ID to cancel. For example: /cancel abc123"
	msgDeleteNeedsID     = "Please provide a job ID to delete. For example: /delete-history-videoid abc123"
	msgNoJobs            = "You haven't created any videos yet. Send me a description to get started!"
	msgNoHistory         = "You don't have any video history yet. Send me a description to create your first video!"
	msgStatusError       = "Sorry, there was an error checking the job status."
	msgHistoryError      = "Sorry, there was an error retrieving your history."
	msgCancelError       = "Sorry, there was an error cancelling the job."
	msgDeleteError       = "Sorry, there was an error deleting your data."
	msgRequestError      = "Sorry, there was an error processing your request."
	msgGenerationFailed  = "Sorry, there was an issue generating your video. Please try again."
	msgDidNotUnderstand  = "Sorry, I didn't understand. To create a video, please send me a description."
	msgGreeting          = "Hello! I'm MakeVideo AI. You can describe any video you'd like me to create."
	msgAskForPrompt      = "I'd love to! Please describe the video you want me to generate."
	msgEmptyMessage      = "Please describe the video you want me to generate."
	msgHistoryDeleted    = "✅ Your entire video history has been deleted. All your past requests have been removed from our system."
	msgForgotten         = "✅ All your data has been deleted from our system. Your chat history and video requests have been removed."
	msgChatCleared       = "✅ Your chat history has been cleared while keeping your video requests intact."
	msgVideoReady        = "✨ Your video is ready! Here it is:"
	msgHereIsVideo       = "Here's your video:"
	msgHistoryFooter     = "To see details for a specific video, send:\n/status [video-id]"
	msgHistoryHeader     = "*Your Video History*\n\n"
	historyPromptPreview = 30
)

const msgPrivacy = `*Privacy Policy*

We store the following data:
• Your WhatsApp number
• Your video requests and prompts
• Your recent conversation with the bot
• Links to the generated videos

This data is used only to create your videos and show you your history.

You can delete your data at any time:
• /delete-history-videoid [id] - Delete one request
• /delete-history-all - Delete all your video requests
• /clear-chat - Delete your conversation history
• /forget-me - Delete everything we store about you`

func permissionDenied(action string) string {
	return fmt.Sprintf("⚠️ You don't have permission to %s this job.", action)
}

func jobNotFound(id string) string {
	return fmt.Sprintf("❌ No job found with ID: %s", id)
}

func cannotCancel(status domain.JobStatus) string {
	return fmt.Sprintf("⚠️ Cannot cancel job with status: %s", statusLabel(status))
}

func jobCancelled(id string) string {
	return fmt.Sprintf("✅ Job %s has been cancelled.", id)
}

func jobDeleted(id string) string {
	return fmt.Sprintf("✅ Job %s has been deleted from your history.", id)
}

func startingVideo(prompt string) string {
	return fmt.Sprintf("✅ Got it! Starting video for: \"%s\"", prompt)
}

func clarifyPrompt(suggestion string) string {
	return fmt.Sprintf("🤔 Your prompt is a bit short. How about this instead: \"%s\"", suggestion)
}

func jobConfirmation(id string) string {
	return fmt.Sprintf("🎬 Your video request has been received!\n\n*Job ID:* %s\n\nI'll send you the video when it's ready. You can check progress any time with:\n/status %s", id, id)
}

func allDone(id string) string {
	return fmt.Sprintf("✅ All done! Here's the video you asked for. ✨\n\nIf you need to reference it later, your Job ID is: %s", id)
}

func helpMessage(supportContact string) string {
	var b strings.Builder
	b.WriteString("*MakeVideo AI Help*\n\n")
	b.WriteString("Send me a description and I'll turn it into a short video.\n\n")
	b.WriteString("*Commands*\n")
	b.WriteString("/status [id] - Check a video (latest when no id)\n")
	b.WriteString("/history - List your recent videos\n")
	b.WriteString("/cancel [id] - Cancel a video in progress\n")
	b.WriteString("/delete-history-videoid [id] - Delete one video request\n")
	b.WriteString("/delete-history-all - Delete all your video requests\n")
	b.WriteString("/clear-chat - Clear your conversation history\n")
	b.WriteString("/forget-me - Delete all your data\n")
	b.WriteString("/privacy - How we handle your data\n")
	b.WriteString("/help - Show this menu")
	if supportContact != "" {
		fmt.Fprintf(&b, "\n\nNeed more help? Contact support at %s", supportContact)
	}
	return b.String()
}

var titleCaser = cases.Title(language.English)

func statusLabel(status domain.JobStatus) string {
	return titleCaser.String(string(status))
}

func statusGlyph(status domain.JobStatus) string {
	switch status {
	case domain.JobStatusProcessing:
		return "🔄"
	case domain.JobStatusCompleted:
		return "✅"
	case domain.JobStatusFailed:
		return "❌"
	case domain.JobStatusCancelled:
		return "🚫"
	case domain.JobStatusPending:
		return "⏳"
	}
	return "❓"
}

// formatDate renders t relative to now in loc.
func formatDate(t, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	now = now.In(loc)
	ty, tm, td := t.Date()
	if ny, nm, nd := now.Date(); ty == ny && tm == nm && td == nd {
		return "Today at " + t.Format("15:04")
	}
	if yy, ym, yd := now.AddDate(0, 0, -1).Date(); ty == yy && tm == ym && td == yd {
		return "Yesterday at " + t.Format("15:04")
	}
	return t.Format("02 Jan 15:04")
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}

func statusHeader(job *domain.Job, now time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Job Status: %s*\n", job.ID)
	fmt.Fprintf(&b, "💭 Prompt: \"%s\"\n", job.UserPrompt)
	if job.EnhancedPrompt != "" && job.EnhancedPrompt != job.UserPrompt {
		fmt.Fprintf(&b, "💭 Enhanced prompt: \"%s\"\n", job.EnhancedPrompt)
	}
	fmt.Fprintf(&b, "📅 Created: %s\n", formatDate(job.CreatedAt, now, loc))
	return b.String()
}

// statusMessage renders the status reply for a job that is not failed.
func statusMessage(job *domain.Job, now time.Time, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(statusHeader(job, now, loc))
	switch job.Status {
	case domain.JobStatusCompleted:
		if secs := int(job.UpdatedAt.Sub(job.CreatedAt).Seconds()); secs >= 0 {
			fmt.Fprintf(&b, "⏱️ Processing time: %d seconds\n", secs)
		}
		b.WriteString("\n✅ Your video has been completed!")
		if job.VideoURL == "" {
			b.WriteString("\n\nThe video URL is not available. Please contact support.")
		}
	case domain.JobStatusProcessing:
		b.WriteString("\n🔄 Your video is being generated. I'll send it as soon as it's ready.")
	case domain.JobStatusCancelled:
		b.WriteString("\n🚫 This job was cancelled.")
	default:
		fmt.Fprintf(&b, "\nCurrent status: %s", statusLabel(job.Status))
	}
	return b.String()
}

func failedStatusMessage(job *domain.Job, apology string) string {
	return fmt.Sprintf("*Job Status: %s*\n💭 Prompt: \"%s\"\n\n❌ %s", job.ID, job.UserPrompt, apology)
}

func historyEntry(job domain.Job, now time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*\n", statusGlyph(job.Status), job.ID)
	fmt.Fprintf(&b, "📝 \"%s\"\n", preview(job.UserPrompt, historyPromptPreview))
	if job.Status == domain.JobStatusCompleted && job.VideoURL != "" {
		fmt.Fprintf(&b, "🔗 %s\n", job.VideoURL)
	}
	fmt.Fprintf(&b, "📅 %s\n\n", formatDate(job.CreatedAt, now, loc))
	return b.String()
}

func omittedNote(n int) string {
	if n == 1 {
		return "…1 more entry omitted.\n\n"
	}
	return fmt.Sprintf("…%d more entries omitted.\n\n", n)
}

// formatHistory lists jobs in order and stays within
// notify.MaxMessageLength characters, replacing the entries that do not
// fit with an omission note.
func formatHistory(jobs []domain.Job, now time.Time, loc *time.Location) string {
	size := func(s string) int { return utf8.RuneCountInString(s) }
	var b strings.Builder
	b.WriteString(msgHistoryHeader)
	used := size(msgHistoryHeader)
	footer := size(msgHistoryFooter)
	for i, job := range jobs {
		entry := historyEntry(job, now, loc)
		need := used + size(entry) + footer
		if rest := len(jobs) - i - 1; rest > 0 {
			need += size(omittedNote(rest))
		}
		if need > notify.MaxMessageLength {
			b.WriteString(omittedNote(len(jobs) - i))
			break
		}
		b.WriteString(entry)
		used += size(entry)
	}
	b.WriteString(msgHistoryFooter)
	return b.String()
}
