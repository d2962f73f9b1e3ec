// Package reporter notifies a Telegram chat about crawl runs and newly seen postings.
package reporter

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jd-crawler/internal/models"
)

// sender is the part of *tgbotapi.BotAPI the reporter uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramReporter struct {
	bot    sender
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{bot: bot, chatID: chatID}, nil
}

// Summary describes one finished pipeline run.
type Summary struct {
	Source   string
	RunID    string
	Total    int
	New      int
	Rated    int
	Degraded []string
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!", "\\", "\\\\",
)

// inside the (...) part of an inline link only ')' and '\' are special
var linkEscaper = strings.NewReplacer(")", "\\)", "\\", "\\\\")

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

func (t *TelegramReporter) send(text string, markup any) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := t.bot.Send(msg)
	return err
}

// FormatJob renders one posting as a MarkdownV2 message.
func FormatJob(source string, job models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *%s*\n", escapeMarkdown(job.Title))
	fmt.Fprintf(&b, "🏢 %s", escapeMarkdown(job.Company))
	if job.Rating != "" {
		fmt.Fprintf(&b, " ⭐ %s", escapeMarkdown(job.Rating))
		if job.ReviewCount != nil {
			fmt.Fprintf(&b, " \\(%d reviews\\)", *job.ReviewCount)
		}
	}
	b.WriteString("\n")

	loc := job.Location
	if loc == "" {
		loc = "N/A"
	}
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(loc))
	if job.ExperienceYears != "" {
		fmt.Fprintf(&b, "🧑‍💻 %s\n", escapeMarkdown(job.ExperienceYears))
	}
	if job.Deadline != "" {
		fmt.Fprintf(&b, "📅 %s\n", escapeMarkdown(job.Deadline))
	}
	fmt.Fprintf(&b, "🔖 Source: %s\n", escapeMarkdown(source))
	fmt.Fprintf(&b, "🔗 [View Job](%s)", linkEscaper.Replace(job.URL))
	return b.String()
}

func (t *TelegramReporter) SendJob(source string, job models.Job) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.URL)),
	)
	return t.send(FormatJob(source, job), keyboard)
}

// FormatSummary renders a run summary as a MarkdownV2 message.
func FormatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s crawl finished*\n", escapeMarkdown(s.Source))
	fmt.Fprintf(&b, "Total: %d\nNew: %d\nRated: %d\n", s.Total, s.New, s.Rated)
	if len(s.Degraded) > 0 {
		b.WriteString("⚠️ Degraded:\n")
		for _, d := range s.Degraded {
			fmt.Fprintf(&b, "• %s\n", escapeMarkdown(d))
		}
	}
	fmt.Fprintf(&b, "Run: `%s`", escapeMarkdown(s.RunID))
	return b.String()
}

func (t *TelegramReporter) SendSummary(s Summary) error {
	return t.send(FormatSummary(s), nil)
}

func (t *TelegramReporter) SendError(errReq error) error {
	return t.send(fmt.Sprintf("❌ *Crawler error*\n%s", escapeMarkdown(errReq.Error())), nil)
}
