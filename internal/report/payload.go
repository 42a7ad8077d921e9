package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const announcement = "🔔 **Поступила новая заявка на пост модератора!**"

// Payload is the webhook document.
type Payload struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Fields      []EmbedField `json:"fields"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp"`
}

// EmbedImage points at an image URL.
type EmbedImage struct {
	URL string `json:"url"`
}

// EmbedField is one titled section.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is the footer line.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Payload renders the report as the webhook document.
func (r Report) Payload() Payload {
	s := r.settings
	content := announcement
	if mention := strings.TrimSpace(s.Mention); mention != "" {
		content += " " + mention
	}

	embed := Embed{
		Title:       "📑 АНКЕТА СТАЖЁРА: " + r.Nickname,
		Description: fmt.Sprintf("Автоматический отчет системы проверки знаний %s.", s.Brand),
		Color:       s.Color,
		Timestamp:   r.CreatedAt.Format(time.RFC3339),
	}
	if s.AvatarURL != "" {
		embed.Thumbnail = &EmbedImage{URL: fmt.Sprintf(s.AvatarURL, r.Nickname)}
	}
	if s.Footer != "" {
		embed.Footer = &EmbedFooter{Text: s.Footer}
	}

	if r.Suspicious {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "⚠️ ПОДОЗРИТЕЛЬНО",
			Value: fmt.Sprintf("Анкета заполнена за %s", Duration(r.Analytics.TimeSpentSeconds)),
		})
	}

	embed.Fields = append(embed.Fields,
		EmbedField{
			Name:   "👤 КАНДИДАТ",
			Value:  fmt.Sprintf("**Discord:** `%s`\n**Возраст:** `%s`\n**На проекте:** %s", r.Discord, r.Age, r.TimeOnProject),
			Inline: true,
		},
		EmbedField{
			Name:   "🎮 ОНЛАЙН",
			Value:  fmt.Sprintf("**В день:** %s\n**Прайм-тайм:** %s", r.HoursDaily, r.ActiveTime),
			Inline: true,
		},
		EmbedField{Name: "📝 О СЕБЕ", Value: orDefault(r.About, emptyText)},
		EmbedField{Name: "🛠 ОПЫТ МОДЕРАЦИИ", Value: orDefault(r.PreviousModExp, noModExperience)},
		EmbedField{Name: "🧩 СОРТИРОВКА НАКАЗАНИЙ", Value: r.MiniGame.String()},
		EmbedField{Name: fmt.Sprintf("⚖️ РЕЗУЛЬТАТЫ ТЕСТА (%d/%d)", r.Score(), len(r.Quiz)), Value: r.quizLines()},
		EmbedField{
			Name:  "🎯 МОТИВАЦИЯ",
			Value: fmt.Sprintf("**Зачем:** %s\n**Обязанности:** %s", r.Expectations, r.Duties),
		},
		EmbedField{Name: "📊 АНАЛИТИКА", Value: r.analyticsLines()},
	)

	return Payload{Content: content, Embeds: []Embed{embed}}
}

// JSON encodes the payload.
func (r Report) JSON() ([]byte, error) {
	data, err := json.Marshal(r.Payload())
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

func (r Report) quizLines() string {
	lines := make([]string, 0, len(r.Quiz))
	for i, q := range r.Quiz {
		lines = append(lines, fmt.Sprintf("%d. %s: **%s**", i+1, q.Label, q.Marker()))
	}
	return strings.Join(lines, "\n")
}

func (r Report) analyticsLines() string {
	a := r.Analytics
	ua := a.UserAgent
	if ua == "" {
		ua = emptyText
	}
	return fmt.Sprintf("**Всего:** %s\n**Тест:** %s\n**Капча (попыток):** %d\n**Клиент:** `%s`",
		Duration(a.TimeSpentSeconds), Duration(a.QuizTimeSeconds), a.CaptchaAttempts, ua)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
