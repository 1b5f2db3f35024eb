package adapter

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// letterTemplate is one fill-in-the-blanks letter form.
type letterTemplate struct {
	name     string
	keywords []string
	body     string
}

// Ordered so the more specific requests win; formal_general is the
// fallback and never matched by keyword.
var letterTemplates = []letterTemplate{
	{
		name:     "leave",
		keywords: []string{"leave", "holiday", "vacation", "absent", "time off"},
		body: `Date: {date}

{recipient_name}
{recipient_title}

Subject: Application for Leave

Respected {recipient_title},

I am writing to request leave for {leave_days} days due to {leave_reason}.

I will ensure that all my pending work is completed before my leave, and I will be available for any urgent matters via phone or email if needed.

I kindly request you to grant me leave for the mentioned period.

Thank you for your understanding and consideration.

Yours sincerely,
{sender_name}`,
	},
	{
		name:     "complaint",
		keywords: []string{"complaint", "complain", "issue", "problem"},
		body: `Date: {date}

{recipient_name}
{recipient_title}

Subject: Complaint

Dear {recipient_title},

I am writing to bring to your attention a matter that requires immediate resolution.

I would appreciate it if you could look into this matter promptly. I believe that a quick response will help resolve this issue amicably.

Thank you for your attention to this matter.

Sincerely,
{sender_name}`,
	},
	{
		name:     "appreciation",
		keywords: []string{"appreciation", "appreciate", "gratitude"},
		body: `Date: {date}

{recipient_name}
{recipient_title}

Subject: Letter of Appreciation

Dear {recipient_title},

I would like to express my sincere appreciation for your support and effort. Your contribution has made a real difference, and it has not gone unnoticed.

Thank you once again.

Warm regards,
{sender_name}`,
	},
	{
		name:     "resignation",
		keywords: []string{"resignation", "resign", "quit", "leaving job"},
		body: `Date: {date}

{recipient_name}
{recipient_title}

Subject: Letter of Resignation

Dear {recipient_title},

Please accept this letter as formal notice of my resignation from my position. I am grateful for the opportunities I have been given during my time here.

I will do everything I can to ensure a smooth handover of my responsibilities.

Yours sincerely,
{sender_name}`,
	},
	{
		name:     "apology",
		keywords: []string{"apology", "apologize", "sorry", "regret"},
		body: `Date: {date}

{recipient_name}
{recipient_title}

Subject: Letter of Apology

Dear {recipient_title},

I am writing to offer my sincere apologies. I regret any inconvenience my actions may have caused and I take full responsibility.

I will make every effort to ensure this does not happen again.

Sincerely,
{sender_name}`,
	},
	{
		name:     "thank_you",
		keywords: []string{"thank you", "thanks", "thank"},
		body: `Date: {date}

{recipient_name}
{recipient_title}

Subject: Thank You

Dear {recipient_title},

Thank you very much for your kindness and support. It meant a great deal to me.

With gratitude,
{sender_name}`,
	},
}

const formalGeneralBody = `Date: {date}

{recipient_name}
{recipient_title}

Subject: {subject}

Dear {recipient_title},

{body}

I appreciate your time and consideration.

Yours faithfully,
{sender_name}`

var leaveDaysRe = regexp.MustCompile(`(\d+)\s*days?`)

// TextGenerator produces freeform prose. A nil generator keeps letter
// generation fully template-driven.
type TextGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Letter generates letters from fixed templates. Template selection and
// value extraction are deterministic; when a text generator is
// configured the body is additionally polished by the model, with the
// template fill as fallback.
type Letter struct {
	senderName string
	llm        TextGenerator
	now        func() time.Time
}

func NewLetter(senderName string, llm TextGenerator) *Letter {
	if senderName == "" {
		senderName = "Your Name"
	}
	return &Letter{senderName: senderName, llm: llm, now: time.Now}
}

// Register wires generate_letter into the set.
func (l *Letter) Register(s *Set) {
	s.RegisterFunc(types.ActionGenerateLetter, l.Generate)
}

// DetectType returns the template name the description matches, or
// formal_general.
func DetectType(description string) string {
	lower := strings.ToLower(description)
	for _, tpl := range letterTemplates {
		for _, kw := range tpl.keywords {
			if strings.Contains(lower, kw) {
				return tpl.name
			}
		}
	}
	return "formal_general"
}

// Generate builds the letter and returns it in data["letter"] together
// with the detected type. Caller-supplied overrides take precedence over
// every extracted value.
func (l *Letter) Generate(ctx context.Context, action types.Action) *types.ExecutionResult {
	description, _ := action.StringParam("description")

	body := formalGeneralBody
	letterType := DetectType(description)
	for _, tpl := range letterTemplates {
		if tpl.name == letterType {
			body = tpl.body
			break
		}
	}

	values := l.extractValues(description)
	if overrides, ok := action.Parameters["overrides"].(map[string]any); ok {
		for key, value := range overrides {
			if s, ok := value.(string); ok {
				values[key] = s
			}
		}
	}

	letter := body
	for key, value := range values {
		letter = strings.ReplaceAll(letter, "{"+key+"}", value)
	}

	if polished, ok := l.polish(ctx, letterType, description, letter); ok {
		letter = polished
	}

	return types.OkData(fmt.Sprintf("Generated a %s letter", letterType), map[string]any{
		"letter":      letter,
		"letter_type": letterType,
	})
}

// polish asks the configured model to rewrite the template fill into
// natural prose. Any failure keeps the template version.
func (l *Letter) polish(ctx context.Context, letterType, description, letter string) (string, bool) {
	if l.llm == nil || !l.llm.Enabled() {
		return "", false
	}
	prompt := fmt.Sprintf(
		"Rewrite this %s letter into polished, natural prose. Keep the same recipient, sender, and facts. Request: %s\n\n%s",
		strings.ReplaceAll(letterType, "_", " "), description, letter)
	polished, err := l.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Letter polish failed, keeping template: %v", err)
		return "", false
	}
	polished = strings.TrimSpace(polished)
	if polished == "" {
		return "", false
	}
	return polished, true
}

// extractValues pulls recipient, duration, and reason hints out of the
// description, falling back to generic defaults.
func (l *Letter) extractValues(description string) map[string]string {
	lower := strings.ToLower(description)

	values := map[string]string{
		"date":            l.now().Format("January 2, 2006"),
		"sender_name":     l.senderName,
		"recipient_name":  "Sir/Madam",
		"recipient_title": "Sir/Madam",
		"subject":         "Formal Request",
		"body":            description,
		"leave_days":      "a few",
		"leave_reason":    "personal reasons",
	}

	switch {
	case strings.Contains(lower, "principal"):
		values["recipient_name"], values["recipient_title"] = "Principal", "Principal"
	case strings.Contains(lower, "manager"):
		values["recipient_name"], values["recipient_title"] = "Manager", "Manager"
	case strings.Contains(lower, "teacher"):
		values["recipient_name"], values["recipient_title"] = "Teacher", "Teacher"
	}

	if m := leaveDaysRe.FindStringSubmatch(lower); m != nil {
		values["leave_days"] = m[1]
	}

	switch {
	case strings.Contains(lower, "sick"), strings.Contains(lower, "medical"):
		values["leave_reason"] = "health reasons"
	case strings.Contains(lower, "family"):
		values["leave_reason"] = "a family emergency"
	case strings.Contains(lower, "wedding"):
		values["leave_reason"] = "attending a wedding"
	}

	return values
}
