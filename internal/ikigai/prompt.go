package ikigai

import (
	"fmt"
	"strings"

	"github.com/brown2020/ikigaifinder/internal/catalog"
)

const generationSystemPrompt = `You are an Ikigai coach. Based on the user's questionnaire answers you propose Ikigai statements: short, concrete sentences describing a purpose that combines what they love, what they are good at, what the world needs and what they can be paid for.

Produce exactly 10 statements. Format every statement as a numbered record, nothing else, exactly like this:

1. <one-sentence Ikigai statement>
- Passion & Profession: <percent>%
- Profession & Vocation: <percent>%
- Vocation & Mission: <percent>%
- Passion & Mission: <percent>%
- Overall Compatibility: <percent>%

Percentages are numbers between 0 and 100 and may carry one decimal place. Do not add headings, commentary or markdown around the records.`

// BuildGenerationPrompt renders the questionnaire answers into the prompt
// pair for candidate generation. Unanswered questions are left out so the
// model is not steered by blanks. Guidance is the user's optional free-text
// steering instruction and goes in verbatim as one extra sentence.
func BuildGenerationPrompt(steps []catalog.QuestionStep, guidance string) (system, user string) {
	var b strings.Builder
	b.WriteString("Here are my questionnaire answers.\n")
	for _, step := range steps {
		wrote := false
		for _, q := range step.Questions {
			answer := joinAnswer(q.Answer)
			if answer == "" {
				continue
			}
			if !wrote {
				fmt.Fprintf(&b, "\n%s:\n", step.Title)
				wrote = true
			}
			fmt.Fprintf(&b, "- %s %s\n", q.Label, answer)
		}
	}
	b.WriteString("\nPropose my 10 Ikigai statements.")
	if guidance = strings.TrimSpace(guidance); guidance != "" {
		fmt.Fprintf(&b, " Additional instruction: %s", guidance)
	}
	return generationSystemPrompt, b.String()
}

// BuildImagePrompt renders the text-to-image prompt for a selected
// statement.
func BuildImagePrompt(selected Candidate) string {
	return fmt.Sprintf(
		"A serene, hopeful illustration symbolizing the life purpose: %q. Soft light, warm colors, no text, no letters, no watermark.",
		strings.TrimSpace(selected.Ikigai),
	)
}

func joinAnswer(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}
