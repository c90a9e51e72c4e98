package ikigai

import (
	"strings"
	"testing"

	"github.com/brown2020/ikigaifinder/internal/catalog"
)

func answeredSteps() []catalog.QuestionStep {
	steps := catalog.Steps()
	for i := range steps {
		for j := range steps[i].Questions {
			steps[i].Questions[j].Answer = []string{"sample answer"}
		}
	}
	return steps
}

func TestBuildGenerationPrompt_IncludesAnswers(t *testing.T) {
	t.Parallel()

	steps := answeredSteps()
	system, user := BuildGenerationPrompt(steps, "")

	if !strings.Contains(system, "exactly 10") {
		t.Fatalf("system prompt should pin the candidate count: %q", system)
	}
	if !strings.Contains(system, "Overall Compatibility") {
		t.Fatalf("system prompt should state the output grammar: %q", system)
	}
	for _, step := range steps {
		if !strings.Contains(user, step.Title) {
			t.Fatalf("user prompt missing step title %q", step.Title)
		}
		for _, q := range step.Questions {
			if !strings.Contains(user, q.Label) {
				t.Fatalf("user prompt missing question %q", q.Label)
			}
		}
	}
}

func TestBuildGenerationPrompt_SkipsUnanswered(t *testing.T) {
	t.Parallel()

	steps := catalog.Steps()
	steps[0].Questions[0].Answer = []string{"only this one"}

	_, user := BuildGenerationPrompt(steps, "")
	if !strings.Contains(user, steps[0].Questions[0].Label) {
		t.Fatalf("answered question missing from prompt")
	}
	if strings.Contains(user, steps[0].Questions[1].Label) {
		t.Fatalf("unanswered question leaked into prompt")
	}
	if strings.Contains(user, steps[1].Title) {
		t.Fatalf("fully unanswered step leaked into prompt")
	}
}

func TestBuildGenerationPrompt_AppendsGuidance(t *testing.T) {
	t.Parallel()

	_, without := BuildGenerationPrompt(answeredSteps(), "")
	_, with := BuildGenerationPrompt(answeredSteps(), "  focus on outdoor work  ")

	if strings.Contains(without, "focus on outdoor work") {
		t.Fatalf("guidance appeared without being supplied")
	}
	if !strings.HasSuffix(with, "Additional instruction: focus on outdoor work") {
		t.Fatalf("guidance not appended as final instruction: %q", with)
	}
}

func TestBuildImagePrompt_ContainsStatement(t *testing.T) {
	t.Parallel()

	prompt := BuildImagePrompt(Candidate{Ikigai: "Grow food for neighbors."})
	if !strings.Contains(prompt, "Grow food for neighbors.") {
		t.Fatalf("image prompt missing statement: %q", prompt)
	}
}
