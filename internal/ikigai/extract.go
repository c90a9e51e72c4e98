package ikigai

import (
	"regexp"
	"strconv"
)

// Candidate is one generated Ikigai statement with its five compatibility
// percentages. The JSON field names are part of the stored document format;
// clients depend on them as-is.
type Candidate struct {
	Ikigai               string  `json:"ikigai"`
	Passion              float64 `json:"Passion"`
	Profession           float64 `json:"Profession"`
	Vocation             float64 `json:"Vocation"`
	Mission              float64 `json:"Mission"`
	OverallCompatibility float64 `json:"OverallCompatibility"`
}

// recordRE matches one complete numbered record in the model's output. A
// record that is still being streamed (missing bullet lines or the final
// percentage) never matches, so partial tails are skipped for free.
//
// The bullet labels map positionally onto Candidate fields: the
// "Passion & Profession" line fills Passion, "Profession & Vocation" fills
// Profession, and so on. The stored document format inherited this mapping
// and existing clients rely on it, so it must not be reordered.
var recordRE = regexp.MustCompile(
	`(?m)^\s*\d+\.\s*(.+?)\s*\r?\n` +
		`\s*-\s*Passion\s*&\s*Profession:\s*(\d+(?:\.\d+)?)%\s*\r?\n` +
		`\s*-\s*Profession\s*&\s*Vocation:\s*(\d+(?:\.\d+)?)%\s*\r?\n` +
		`\s*-\s*Vocation\s*&\s*Mission:\s*(\d+(?:\.\d+)?)%\s*\r?\n` +
		`\s*-\s*Passion\s*&\s*Mission:\s*(\d+(?:\.\d+)?)%\s*\r?\n` +
		`\s*-\s*Overall\s*Compatibility:\s*(\d+(?:\.\d+)?)%`,
)

// Extract pulls every complete candidate out of text, in order of
// appearance. It is safe to call on a partially streamed buffer; incomplete
// trailing records are ignored until later deltas complete them.
func Extract(text string) []Candidate {
	matches := recordRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		c := Candidate{Ikigai: m[1]}
		vals := [5]*float64{&c.Passion, &c.Profession, &c.Vocation, &c.Mission, &c.OverallCompatibility}
		ok := true
		for i, dst := range vals {
			f, err := strconv.ParseFloat(m[i+2], 64)
			if err != nil {
				ok = false
				break
			}
			*dst = f
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}
