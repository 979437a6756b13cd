package llm

import (
	"fmt"

	"github.com/nikogura/cv-builder/pkg/render"
)

// SummaryRequest carries the profile fields a summary is drafted from.
type SummaryRequest struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	Skills   string          `json:"skills"`
	Language render.Language `json:"language"`
}

// BuildSummaryPrompt creates the summary prompt. The three fields are embedded verbatim.
func BuildSummaryPrompt(req SummaryRequest) (prompt string) {
	if req.Language == render.English {
		prompt = fmt.Sprintf(`Write a professional, easy-to-read CV summary for a person named %s
who works as %s and whose skills are: %s.
Reply with the summary text only, without a heading or quotes.`, req.Name, req.Title, req.Skills)
		return prompt
	}

	prompt = fmt.Sprintf(`اكتب ملخصاً احترافياً وسهل القراءة لسيرة ذاتية لشخص اسمه %s
يعمل بمسمى وظيفي %s ومهاراته: %s.
اكتب نص الملخص فقط دون عنوان أو علامات اقتباس.`, req.Name, req.Title, req.Skills)
	return prompt
}
