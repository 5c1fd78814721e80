package fallback

import (
	"fmt"
	"strings"

	"github.com/dwizi/quantumx/internal/expr"
)

const (
	CapabilitiesMessage = "Posso responder praticamente qualquer pergunta, gerar ideias, estudar conteúdos, " +
		"criar textos e ajudar com código. Para modo avançado estilo ChatGPT e criação de imagens, " +
		"configure `OPENAI_API_KEY` no servidor."
	ShortTextMessage = "Envie um texto maior e eu faço um resumo objetivo em tópicos."

	summaryPrefix   = "Resumo rápido:\n"
	checklistHeader = "Perfeito! Aqui está sua lista de tarefas:\n"
	checklistMarker = "- [ ] "
)

var (
	calcTriggers      = []string{"calcule", "quanto é", "resolver", "conta"}
	summarizeTriggers = []string{"resuma", "resumo"}
	listTriggers      = []string{"lista", "tarefas"}
)

// Rule names which heuristic produced a Dispatch reply.
type Rule string

const (
	RuleCalc      Rule = "calc"
	RuleSummarize Rule = "summarize"
	RuleList      Rule = "list"
	RuleDefault   Rule = "default"
)

// Dispatch answers text without any remote model.
func Dispatch(text string) string {
	reply, _ := Route(text)
	return reply
}

// Route is Dispatch that also reports which rule answered.
func Route(text string) (string, Rule) {
	lowered := strings.ToLower(text)

	if containsAny(lowered, calcTriggers) {
		if candidate, ok := expr.Extract(text); ok {
			if value, err := expr.Evaluate(candidate); err == nil {
				return FormatResult(candidate, value), RuleCalc
			}
		}
	}

	if containsAny(lowered, summarizeTriggers) {
		return Summarize(text, DefaultMaxSentences), RuleSummarize
	}

	if containsAny(lowered, listTriggers) {
		if items := ExtractItems(text); len(items) > 0 {
			return FormatChecklist(items), RuleList
		}
	}

	return CapabilitiesMessage, RuleDefault
}

func FormatResult(expression string, value expr.Number) string {
	return fmt.Sprintf("Resultado de `%s`: **%s**", expression, value)
}

func FormatChecklist(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, checklistMarker+item)
	}
	return checklistHeader + strings.Join(lines, "\n")
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
