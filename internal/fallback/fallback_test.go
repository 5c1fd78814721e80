package fallback

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractItems(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "colon and commas",
			text: "crie uma lista: estudar IA, publicar no github",
			want: []string{"estudar IA", "publicar no github"},
		},
		{
			name: "semicolons",
			text: "minha lista: pão; leite; ovos.",
			want: []string{"pão", "leite", "ovos"},
		},
		{
			name: "conjunction",
			text: "tarefas: lavar e secar",
			want: []string{"lavar", "secar"},
		},
		{
			name: "short fragments dropped",
			text: "lista: a, bb, ccc",
			want: []string{"ccc"},
		},
		{
			name: "keyword match ignores case",
			text: "LISTA: Café, Chá verde",
			want: []string{"Café", "Chá verde"},
		},
		{
			name: "single item",
			text: "lista: comprar pão.",
			want: []string{"comprar pão"},
		},
		{
			name: "single item too short",
			text: "lista: oi",
			want: nil,
		},
		{
			name: "keywords consume everything",
			text: "lista de tarefas",
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractItems(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractItems(%q) = %#v, want %#v", tc.text, got, tc.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	text := "Go é uma linguagem.   Ela é simples!\nTem goroutines? Sim, tem."
	got := Summarize(text, DefaultMaxSentences)
	want := "Resumo rápido:\nGo é uma linguagem. Ela é simples! Tem goroutines?"
	if got != want {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeCollapsesUnicodeSpaces(t *testing.T) {
	text := "Go é uma linguagem.\u00a0Ela é simples!\u2003\u2028Tem goroutines?\x1fSim, tem."
	got := Summarize(text, DefaultMaxSentences)
	want := "Resumo rápido:\nGo é uma linguagem. Ela é simples! Tem goroutines?"
	if got != want {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeShortText(t *testing.T) {
	for _, text := range []string{"", "resumo curto", "Oi. Tudo bem? Sim."} {
		if got := Summarize(text, DefaultMaxSentences); got != ShortTextMessage {
			t.Fatalf("Summarize(%q) = %q, want short text message", text, got)
		}
	}
}

func TestSummarizeKeepsSentenceWithoutTrailingSpace(t *testing.T) {
	got := Summarize("Versão 1.5 saiu hoje com melhorias grandes", 1)
	if got != "Resumo rápido:\nVersão 1.5 saiu hoje com melhorias grandes" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		text     string
		want     string
		wantRule Rule
	}{
		{"calcule 2+2*3", "Resultado de `2+2*3`: **8**", RuleCalc},
		{"Calcule 10/4", "Resultado de `10/4`: **2.5**", RuleCalc},
		{"resolver 2^10", "Resultado de `2**10`: **1024**", RuleCalc},
		{"calcule 1/0", CapabilitiesMessage, RuleDefault},
		{"quanto é 2+2", CapabilitiesMessage, RuleDefault},
		{"resumo curto", ShortTextMessage, RuleSummarize},
		{"lista de tarefas", CapabilitiesMessage, RuleDefault},
		{"bom dia", CapabilitiesMessage, RuleDefault},
		{
			"conta: lista de compras: arroz, feijão",
			"Perfeito! Aqui está sua lista de tarefas:\n- [ ] arroz\n- [ ] feijão",
			RuleList,
		},
	}
	for _, tc := range tests {
		got, rule := Route(tc.text)
		if got != tc.want {
			t.Fatalf("Route(%q) = %q, want %q", tc.text, got, tc.want)
		}
		if rule != tc.wantRule {
			t.Fatalf("Route(%q) rule = %s, want %s", tc.text, rule, tc.wantRule)
		}
	}
}

func TestDispatchChecklistHasOneLinePerItem(t *testing.T) {
	text := "crie uma lista: estudar IA, publicar no github, revisar testes"
	items := ExtractItems(text)
	reply := Dispatch(text)

	lines := strings.Split(reply, "\n")[1:]
	if len(lines) != len(items) {
		t.Fatalf("expected %d checklist lines, got %d: %q", len(items), len(lines), reply)
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "- [ ] ") {
			t.Fatalf("line %d missing checkbox marker: %q", i, line)
		}
		if strings.TrimPrefix(line, "- [ ] ") != items[i] {
			t.Fatalf("line %d = %q, want item %q", i, line, items[i])
		}
	}
}

func TestRouteDeeplyNestedCalcFallsThrough(t *testing.T) {
	text := "calcule " + strings.Repeat("(", 400000) + "1" + strings.Repeat(")", 400000)
	if got, rule := Route(text); rule != RuleDefault || got != CapabilitiesMessage {
		t.Fatalf("expected default reply, got rule %s", rule)
	}
}
