package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dwizi/quantumx/internal/fallback"
)

// evalCase is one expectation for the offline fallback. Rule and Contains
// are both optional.
type evalCase struct {
	Name     string `yaml:"name"`
	Message  string `yaml:"message"`
	Rule     string `yaml:"rule"`
	Contains string `yaml:"contains"`
}

type evalFile struct {
	Cases []evalCase `yaml:"cases"`
}

type evalReport struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	ByRule   map[string]int `json:"by_rule"`
	Failures []evalFailure  `json:"failures"`
}

type evalFailure struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	WantRule string `json:"want_rule,omitempty"`
	GotRule  string `json:"got_rule"`
	Reply    string `json:"reply"`
}

func newChatEvalCommand() *cobra.Command {
	var casesPath string
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the offline fallback over a YAML file of cases and print a JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(casesPath) == "" {
				return fmt.Errorf("--cases is required")
			}
			cases, err := loadEvalCases(casesPath)
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				return fmt.Errorf("no cases found in %s", casesPath)
			}

			report := evaluateCases(cases)
			payload, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(payload))
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d cases failed", report.Failed, report.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&casesPath, "cases", "", "YAML file with fallback cases")
	return cmd
}

func loadEvalCases(path string) ([]evalCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	var file evalFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse cases: %w", err)
	}
	for index := range file.Cases {
		if strings.TrimSpace(file.Cases[index].Name) == "" {
			file.Cases[index].Name = fmt.Sprintf("case-%d", index+1)
		}
	}
	return file.Cases, nil
}

func evaluateCases(cases []evalCase) evalReport {
	report := evalReport{
		Total:    len(cases),
		ByRule:   map[string]int{},
		Failures: []evalFailure{},
	}
	for _, c := range cases {
		reply, rule := fallback.Route(c.Message)
		report.ByRule[string(rule)]++

		ok := true
		if want := strings.TrimSpace(c.Rule); want != "" && want != string(rule) {
			ok = false
		}
		if c.Contains != "" && !strings.Contains(reply, c.Contains) {
			ok = false
		}
		if ok {
			report.Passed++
			continue
		}
		report.Failed++
		report.Failures = append(report.Failures, evalFailure{
			Name:     c.Name,
			Message:  c.Message,
			WantRule: c.Rule,
			GotRule:  string(rule),
			Reply:    reply,
		})
	}
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Name < report.Failures[j].Name
	})
	return report
}
