package rules

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/linkforge/venuematch/internal/domain"
)

//go:embed rulepacks.yaml
var rulePacksYAML []byte

// ruleSpec is one YAML rule document entry. Op selects which predicate
// evaluates it; see applyOp.
type ruleSpec struct {
	Name   string  `yaml:"name"`
	Op     string  `yaml:"op"`
	Field  string  `yaml:"field"`
	Value  float64 `yaml:"value"`
	Field2 string  `yaml:"field2"`
	Value2 float64 `yaml:"value2"`
}

type packSpec struct {
	Topic        string     `yaml:"topic"`
	Floor        float64    `yaml:"floor"`
	ConfirmRules []ruleSpec `yaml:"confirm_rules"`
	RejectRules  []ruleSpec `yaml:"reject_rules"`
}

type rulePacksDocument struct {
	Packs []packSpec `yaml:"packs"`
}

func init() {
	var doc rulePacksDocument
	if err := yaml.Unmarshal(rulePacksYAML, &doc); err != nil {
		panic(fmt.Sprintf("rules: embedded rulepacks.yaml is malformed: %v", err))
	}
	for _, spec := range doc.Packs {
		register(Pack{
			Topic:        domain.CanonicalTopic(spec.Topic),
			ConfirmRules: compile(spec.ConfirmRules),
			RejectRules:  compile(spec.RejectRules),
		})
	}
}

func compile(specs []ruleSpec) []Rule {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		s := s
		rules = append(rules, Rule{Name: s.Name, Check: func(score float64, fields map[string]float64) bool {
			return applyOp(s, score, fields)
		}})
	}
	return rules
}

// applyOp evaluates one ruleSpec's op against a score and its parsed
// structured-reason fields (§4.7).
func applyOp(s ruleSpec, score float64, fields map[string]float64) bool {
	switch s.Op {
	case "score_gte":
		return score >= s.Value
	case "below_floor":
		return score < s.Value
	case "field_gte":
		return field(fields, s.Field) >= s.Value
	case "field_eq":
		return field(fields, s.Field) == s.Value
	case "field_zero":
		return field(fields, s.Field) == 0
	case "number_tolerance":
		return fieldOrInf(fields, s.Field) <= s.Value || field(fields, s.Field2) <= s.Value2
	default:
		return false
	}
}
