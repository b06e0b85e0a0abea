// Package kb содержит базу знаний ассистента: грамматические правила A1,
// таблицы ключевых слов интентов, маршрутизацию по темам и фиксированные
// строки ответов. Набор неизменяем после загрузки и передаётся в движок
// по ссылке, поэтому в тестах его можно подменить целиком.
package kb

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embedded []byte

// Идентификаторы правил грамматической базы. Набор закрыт.
const (
	RuleWordOrder         = "word_order"
	RuleSenSiz            = "sen_siz"
	RulePresentEndings    = "present_endings"
	RulePlural            = "plural"
	RuleQuestionParticles = "question_particles"
	RuleCasesIntro        = "cases_intro"
	RuleNegationIntro     = "negation_intro"
	RuleAffixes           = "affixes"
	RuleDefault           = "default"
)

var allRuleKeys = []string{
	RuleWordOrder, RuleSenSiz, RulePresentEndings, RulePlural,
	RuleQuestionParticles, RuleCasesIntro, RuleNegationIntro,
	RuleAffixes, RuleDefault,
}

// Rule — одно правило грамматики: объяснение и упорядоченный список примеров.
type Rule struct {
	Explanation string   `yaml:"explanation"`
	Examples    []string `yaml:"examples"`
}

// IntentKeywords — ключевые слова одного интента. Порядок элементов в
// Ruleset.Intents задаёт приоритет классификатора.
type IntentKeywords struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// RuleRoute — группа ключевых слов, ведущая к правилу грамматики.
type RuleRoute struct {
	Rule     string   `yaml:"rule"`
	Keywords []string `yaml:"keywords"`
}

// Responses — фиксированные строки ответов.
type Responses struct {
	TestMode            string   `yaml:"test_mode"`
	Fallback            string   `yaml:"fallback"`
	FallbackSuggestions []string `yaml:"fallback_suggestions"`
	EmptyBlock          string   `yaml:"empty_block"`
}

// Ruleset — полный набор данных ассистента, загружаемый один раз при старте.
type Ruleset struct {
	Intents   []IntentKeywords  `yaml:"intents"`
	Routes    []RuleRoute       `yaml:"routes"`
	Rules     map[string]Rule   `yaml:"rules"`
	Spelling  map[string]string `yaml:"spelling"`
	Responses Responses         `yaml:"responses"`
}

// Rule возвращает правило по ключу, либо default, если ключа нет.
// Пустой ключ тоже ведёт к default.
func (rs *Ruleset) Rule(key string) Rule {
	if key != "" {
		if r, ok := rs.Rules[key]; ok {
			return r
		}
	}
	return rs.Rules[RuleDefault]
}

// Parse разбирает YAML-документ набора правил и проверяет его полноту.
func Parse(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("kb: parse rules: %w", err)
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Load читает набор правил из внешнего файла (rules_path в конфиге).
func Load(path string) (*Ruleset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kb: read rules %s: %w", path, err)
	}
	return Parse(b)
}

var (
	defaultOnce sync.Once
	defaultSet  *Ruleset
	defaultErr  error
)

// Default возвращает встроенный набор правил. Паникует только если
// встроенный rules.yaml битый, то есть при ошибке сборки.
func Default() *Ruleset {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Parse(embedded)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultSet
}

func (rs *Ruleset) validate() error {
	if len(rs.Intents) == 0 {
		return fmt.Errorf("kb: no intents defined")
	}
	for _, ik := range rs.Intents {
		if ik.Intent == "" || len(ik.Keywords) == 0 {
			return fmt.Errorf("kb: intent %q has no keywords", ik.Intent)
		}
	}
	for _, key := range allRuleKeys {
		r, ok := rs.Rules[key]
		if !ok {
			return fmt.Errorf("kb: missing grammar rule %q", key)
		}
		if r.Explanation == "" || len(r.Examples) == 0 {
			return fmt.Errorf("kb: grammar rule %q is incomplete", key)
		}
	}
	for _, rt := range rs.Routes {
		if _, ok := rs.Rules[rt.Rule]; !ok {
			return fmt.Errorf("kb: route points to unknown rule %q", rt.Rule)
		}
	}
	if rs.Responses.TestMode == "" || rs.Responses.Fallback == "" || rs.Responses.EmptyBlock == "" {
		return fmt.Errorf("kb: fixed responses are incomplete")
	}
	return nil
}
