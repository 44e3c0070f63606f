// Package config loads and validates reconciliation rules: the match window,
// the group list, the officer alias table and the lookup join settings.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/grouping"
	"github.com/agentstation/eventlink/pkg/linker"
	"github.com/agentstation/eventlink/pkg/matcher"
	"github.com/agentstation/eventlink/pkg/normalize"
	"github.com/agentstation/eventlink/pkg/reconciler"
)

//go:embed default_rules.yaml
var defaultRules []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rules is the immutable configuration of one reconciliation run.
type Rules struct {
	ToleranceDays      int               `yaml:"tolerance_days" json:"tolerance_days" validate:"gte=0"`
	WindowMode         string            `yaml:"window_mode" json:"window_mode" validate:"omitempty,oneof=backward symmetric"`
	MatchMode          string            `yaml:"match_mode" json:"match_mode" validate:"omitempty,oneof=aggregate-all nearest-only"`
	Groups             []grouping.Group  `yaml:"groups" json:"groups" validate:"required,min=1,dive"`
	AliasCaseSensitive bool              `yaml:"alias_case_sensitive" json:"alias_case_sensitive"`
	Aliases            map[string]string `yaml:"aliases" json:"aliases" validate:"dive,keys,required,endkeys,required"`
	JoinKey            string            `yaml:"join_key" json:"join_key" validate:"required"`
	KeyTrim            bool              `yaml:"key_trim" json:"key_trim"`
	KeyFold            bool              `yaml:"key_fold" json:"key_fold"`
	DuplicatePolicy    string            `yaml:"duplicate_policy" json:"duplicate_policy" validate:"omitempty,oneof=cross-product first-match"`
	RequiredLookups    []string          `yaml:"required_lookups" json:"required_lookups" validate:"dive,required"`
	Workers            int               `yaml:"workers" json:"workers" validate:"gte=0"`
}

// rulesFile mirrors Rules with optional fields so that a file only
// overrides the keys it sets.
type rulesFile struct {
	ToleranceDays      *int              `yaml:"tolerance_days"`
	WindowMode         *string           `yaml:"window_mode"`
	MatchMode          *string           `yaml:"match_mode"`
	Groups             []grouping.Group  `yaml:"groups"`
	AliasCaseSensitive *bool             `yaml:"alias_case_sensitive"`
	Aliases            map[string]string `yaml:"aliases"`
	JoinKey            *string           `yaml:"join_key"`
	KeyTrim            *bool             `yaml:"key_trim"`
	KeyFold            *bool             `yaml:"key_fold"`
	DuplicatePolicy    *string           `yaml:"duplicate_policy"`
	RequiredLookups    []string          `yaml:"required_lookups"`
	Workers            *int              `yaml:"workers"`
}

// Default returns the built-in rules.
func Default() *Rules {
	rules := &Rules{}
	if err := yaml.Unmarshal(defaultRules, rules); err != nil {
		panic(fmt.Sprintf("config: embedded default rules: %v", err))
	}
	return rules
}

// Load reads a rules file and applies it over the defaults.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("rules file", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse applies a YAML rules document over the defaults and validates the result.
// Keys that are present replace the default value; lists and maps are
// replaced whole, not merged.
func Parse(data []byte, source string) (*Rules, error) {
	var file rulesFile
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.NewParseError("yaml", source, yaml.FormatError(err, false, true), err)
	}

	rules := Default()
	rules.apply(file)

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *Rules) apply(f rulesFile) {
	setIf(&r.ToleranceDays, f.ToleranceDays)
	setIf(&r.WindowMode, f.WindowMode)
	setIf(&r.MatchMode, f.MatchMode)
	setIf(&r.AliasCaseSensitive, f.AliasCaseSensitive)
	setIf(&r.JoinKey, f.JoinKey)
	setIf(&r.KeyTrim, f.KeyTrim)
	setIf(&r.KeyFold, f.KeyFold)
	setIf(&r.DuplicatePolicy, f.DuplicatePolicy)
	setIf(&r.Workers, f.Workers)
	if f.Groups != nil {
		r.Groups = f.Groups
	}
	if f.Aliases != nil {
		r.Aliases = f.Aliases
	}
	if f.RequiredLookups != nil {
		r.RequiredLookups = f.RequiredLookups
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks field constraints and builds the alias table and group
// index once to surface conflicts.
func (r *Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fieldName(fe.Namespace()), fe.Value(),
				fmt.Sprintf("failed %q rule %s", fe.Tag(), fe.Param()))
		}
		return errors.WrapValidation("rules", err)
	}
	if _, err := r.AliasTable(); err != nil {
		return err
	}
	if _, err := grouping.NewIndex(r.Groups); err != nil {
		return err
	}
	return nil
}

// fieldName turns "Rules.Groups[0].Label" into "groups[0].label".
func fieldName(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}
	return strings.ToLower(rest)
}

// AliasTable builds the officer alias table.
func (r *Rules) AliasTable() (*normalize.AliasTable, error) {
	return normalize.NewAliasTable(r.Aliases, r.AliasCaseSensitive)
}

// MatchOptions returns the matcher configuration.
func (r *Rules) MatchOptions() matcher.Options {
	return matcher.Options{
		Tolerance: matcher.ToleranceDays(r.ToleranceDays),
		Window:    matcher.WindowMode(r.WindowMode),
		Mode:      matcher.MatchMode(r.MatchMode),
	}
}

// LinkOptions returns the lookup join configuration.
func (r *Rules) LinkOptions() linker.Options {
	return linker.Options{
		JoinKey:  r.JoinKey,
		Trim:     r.KeyTrim,
		Fold:     r.KeyFold,
		Policy:   linker.DuplicatePolicy(r.DuplicatePolicy),
		Required: r.RequiredLookups,
	}
}

// Options converts the rules to reconciler options.
func (r *Rules) Options() ([]reconciler.Option, error) {
	aliases, err := r.AliasTable()
	if err != nil {
		return nil, err
	}
	match := r.MatchOptions()
	return []reconciler.Option{
		reconciler.WithGroups(r.Groups...),
		reconciler.WithAliases(aliases),
		reconciler.WithTolerance(match.Tolerance),
		reconciler.WithWindowMode(match.Window),
		reconciler.WithMatchMode(match.Mode),
		reconciler.WithLinkOptions(r.LinkOptions()),
		reconciler.WithWorkers(r.Workers),
	}, nil
}

// Reconciler builds a reconciler from the rules.
func (r *Rules) Reconciler() (reconciler.Reconciler, error) {
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}
	return reconciler.New(opts...)
}

// Marshal renders the rules as YAML.
func (r *Rules) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
