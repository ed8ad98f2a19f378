package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	ruleErrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
)

// semverPattern validates semantic version strings (e.g., "1.0.0", "2.1.3").
var semverPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(-[a-zA-Z0-9.-]+)?$`)

// ValidRule is a rule that passed schema validation, paired with its
// kind-specific payload. The dispatcher matches exhaustively on the payload
// type instead of re-inspecting raw arguments.
type ValidRule struct {
	Rule *ast.Rule  // The validated AST node
	Spec TargetSpec // Kind-specific payload (ForumSpec, ServiceSpec, PolicySpec)
}

// TargetSpec is the tagged union of kind-specific rule payloads.
// Exactly three types implement it: ForumSpec, ServiceSpec, and PolicySpec.
type TargetSpec interface {
	Kind() ast.TargetKind
}

// ForumSpec is the validated payload of a Forum rule.
type ForumSpec struct {
	DisplayName    string   // Forum title (the rule target)
	DefaultMembers []string // Stakeholders to seed at creation, role "member"
	Public         bool     // Whether the forum is publicly joinable
}

// Kind implements TargetSpec.
func (ForumSpec) Kind() ast.TargetKind { return ast.KindForum }

// ServiceSpec is the validated payload of a Service rule.
type ServiceSpec struct {
	ServiceName string            // External capability name (the rule target)
	FastTrack   bool              // Move the activation straight to running
	Config      map[string]string // Remaining arguments, stringified passthrough
	Payment     *PaymentSpec      // Non-nil for payment-kind services
}

// Kind implements TargetSpec.
func (ServiceSpec) Kind() ast.TargetKind { return ast.KindService }

// PaymentSpec is the stricter sub-schema for payment-kind Service rules.
type PaymentSpec struct {
	PayerID  string    // Paying stakeholder reference
	PayeeID  string    // Receiving stakeholder reference
	Amount   ast.Money // Strictly positive amount
	Metadata map[string]string
}

// PolicySpec is the validated payload of a Policy rule.
type PolicySpec struct {
	TemplateRef string // Referenced policy template (the rule target)
	Version     string // Requested template version; empty means latest
}

// Kind implements TargetSpec.
func (PolicySpec) Kind() ast.TargetKind { return ast.KindPolicy }

// Validator enforces the required-argument schema per target kind.
type Validator struct{}

// New creates a new validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks a parsed rule against its kind's schema.
// On success it returns a ValidRule carrying the kind-specific payload; on
// failure it returns an ErrorList of every schema violation found.
func (v *Validator) Validate(rule *ast.Rule) (*ValidRule, error) {
	if rule == nil {
		return nil, &ruleErrors.Error{
			Type:    ruleErrors.ErrorTypeUnknownKind,
			Message: "no rule to validate",
		}
	}

	errList := ruleErrors.NewErrorList()

	var spec TargetSpec
	switch rule.Kind {
	case ast.KindForum:
		spec = v.validateForum(rule, errList)
	case ast.KindService:
		spec = v.validateService(rule, errList)
	case ast.KindPolicy:
		spec = v.validatePolicy(rule, errList)
	default:
		errList.AddError(
			ruleErrors.ErrorTypeUnknownKind,
			fmt.Sprintf("unknown target kind %q", rule.Kind),
			rule.Location,
		)
	}

	if err := errList.ToError(); err != nil {
		return nil, err
	}
	return &ValidRule{Rule: rule, Spec: spec}, nil
}

// validateForum checks the Forum rule schema: a non-empty display name,
// an optional comma-separated members list, and an optional public flag.
func (v *Validator) validateForum(rule *ast.Rule, errList *ruleErrors.ErrorList) ForumSpec {
	spec := ForumSpec{DisplayName: strings.TrimSpace(rule.Target)}

	if spec.DisplayName == "" {
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeMissingField,
			"Forum rule requires a target display name",
			rule.Location,
			`example: rule intake -> Forum("Housing Intake")`,
		)
	}

	if members, ok := rule.Arg("members"); ok {
		if members.Type != ast.ValueTypeString {
			errList.AddError(
				ruleErrors.ErrorTypeWrongType,
				"argument 'members' must be a quoted comma-separated list of stakeholder ids",
				members.Location,
			)
		} else {
			for _, m := range strings.Split(members.Str, ",") {
				if id := strings.TrimSpace(m); id != "" {
					spec.DefaultMembers = append(spec.DefaultMembers, id)
				}
			}
		}
	}

	spec.Public = boolArg(rule, "public", errList)
	return spec
}

// validateService checks the Service rule schema. The payment sub-schema
// applies when the service name denotes the payment capability.
func (v *Validator) validateService(rule *ast.Rule, errList *ruleErrors.ErrorList) ServiceSpec {
	spec := ServiceSpec{
		ServiceName: strings.TrimSpace(rule.Target),
		Config:      make(map[string]string),
	}

	if spec.ServiceName == "" {
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeMissingField,
			"Service rule requires a service name",
			rule.Location,
			`example: rule check -> Service("EligibilityCheck")`,
		)
		return spec
	}

	spec.FastTrack = boolArg(rule, "fastTrack", errList)

	if IsPaymentService(spec.ServiceName) {
		spec.Payment = v.validatePayment(rule, errList)
	}

	// Forward-compatible passthrough of the remaining arguments.
	for _, a := range rule.Args {
		switch a.Key {
		case "fastTrack", "payerId", "payeeId", "amount":
			continue
		}
		spec.Config[a.Key] = argString(a.Value)
	}

	return spec
}

// validatePolicy checks the Policy rule schema: a non-empty template
// reference and an optional semantic version.
func (v *Validator) validatePolicy(rule *ast.Rule, errList *ruleErrors.ErrorList) PolicySpec {
	spec := PolicySpec{TemplateRef: strings.TrimSpace(rule.Target)}

	if spec.TemplateRef == "" {
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeMissingField,
			"Policy rule requires a policy reference",
			rule.Location,
			`example: rule addPharmacy -> Policy("PrescriptionFulfillment")`,
		)
	}

	if version, ok := rule.Arg("version"); ok {
		switch {
		case version.Type != ast.ValueTypeString && version.Type != ast.ValueTypeReference:
			errList.AddError(
				ruleErrors.ErrorTypeWrongType,
				"argument 'version' must be a version string",
				version.Location,
			)
		default:
			value := version.Str
			if version.Type == ast.ValueTypeReference {
				value = version.Ref
			}
			if !semverPattern.MatchString(value) {
				errList.AddErrorWithSuggestion(
					ruleErrors.ErrorTypeWrongType,
					fmt.Sprintf("argument 'version' is not a semantic version: %q", value),
					version.Location,
					`example: version="1.2.0"`,
				)
			}
			spec.Version = value
		}
	}

	return spec
}

// boolArg reads an optional boolean-like argument. Booleans are written as
// the bare identifiers true/false in rule text.
func boolArg(rule *ast.Rule, key string, errList *ruleErrors.ErrorList) bool {
	v, ok := rule.Arg(key)
	if !ok {
		return false
	}
	if v.Type != ast.ValueTypeReference || (v.Ref != "true" && v.Ref != "false") {
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeWrongType,
			fmt.Sprintf("argument %q must be true or false", key),
			v.Location,
			fmt.Sprintf("example: %s=true", key),
		)
		return false
	}
	return v.Ref == "true"
}

// argString renders any argument value as its passthrough string form.
func argString(v ast.Value) string {
	if v.Type == ast.ValueTypeString {
		return v.Str
	}
	return v.String()
}
