package validator

import (
	"strings"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
	ruleErrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
)

// IsPaymentService reports whether a service name denotes the specialized
// payment capability. Service names are open-ended, so detection is by the
// "payment" word rather than a closed registry: "StripePayment",
// "PaymentGateway", and "payment" all qualify.
func IsPaymentService(serviceName string) bool {
	return strings.Contains(strings.ToLower(serviceName), "payment")
}

// validatePayment enforces the payment sub-schema: payerId and payeeId must
// be stakeholder references, the amount must be strictly positive money, and
// payer and payee must differ. All violations are accumulated so the author
// sees every problem at once.
func (v *Validator) validatePayment(rule *ast.Rule, errList *ruleErrors.ErrorList) *PaymentSpec {
	spec := &PaymentSpec{Metadata: make(map[string]string)}

	spec.PayerID = requireRef(rule, "payerId", errList)
	spec.PayeeID = requireRef(rule, "payeeId", errList)

	amount, ok := rule.Arg("amount")
	switch {
	case !ok:
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeMissingField,
			"payment service requires an 'amount' argument",
			rule.Location,
			"example: amount=$5.00",
		)
	case amount.Type != ast.ValueTypeMoney:
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeWrongType,
			"argument 'amount' must be a currency-prefixed amount",
			amount.Location,
			"example: amount=$5.00",
		)
	case !amount.Money.IsPositive():
		errList.AddError(
			ruleErrors.ErrorTypeWrongType,
			"argument 'amount' must be greater than zero",
			amount.Location,
		)
	default:
		spec.Amount = amount.Money
	}

	if spec.PayerID != "" && spec.PayerID == spec.PayeeID {
		errList.AddError(
			ruleErrors.ErrorTypeWrongType,
			"payerId and payeeId must reference different stakeholders",
			rule.Location,
		)
	}

	// Remaining arguments become payment metadata.
	for _, a := range rule.Args {
		switch a.Key {
		case "payerId", "payeeId", "amount", "fastTrack":
			continue
		}
		spec.Metadata[a.Key] = argString(a.Value)
	}

	return spec
}

// requireRef reads a required stakeholder-reference argument.
func requireRef(rule *ast.Rule, key string, errList *ruleErrors.ErrorList) string {
	v, ok := rule.Arg(key)
	if !ok {
		errList.AddErrorWithSuggestion(
			ruleErrors.ErrorTypeMissingField,
			"payment service requires a '"+key+"' argument",
			rule.Location,
			"example: "+key+"=u-12",
		)
		return ""
	}
	if v.Type != ast.ValueTypeReference {
		errList.AddError(
			ruleErrors.ErrorTypeWrongType,
			"argument '"+key+"' must be a stakeholder reference",
			v.Location,
		)
		return ""
	}
	return v.Ref
}
