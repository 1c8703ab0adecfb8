package msisdn

import (
	"fmt"
	"strings"
)

const (
	FieldPhoneNumber = "phoneNumber"
	FieldProvider    = "provider"
	FieldCountry     = "countryCode"
)

// Normalizer turns raw recipient input into the identifiers the payout
// processor understands. It does no I/O and is safe for concurrent use.
type Normalizer struct {
	rules     map[string]Rule
	providers *ProviderTable
}

func New(rules []Rule, providers *ProviderTable) *Normalizer {
	byCountry := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byCountry[r.Country] = r
	}

	if providers == nil {
		providers = &ProviderTable{}
	}

	return &Normalizer{rules: byCountry, providers: providers}
}

// Default uses DefaultRules and the embedded provider table.
func Default() *Normalizer {
	return New(DefaultRules, DefaultProviderTable())
}

// Country canonicalizes an ISO alpha-3 country code.
func Country(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return "", &ValidationError{
			Field:    FieldCountry,
			Value:    code,
			Expected: "an ISO 3166-1 alpha-3 code like ZMB",
			Reason:   "invalid country code",
		}
	}

	return c, nil
}

// MSISDN returns the canonical digits-only number for raw in the given
// country. Countries without a rule only get digit stripping.
func (n *Normalizer) MSISDN(raw, country string) (string, error) {
	iso, err := Country(country)
	if err != nil {
		return "", err
	}

	digits := digitsOnly(raw)
	digits = strings.TrimPrefix(digits, "00")

	if digits == "" {
		return "", &ValidationError{
			Field:   FieldPhoneNumber,
			Value:   raw,
			Country: iso,
			Reason:  "phone number contains no digits",
		}
	}

	rule, ok := n.rules[iso]
	if !ok {
		return digits, nil
	}

	msisdn := rule.canonical(digits)
	if !rule.valid(msisdn) {
		return "", &ValidationError{
			Field:    FieldPhoneNumber,
			Value:    raw,
			Country:  iso,
			Expected: fmt.Sprintf("%d digits like %s", rule.length(), rule.Example),
			Reason:   fmt.Sprintf("invalid %s MSISDN %q", iso, msisdn),
		}
	}

	return msisdn, nil
}

// Provider resolves a provider label or code to the payout processor's code.
func (n *Normalizer) Provider(labelOrCode, country string) (string, error) {
	iso, err := Country(country)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(labelOrCode) == "" {
		return "", &ValidationError{
			Field:   FieldProvider,
			Country: iso,
			Reason:  "missing provider",
		}
	}

	code, ok := n.providers.Resolve(labelOrCode, iso)
	if !ok {
		return "", &ValidationError{
			Field:    FieldProvider,
			Value:    labelOrCode,
			Country:  iso,
			Expected: n.providers.describe(iso),
			Reason:   fmt.Sprintf("no provider mapping for %q in %s", labelOrCode, iso),
		}
	}

	return code, nil
}

func digitsOnly(s string) string {
	var sb strings.Builder

	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
