package msisdn

// Rule describes how subscriber numbers are written in one country.
type Rule struct {
	Country          string // ISO 3166-1 alpha-3
	CallingCode      string
	SubscriberDigits int
	Example          string
}

// DefaultRules covers the corridors the app currently offers.
var DefaultRules = []Rule{
	{Country: "ZMB", CallingCode: "260", SubscriberDigits: 9, Example: "260763456789"},
	{Country: "KEN", CallingCode: "254", SubscriberDigits: 9, Example: "254712345678"},
	{Country: "UGA", CallingCode: "256", SubscriberDigits: 9, Example: "256772123456"},
	{Country: "COD", CallingCode: "243", SubscriberDigits: 9, Example: "243812345678"},
	{Country: "NGA", CallingCode: "234", SubscriberDigits: 10, Example: "2348031234567"},
	{Country: "EGY", CallingCode: "20", SubscriberDigits: 10, Example: "201012345678"},
}

func (r Rule) length() int {
	return len(r.CallingCode) + r.SubscriberDigits
}

// canonical rewrites the accepted local and malformed-international forms to
// calling code + subscriber number. The result is not validated.
func (r Rule) canonical(digits string) string {
	cc := r.CallingCode
	n := r.SubscriberDigits

	switch {
	case len(digits) == n+1 && digits[0] == '0':
		return cc + digits[1:]
	case len(digits) == n && digits[0] != '0':
		return cc + digits
	case len(digits) == 2*len(cc)+n && digits[:2*len(cc)] == cc+cc:
		return digits[len(cc):]
	case len(digits) == len(cc)+1+n && digits[:len(cc)+1] == cc+"0":
		return cc + digits[len(cc)+1:]
	}

	return digits
}

func (r Rule) valid(msisdn string) bool {
	return len(msisdn) == r.length() && msisdn[:len(r.CallingCode)] == r.CallingCode
}
