package msisdn_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futapay/relay/internal/msisdn"
)

func TestNormalizer_MSISDN(t *testing.T) {
	type args struct {
		raw     string
		country string
	}

	type testCase struct {
		name         string
		args         args
		want         string
		wantField    string
		wantExpected string
	}

	tests := []testCase{
		{name: "ZMB canonical", args: args{"260771234567", "ZMB"}, want: "260771234567"},
		{name: "ZMB local trunk zero", args: args{"0771234567", "ZMB"}, want: "260771234567"},
		{name: "ZMB plus prefix with spaces", args: args{"+260 77 123 4567", "ZMB"}, want: "260771234567"},
		{name: "ZMB international 00 prefix", args: args{"00260771234567", "ZMB"}, want: "260771234567"},
		{name: "ZMB trunk zero after calling code", args: args{"2600771234567", "ZMB"}, want: "260771234567"},
		{name: "ZMB doubled calling code", args: args{"260260771234567", "ZMB"}, want: "260771234567"},
		{name: "ZMB bare subscriber number", args: args{"771234567", "ZMB"}, want: "260771234567"},
		{name: "ZMB lower-case country", args: args{"0771234567", " zmb "}, want: "260771234567"},
		{
			name:         "ZMB too short",
			args:         args{"077123", "ZMB"},
			wantField:    msisdn.FieldPhoneNumber,
			wantExpected: "12 digits like 260763456789",
		},
		{
			name:         "ZMB wrong calling code",
			args:         args{"254771234567", "ZMB"},
			wantField:    msisdn.FieldPhoneNumber,
			wantExpected: "12 digits like 260763456789",
		},
		{name: "NGA local form", args: args{"08031234567", "NGA"}, want: "2348031234567"},
		{name: "EGY local form", args: args{"01012345678", "EGY"}, want: "201012345678"},
		{name: "KEN doubled calling code", args: args{"254254712345678", "KEN"}, want: "254712345678"},
		{name: "Unknown country keeps digits", args: args{"+44 (0)20 7946 0018", "GBR"}, want: "4402079460018"},
		{name: "Unknown country strips 00", args: args{"0044123", "GBR"}, want: "44123"},
		{name: "No digits", args: args{"abc", "ZMB"}, wantField: msisdn.FieldPhoneNumber},
		{name: "Bad country", args: args{"0771234567", "ZM"}, wantField: msisdn.FieldCountry},
	}

	n := msisdn.Default()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.MSISDN(tt.args.raw, tt.args.country)

			if tt.wantField != "" {
				var verr *msisdn.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)

				if tt.wantExpected != "" {
					assert.Equal(t, tt.wantExpected, verr.Expected)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizer_MSISDN_StrictFormsAgree(t *testing.T) {
	n := msisdn.Default()

	for _, rule := range msisdn.DefaultRules {
		t.Run(rule.Country, func(t *testing.T) {
			subscriber := rule.Example[len(rule.CallingCode):]

			forms := []string{
				rule.Example,
				"0" + subscriber,
				rule.CallingCode + rule.Example,
				"+" + rule.Example,
			}

			for _, form := range forms {
				got, err := n.MSISDN(form, rule.Country)
				require.NoError(t, err, form)
				assert.Equal(t, rule.Example, got, form)
				assert.Len(t, got, len(rule.CallingCode)+rule.SubscriberDigits)
			}
		})
	}
}

func TestNormalizer_Provider(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		country string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Label", input: "MTN MoMo", country: "ZMB", want: "MTN_MOMO_ZMB"},
		{name: "Label folded", input: "  airtel   MONEY ", country: "ZMB", want: "AIRTEL_OAPI_ZMB"},
		{name: "Label with accent", input: "Zámtel", country: "ZMB", want: "ZAMTEL_ZMB"},
		{name: "Code passthrough", input: "zamtel_zmb", country: "ZMB", want: "ZAMTEL_ZMB"},
		{name: "Same label other country", input: "MTN", country: "UGA", want: "MTN_MOMO_UGA"},
		{name: "Code from another country", input: "MTN_MOMO_UGA", country: "ZMB", wantErr: true},
		{name: "Unknown label", input: "Pigeon Post", country: "ZMB", wantErr: true},
		{name: "Unknown country", input: "MTN", country: "GBR", wantErr: true},
		{name: "Empty", input: " ", country: "ZMB", wantErr: true},
	}

	n := msisdn.Default()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Provider(tt.input, tt.country)
			if tt.wantErr {
				var verr *msisdn.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, msisdn.FieldProvider, verr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadProviderTable(t *testing.T) {
	csv := "# overrides\ncountry;label;code\nMWI;TNM Mpamba;TNM_MWI\n"

	table, err := msisdn.LoadProviderTable(strings.NewReader(csv))
	require.NoError(t, err)

	n := msisdn.New(msisdn.DefaultRules, table)

	got, err := n.Provider("tnm mpamba", "MWI")
	require.NoError(t, err)
	assert.Equal(t, "TNM_MWI", got)

	_, err = n.Provider("MTN", "ZMB")
	assert.Error(t, err)
}

func TestLoadProviderTable_MissingColumn(t *testing.T) {
	_, err := msisdn.LoadProviderTable(strings.NewReader("ZMB;;MTN_MOMO_ZMB\n"))
	assert.Error(t, err)
}
