package identity

import (
	"errors"
	"strings"
	"testing"
)

// FuzzDecode checks that any input without the scheme prefix is malformed and
// that decoding never panics.
func FuzzDecode(f *testing.F) {
	code, err := fixedCodec().Encode(sampleTrader())
	if err != nil {
		f.Fatal(err)
	}
	f.Add(code)
	f.Add("")
	f.Add("TRADER-ID/")
	f.Add("TRADER-ID/v9.abc.00000000")
	f.Add("LVY-20260101-ABCDEFGH")

	f.Fuzz(func(t *testing.T, input string) {
		payload, err := Decode(input)
		if !strings.HasPrefix(strings.TrimSpace(input), SchemePrefix) {
			var malformed *MalformedCodeError
			if !errors.As(err, &malformed) {
				t.Fatalf("input without prefix gave %v", err)
			}
			return
		}
		if err == nil && payload.TraderID.IsNil() {
			t.Fatal("decoded payload without trader id")
		}
	})
}
