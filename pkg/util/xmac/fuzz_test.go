package xmac

import "testing"

func FuzzParse(f *testing.F) {
	for _, seed := range []string{sample48, sample64, "246D.5EBB.99CC", "AAAA", "asdfasdf", "", "::::"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		addr, err := Parse(s)
		if err != nil {
			return
		}
		if bits := Validate(addr.Digits()); bits != addr.Bits() {
			t.Fatalf("Validate(%q) = %d, Bits() = %d", addr.Digits(), bits, addr.Bits())
		}
		for _, n := range []Notation{NotationNone, NotationColon, NotationPeriod, NotationHyphen, NotationSpace} {
			back, err := Parse(addr.Format(n, Lower))
			if err != nil {
				t.Fatalf("Parse(Format(%v)) error: %v", n, err)
			}
			if !back.Equal(addr) {
				t.Fatalf("round trip via %v: %v != %v", n, back, addr)
			}
		}
		dec, err := FromDecimal(addr.Decimal(), addr.Bits())
		if err != nil || !dec.Equal(addr) {
			t.Fatalf("FromDecimal round trip: %v, %v", dec, err)
		}
	})
}

func FuzzNormalize(f *testing.F) {
	f.Add("24:6d:5e")
	f.Add("x")
	f.Fuzz(func(t *testing.T, s string) {
		digits, err := Normalize(s)
		if err != nil {
			return
		}
		for i := 0; i < len(digits); i++ {
			if c := digits[i]; !('0' <= c && c <= '9' || 'A' <= c && c <= 'F') {
				t.Fatalf("Normalize(%q) = %q contains %q", s, digits, c)
			}
		}
	})
}
