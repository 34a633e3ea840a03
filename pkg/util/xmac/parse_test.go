package xmac

import (
	"errors"
	"testing"
)

const (
	sample48 = "24:6D:5E:BB:99:CC"
	sample64 = "24:6D:5E:00:00:BB:99:DD"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"colon", "24:6d:5e:bb:99:cc", "246D5EBB99CC", nil},
		{"hyphen", "24-6D-5E-BB-99-CC", "246D5EBB99CC", nil},
		{"period", "246d.5ebb.99cc", "246D5EBB99CC", nil},
		{"space", "24 6D 5E BB 99 CC", "246D5EBB99CC", nil},
		{"mixed", "24:6D-5E.BB 99CC", "246D5EBB99CC", nil},
		{"oui_only", "24-6d-5e", "246D5E", nil},
		{"surrounding_space", "  246d5e  ", "246D5E", nil},
		{"non_hex", "asdfasdf", "", ErrInvalidFormat},
		{"unicode", "24:6D:5É", "", ErrInvalidFormat},
		{"only_delimiters", ":-. ", "", ErrEmpty},
		{"empty", "", "", ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestErrEmpty_IsFormatError(t *testing.T) {
	if !errors.Is(ErrEmpty, ErrInvalidFormat) {
		t.Error("ErrEmpty should match ErrInvalidFormat")
	}
}

func TestNormalizeUint(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{40052159388108, "246D5EBB99CC"},
		{2624857511932172765, "246D5E0000BB99DD"},
		{0xAB, "AB"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := NormalizeUint(tt.n); got != tt.want {
			t.Errorf("NormalizeUint(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		digits string
		want   int
	}{
		{"246D5EBB99CC", 48},
		{"246D5E0000BB99DD", 64},
		{"246D5E", 0},
		{"246D5EBB99C", 0},
		{"246D5EBB99CCD", 0},
		{"246D5EBB99CC00000000", 0},
		{"246D5EBB99CG", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Validate(tt.digits); got != tt.want {
			t.Errorf("Validate(%q) = %d, want %d", tt.digits, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantDigits   string
		wantBits     int
		wantNotation Notation
		wantErr      error
	}{
		{"colon48", sample48, "246D5EBB99CC", 48, NotationColon, nil},
		{"period48", "246D.5EBB.99CC", "246D5EBB99CC", 48, NotationPeriod, nil},
		{"hyphen48", "24-6d-5e-bb-99-cc", "246D5EBB99CC", 48, NotationHyphen, nil},
		{"space48", "24 6D 5E BB 99 CC", "246D5EBB99CC", 48, NotationSpace, nil},
		{"clean48", "246d5ebb99cc", "246D5EBB99CC", 48, NotationNone, nil},
		{"colon64", sample64, "246D5E0000BB99DD", 64, NotationColon, nil},
		{"period64", "246D.5E00.00BB.99DD", "246D5E0000BB99DD", 64, NotationPeriod, nil},
		{"all_zero", "00:00:00:00:00:00", "000000000000", 48, NotationColon, nil},
		{"too_short", "24:6D:5E", "", 0, 0, ErrInvalidLength},
		{"between_widths", "24:6D:5E:BB:99:CC:AA", "", 0, 0, ErrInvalidLength},
		{"too_long", "246D5EBB99CC246D5EBB99CC", "", 0, 0, ErrInvalidLength},
		{"bad_char", "24:6D:5E:BB:99:ZZ", "", 0, 0, ErrInvalidFormat},
		{"empty", "", "", 0, 0, ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				if addr.IsValid() {
					t.Errorf("Parse(%q) returned a valid address on error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got := addr.Digits(); got != tt.wantDigits {
				t.Errorf("Digits() = %q, want %q", got, tt.wantDigits)
			}
			if got := addr.Bits(); got != tt.wantBits {
				t.Errorf("Bits() = %d, want %d", got, tt.wantBits)
			}
			if got := addr.Notation(); got != tt.wantNotation {
				t.Errorf("Notation() = %v, want %v", got, tt.wantNotation)
			}
		})
	}
}

func TestParseUint(t *testing.T) {
	addr, err := ParseUint(40052159388108)
	if err != nil {
		t.Fatalf("ParseUint() error: %v", err)
	}
	if !addr.Equal(MustParse(sample48)) {
		t.Errorf("ParseUint() = %v, want %v", addr, sample48)
	}

	// 前导 0 被整数表示丢弃，长度不足 12 位
	if _, err := ParseUint(0x0A0000000001); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("ParseUint(leading zero) error = %v, want ErrInvalidLength", err)
	}
}

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		name    string
		value   uint64
		bits    int
		want    string
		wantErr error
	}{
		{"sample48", 40052159388108, 48, "246D5EBB99CC", nil},
		{"sample64", 2624857511932172765, 64, "246D5E0000BB99DD", nil},
		{"pad48", 1, 48, "000000000001", nil},
		{"pad64", 0xAB, 64, "00000000000000AB", nil},
		{"max48", 281474976710655, 48, "FFFFFFFFFFFF", nil},
		{"over48", 281474976710656, 48, "", ErrOutOfRange},
		{"sample64_as_48", 2624857511932172765, 48, "", ErrOutOfRange},
		{"max64", ^uint64(0), 64, "FFFFFFFFFFFFFFFF", nil},
		{"bad_bits", 1, 32, "", ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := FromDecimal(tt.value, tt.bits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromDecimal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromDecimal() unexpected error: %v", err)
			}
			if got := addr.Digits(); got != tt.want {
				t.Errorf("Digits() = %q, want %q", got, tt.want)
			}
			if got := addr.Decimal(); got != tt.value {
				t.Errorf("Decimal() = %d, want %d", got, tt.value)
			}
		})
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{sample48, sample64, "00:00:00:00:00:01", "FF:FF:FF:FF:FF:FF:FF:FF"} {
		a := MustParse(s)
		back, err := FromDecimal(a.Decimal(), a.Bits())
		if err != nil {
			t.Fatalf("FromDecimal(%s) error: %v", s, err)
		}
		if back.Decimal() != a.Decimal() {
			t.Errorf("round trip of %s = %d, want %d", s, back.Decimal(), a.Decimal())
		}
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("AAAA")
}
