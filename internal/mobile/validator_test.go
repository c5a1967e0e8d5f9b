package mobile

import "testing"

func TestValidateNumber(t *testing.T) {
	cases := []struct {
		number  string
		carrier Carrier
		want    bool
	}{
		// Vodacom: 84, 85 prefixes.
		{"841234567", CarrierVodacom, true},
		{"851234567", CarrierVodacom, true},
		{"84 123 4567", CarrierVodacom, true},
		{"84-123-4567", CarrierVodacom, true},
		// Movitel: 86, 87 prefixes.
		{"861234567", CarrierMovitel, true},
		{"871234567", CarrierMovitel, true},
		// Wrong carrier for prefix.
		{"861234567", CarrierVodacom, false},
		{"841234567", CarrierMovitel, false},
		// Unknown prefix rejected by both.
		{"821234567", CarrierVodacom, false},
		{"821234567", CarrierMovitel, false},
		// Wrong length.
		{"84123456", CarrierVodacom, false},
		{"8412345678", CarrierVodacom, false},
		// Garbage input never panics, just fails.
		{"", CarrierVodacom, false},
		{"not a number", CarrierVodacom, false},
		{"84abc4567", CarrierVodacom, false},
		// Country code is not part of the subscriber number.
		{"+258841234567", CarrierVodacom, false},
		// Unknown carrier tag.
		{"841234567", Carrier("tmcel"), false},
	}
	for _, c := range cases {
		if got := ValidateNumber(c.number, c.carrier); got != c.want {
			t.Errorf("ValidateNumber(%q, %q): got %v, want %v", c.number, c.carrier, got, c.want)
		}
	}
}

func TestParseCarrier(t *testing.T) {
	if c, ok := ParseCarrier(" Vodacom "); !ok || c != CarrierVodacom {
		t.Errorf("ParseCarrier(Vodacom): got %q, %v", c, ok)
	}
	if c, ok := ParseCarrier("movitel"); !ok || c != CarrierMovitel {
		t.Errorf("ParseCarrier(movitel): got %q, %v", c, ok)
	}
	if _, ok := ParseCarrier("orange"); ok {
		t.Error("ParseCarrier(orange): expected not ok")
	}
}

func TestCarrierInfo(t *testing.T) {
	info, ok := CarrierInfo(CarrierVodacom)
	if !ok || info.Wallet != "M-Pesa" {
		t.Errorf("CarrierInfo(vodacom): got %+v, %v", info, ok)
	}
	info, ok = CarrierInfo(CarrierMovitel)
	if !ok || info.Wallet != "eMola" {
		t.Errorf("CarrierInfo(movitel): got %+v, %v", info, ok)
	}
	if _, ok := CarrierInfo(Carrier("tmcel")); ok {
		t.Error("CarrierInfo(tmcel): expected not ok")
	}
}

func TestValidateNIF(t *testing.T) {
	cases := []struct {
		nif  string
		want bool
	}{
		{"123456789", true},
		{"123 456 789", true},
		{"12345678", false},
		{"1234567890", false},
		{"12345678a", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidateNIF(c.nif); got != c.want {
			t.Errorf("ValidateNIF(%q): got %v, want %v", c.nif, got, c.want)
		}
	}
}
