package literal

import "testing"

func TestMapServerTypeSimple(t *testing.T) {
	cases := map[string]HostType{
		"int":       HostInt,
		"VARCHAR":   HostVarchar,
		"decimal":   HostDecimal,
		"timestamp": HostTimestamp,
		"uuid":      HostUUID,
	}
	for name, want := range cases {
		if got := MapServerType(name, 0); got != want {
			t.Errorf("MapServerType(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMapServerTypeUnknown(t *testing.T) {
	if got := MapServerType("frobnicate", 0); got != HostUnknown {
		t.Errorf("got %v, want HostUnknown", got)
	}
}

func TestMapServerTypeIntervalFamilies(t *testing.T) {
	if got := MapServerType("month_interval", 1); got != HostIntervalYear {
		t.Errorf("got %v", got)
	}
	if got := MapServerType("sec_interval", 10); got != HostIntervalSecond {
		t.Errorf("got %v", got)
	}
}
