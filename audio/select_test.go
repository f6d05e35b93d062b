package audio

import "testing"

func TestPreferredSkipsVirtual(t *testing.T) {
	devices := []DeviceInfo{
		{ID: "0", Name: "Virtual Loopback Input"},
		{ID: "1", Name: "Built-in Microphone"},
	}
	got := Preferred(devices)
	if got == nil {
		t.Fatal("expected a device, got nil")
	}
	if got.Name != "Built-in Microphone" {
		t.Errorf("Preferred = %q, want Built-in Microphone", got.Name)
	}
}

func TestPreferredAllVirtualFallsBack(t *testing.T) {
	devices := []DeviceInfo{
		{ID: "0", Name: "BlackHole 2ch"},
		{ID: "1", Name: "Aggregate Device"},
		{ID: "2", Name: "Soundflower (64ch)"},
	}
	if got := Preferred(devices); got != nil {
		t.Errorf("Preferred = %q, want nil (system default)", got.Name)
	}
}

func TestPreferredEmpty(t *testing.T) {
	if got := Preferred(nil); got != nil {
		t.Errorf("Preferred(nil) = %q, want nil", got.Name)
	}
}

func TestIsVirtual(t *testing.T) {
	for _, tt := range []struct {
		name string
		want bool
	}{
		{"BlackHole 2ch", true},
		{"Loopback Audio", true},
		{"My Virtual Mic", true},
		{"Aggregate Device", true},
		{"Soundflower (2ch)", true},
		{"Built-in Microphone", false},
		{"MacBook Pro Microphone", false},
		{"USB PnP Sound Device", false},
	} {
		if got := IsVirtual(tt.name); got != tt.want {
			t.Errorf("IsVirtual(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsBluetooth(t *testing.T) {
	if !IsBluetooth("Jabra Elite 75t") {
		t.Error("expected Jabra to be detected as bluetooth")
	}
	if IsBluetooth("Built-in Microphone") {
		t.Error("built-in mic flagged as bluetooth")
	}
}
