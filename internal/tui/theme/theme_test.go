package theme

import "testing"

func TestByName(t *testing.T) {
	if got := ByName("tokyo-night"); got.Name != "tokyo-night" {
		t.Errorf("ByName(tokyo-night) = %q", got.Name)
	}
	if got := ByName("no-such-theme"); got.Name != FlexokiDark.Name {
		t.Errorf("unknown theme fell back to %q, want %q", got.Name, FlexokiDark.Name)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("got %d names, want %d", len(names), len(All))
	}
	for i, n := range names {
		if n != All[i].Name {
			t.Errorf("names[%d] = %q, want %q", i, n, All[i].Name)
		}
	}
}

func TestAmountColor(t *testing.T) {
	th := FlexokiDark
	if th.AmountColor(1) != th.Income {
		t.Error("positive should use the income color")
	}
	if th.AmountColor(-1) != th.Expense {
		t.Error("negative should use the expense color")
	}
	if th.AmountColor(0) != th.TextMuted {
		t.Error("zero should be muted")
	}
}
