package inspect

import "testing"

func TestValueFlags_Has(t *testing.T) {
	tests := []struct {
		name     string
		flags    ValueFlags
		flag     ValueFlags
		expected bool
	}{
		{"single set", FlagEvaluating, FlagEvaluating, true},
		{"single unset", FlagEvaluating, FlagError, false},
		{"combined contains member", FlagHasChildren | FlagEnumerable, FlagEnumerable, true},
		{"combined query all set", FlagHasChildren | FlagEnumerable, FlagHasChildren | FlagEnumerable, true},
		{"combined query partially set", FlagHasChildren, FlagHasChildren | FlagEnumerable, false},
		{"zero flags", 0, FlagNull, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.flags.Has(tt.flag) != tt.expected {
				t.Errorf("Has(%v) = %v, expected %v", tt.flag, tt.flags.Has(tt.flag), tt.expected)
			}
		})
	}
}

func TestStaticValue_OnChanged_Cancel(t *testing.T) {
	v := NewStaticValue("x", "", FlagEvaluating)

	fired := 0
	cancel := v.OnChanged(func() { fired++ })

	v.MarkChanged()
	if fired != 1 {
		t.Fatalf("listener fired %d times, expected 1", fired)
	}

	cancel()
	v.MarkChanged()
	if fired != 1 {
		t.Errorf("listener fired %d times after cancel, expected 1", fired)
	}

	// Cancel is safe to call more than once.
	cancel()
}

func TestStaticValue_Complete(t *testing.T) {
	v := NewStaticValue("x", "<evaluating>", FlagEvaluating)

	fired := false
	v.OnChanged(func() { fired = true })

	v.Complete("42")

	if v.Flags().Has(FlagEvaluating) {
		t.Error("Complete should clear the evaluating flag")
	}
	if v.DisplayValue() != "42" {
		t.Errorf("DisplayValue() = %q, expected %q", v.DisplayValue(), "42")
	}
	if !fired {
		t.Error("Complete should fire the change notification")
	}
}
