package composer

import "testing"

func TestLayoutForTotal(t *testing.T) {
	tests := []struct {
		n    int
		want Layout
	}{
		{-3, Layout{Core: 1}},
		{1, Layout{Core: 1}},
		{2, Layout{Review: 1, Core: 1}},
		{5, DefaultLayout()},
		{6, Layout{Review: 2, Core: 2, Foundation: 1, Challenge: 1}},
		{10, Layout{Review: 3, Core: 3, Foundation: 2, Challenge: 2}},
		{99, Layout{Review: 3, Core: 3, Foundation: 2, Challenge: 2}},
	}
	for _, tt := range tests {
		got := LayoutForTotal(tt.n)
		if got != tt.want {
			t.Errorf("LayoutForTotal(%d) = %s, want %s", tt.n, got, tt.want)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("LayoutForTotal(%d) invalid: %v", tt.n, err)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		l  Layout
		ok bool
	}{
		{DefaultLayout(), true},
		{Layout{Challenge: 1}, true},
		{Layout{}, false},
		{Layout{Review: -1, Core: 3}, false},
		{Layout{Review: 5, Core: 6}, false},
	}
	for _, tt := range tests {
		err := tt.l.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("Validate(%s) error = %v, want ok=%v", tt.l, err, tt.ok)
		}
	}
}

func TestDefaultLayoutTotal(t *testing.T) {
	if got := DefaultLayout().Total(); got != 5 {
		t.Errorf("DefaultLayout().Total() = %d, want 5", got)
	}
}
