package model

import "testing"

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		min      int
		want     string
	}{
		{"zero quantity", 0, 5, StockOutOfStock},
		{"zero quantity zero threshold", 0, 0, StockOutOfStock},
		{"at threshold", 5, 5, StockLowStock},
		{"below threshold", 3, 5, StockLowStock},
		{"one above threshold", 6, 5, StockInStock},
		{"well stocked", 100, 5, StockInStock},
		{"positive quantity zero threshold", 1, 0, StockInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockStatus(tt.quantity, tt.min); got != tt.want {
				t.Errorf("StockStatus(%d, %d) = %q, want %q", tt.quantity, tt.min, got, tt.want)
			}
		})
	}
}

func TestSignedChange(t *testing.T) {
	in := Transaction{Type: TransactionCheckIn, QuantityChange: 7}
	if got := in.SignedChange(); got != 7 {
		t.Errorf("check_in SignedChange() = %d, want 7", got)
	}

	out := Transaction{Type: TransactionCheckOut, QuantityChange: 4}
	if got := out.SignedChange(); got != -4 {
		t.Errorf("check_out SignedChange() = %d, want -4", got)
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role string
		min  string
		want bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleManager, RoleAdmin, false},
		{RoleManager, RoleManager, true},
		{RoleUser, RoleManager, false},
		{"unknown", RoleUser, false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.min); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}
