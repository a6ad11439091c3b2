package labrequest

import "testing"

func TestComputePayment(t *testing.T) {
	got := ComputePayment(Payment{TotalAmount: 2250, DiscountAmount: 225, PaidAmount: 2000})
	if got.NetPayable != 2025 {
		t.Errorf("expected netPayable 2025, got %v", got.NetPayable)
	}
	if got.BalanceDue != 25 {
		t.Errorf("expected balanceDue 25, got %v", got.BalanceDue)
	}
	if got.DiscountPercent != 10.0 {
		t.Errorf("expected discountPercent 10.0, got %v", got.DiscountPercent)
	}
}

func TestComputePaymentNeverNegative(t *testing.T) {
	cases := []Payment{
		{TotalAmount: 100, DiscountAmount: 500, PaidAmount: 0},
		{TotalAmount: 100, DiscountAmount: 0, PaidAmount: 500},
		{TotalAmount: 0, DiscountAmount: 0, PaidAmount: 0},
		{TotalAmount: -100, DiscountAmount: -50, PaidAmount: -10},
	}
	for _, in := range cases {
		got := ComputePayment(in)
		if got.NetPayable < 0 {
			t.Errorf("netPayable negative for %+v: %v", in, got.NetPayable)
		}
		if got.BalanceDue < 0 {
			t.Errorf("balanceDue negative for %+v: %v", in, got.BalanceDue)
		}
	}
}

func TestComputePaymentZeroTotal(t *testing.T) {
	got := ComputePayment(Payment{TotalAmount: 0, DiscountAmount: 50, PaidAmount: 0})
	if got.DiscountPercent != 0 {
		t.Errorf("expected discountPercent 0 when total is 0, got %v", got.DiscountPercent)
	}
}

func TestComputePaymentIgnoresClientDerivedFields(t *testing.T) {
	got := ComputePayment(Payment{
		TotalAmount: 1000, DiscountAmount: 100, PaidAmount: 900,
		NetPayable: 1, BalanceDue: 999, DiscountPercent: 75,
	})
	if got.NetPayable != 900 || got.BalanceDue != 0 || got.DiscountPercent != 10 {
		t.Errorf("derived fields not recomputed: %+v", got)
	}
}
