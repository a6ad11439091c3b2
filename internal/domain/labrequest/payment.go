package labrequest

// ComputePayment derives netPayable, balanceDue and discountPercent from the
// raw amounts. Raw amounts are clamped to zero first and the derived fields
// are always overwritten, regardless of what the caller supplied.
func ComputePayment(p Payment) Payment {
	if p.TotalAmount < 0 {
		p.TotalAmount = 0
	}
	if p.DiscountAmount < 0 {
		p.DiscountAmount = 0
	}
	if p.PaidAmount < 0 {
		p.PaidAmount = 0
	}

	p.NetPayable = p.TotalAmount - p.DiscountAmount
	if p.NetPayable < 0 {
		p.NetPayable = 0
	}
	p.BalanceDue = p.NetPayable - p.PaidAmount
	if p.BalanceDue < 0 {
		p.BalanceDue = 0
	}
	if p.TotalAmount > 0 {
		p.DiscountPercent = p.DiscountAmount / p.TotalAmount * 100
	} else {
		p.DiscountPercent = 0
	}
	return p
}
