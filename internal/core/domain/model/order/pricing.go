package order

import (
	"fmt"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

// Pricing is the order's money breakdown. finalAmount is always derived:
//
//	finalAmount = totalPrice - discount + deliveryCharge
//
// and totalPrice is the sum of the line subtotals.
type Pricing struct {
	totalPrice     kernel.Money
	discount       kernel.Money
	deliveryCharge kernel.Money
	finalAmount    kernel.Money
}

// NewPricing derives the breakdown from checkout's items, discount and delivery charge.
// The delivery charge arrives already computed from the settings snapshot; it is
// never looked up here.
func NewPricing(items []Item, discount, deliveryCharge kernel.Money) (Pricing, error) {
	total := kernel.ZeroMoney
	for _, item := range items {
		total = total.Add(item.LineSubtotal())
	}

	return newPricing(total, discount, deliveryCharge)
}

func newPricing(total, discount, deliveryCharge kernel.Money) (Pricing, error) {
	final, err := total.Add(deliveryCharge).Sub(discount)
	if err != nil {
		return Pricing{}, errs.NewValueIsInvalidErrorWithCause("discount",
			fmt.Errorf("discount %s exceeds total %s plus delivery charge %s", discount, total, deliveryCharge))
	}

	return Pricing{
		totalPrice:     total,
		discount:       discount,
		deliveryCharge: deliveryCharge,
		finalAmount:    final,
	}, nil
}

// withDeliveryCharge returns a copy with a new delivery charge and a recomputed final amount.
func (p Pricing) withDeliveryCharge(charge kernel.Money) (Pricing, error) {
	return newPricing(p.totalPrice, p.discount, charge)
}

// Matches reports whether checkout's declared totals agree with the derived ones.
func (p Pricing) Matches(totalPrice, finalAmount kernel.Money) bool {
	return p.totalPrice.Equal(totalPrice) && p.finalAmount.Equal(finalAmount)
}

func (p Pricing) TotalPrice() kernel.Money {
	return p.totalPrice
}

func (p Pricing) Discount() kernel.Money {
	return p.discount
}

func (p Pricing) DeliveryCharge() kernel.Money {
	return p.deliveryCharge
}

func (p Pricing) FinalAmount() kernel.Money {
	return p.finalAmount
}
