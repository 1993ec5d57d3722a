package order

import (
	"errors"
	"fmt"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

// Item is one priced line of the order as finalized by checkout.
type Item struct {
	productID    string
	name         string
	quantity     int
	unitPrice    kernel.Money
	lineSubtotal kernel.Money
}

// NewItem validates a checkout line and computes its subtotal.
func NewItem(productID, name string, quantity int, unitPrice kernel.Money) (Item, error) {
	return RestoreItem(productID, name, quantity, unitPrice, unitPrice.MulInt(quantity))
}

// RestoreItem rebuilds an item from storage or an already-priced payload,
// checking that the stored subtotal still equals quantity × unitPrice.
func RestoreItem(productID, name string, quantity int, unitPrice, lineSubtotal kernel.Money) (Item, error) {
	var errList []error

	productID = strings.TrimSpace(productID)
	if productID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("productId"))
	}
	if strings.TrimSpace(name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}
	if quantity < 1 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is less than 1", quantity)))
	}
	if quantity >= 1 && !unitPrice.MulInt(quantity).Equal(lineSubtotal) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("lineSubtotal",
			fmt.Errorf("%s is not %d × %s", lineSubtotal, quantity, unitPrice)))
	}

	if err := errors.Join(errList...); err != nil {
		return Item{}, err
	}

	return Item{
		productID:    productID,
		name:         strings.TrimSpace(name),
		quantity:     quantity,
		unitPrice:    unitPrice,
		lineSubtotal: lineSubtotal,
	}, nil
}

func (i Item) ProductID() string {
	return i.productID
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

func (i Item) LineSubtotal() kernel.Money {
	return i.lineSubtotal
}
