package shop

import "time"

type Audit struct {
	CreatedAt time.Time
	UpdatedBy string
}

type Customer struct {
	Audit

	ID      int64
	Name    string
	Email   *string
	Tags    map[string]string
	Manager *Customer
}

type Order struct {
	ID       int64
	Customer *Customer
	Status   Status
	Lines    []Line
	Totals   [3]int64
	Payment  Payment
	internal string
}

// Number is a getter, resolved when a path names it.
func (o *Order) Number() string { return "" }

type Line struct {
	SKU      string
	Quantity int
}

type Status int

type Payment interface {
	Amount() int64
}

type Lines = []Line
