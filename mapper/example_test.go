package mapper_test

import (
	"fmt"

	"object-mapper/mapper"
)

func ExampleTo() {
	type Address struct{ City string }
	type User struct {
		Name    string
		Age     int
		Address *Address
	}
	type UserView struct {
		Name        string
		Age         string
		AddressCity string
	}

	m, err := mapper.New(mapper.WithConvention(mapper.ProjectionConvention))
	if err != nil {
		panic(err)
	}

	view, err := mapper.To[UserView](m, User{Name: "Ada", Age: 36, Address: &Address{City: "London"}})
	if err != nil {
		panic(err)
	}

	fmt.Printf("%+v\n", view)
	// Output: {Name:Ada Age:36 AddressCity:London}
}

func ExamplePair() {
	type Item struct {
		ID    int
		Price float64
	}
	type ItemDTO struct {
		ID    int
		Price float64
	}
	type Cart struct{ Items []Item }
	type CartDTO struct{ Items []ItemDTO }

	m, _ := mapper.New()

	err := mapper.Pair[[]Item, []ItemDTO](m).
		Collection(mapper.CollectionUpdate).
		Comparer(mapper.NewComparer(func(s Item, d ItemDTO) bool { return s.ID == d.ID })).
		Err()
	if err != nil {
		panic(err)
	}

	cart := CartDTO{Items: []ItemDTO{{ID: 1, Price: 1}, {ID: 2, Price: 2}}}
	_ = m.Map(Cart{Items: []Item{{ID: 2, Price: 2.5}, {ID: 3, Price: 3}}}, &cart)

	fmt.Println(cart.Items)
	// Output: [{2 2.5} {3 3}]
}
