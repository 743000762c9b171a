// Package mapping holds the type-pair configuration store.
//
// A Tree is rooted at the (any, any) pair. Every other pair is placed below the
// most specific registered pair it can stand in for, on both its source and its
// target side, so an unconfigured pair such as (Dog, AnimalDTO) inherits the
// options and the explicit members declared for (Animal, AnimalDTO).
//
// Member mappings of a pair are resolved lazily: the nearest convention pairs
// members by name and type, then the explicit declarations of the pair and its
// ancestors are appended so they win over convention pairs writing the same target.
//
// Declarations can also be loaded from YAML:
//
//	version: "1"
//	defaults:
//	  collection: reset
//	mappings:
//	  - source: store.Order
//	    target: "*warehouse.Order"
//	    121:
//	      OrderID: ID
//	    members:
//	      - target: Lines
//	        source: Items
//	        collection: update
//	        comparer: ByProductID
//	    ignore: [Internal]
//	    options:
//	      reference: create_new
//
// Type and callback names are resolved through a Registry. Validate checks a file
// statically, optionally against packages loaded by package analyze.
package mapping
