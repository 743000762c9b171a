// Package plan compiles type pairs into executable plans and runs them.
//
// A plan is a tree of Node values, one variant per kind of transformation:
//
//	copy        identical plain values are assigned as is
//	convert     leaf conversion through the primitive registry
//	nullable    optional values are unwrapped, mapped and wrapped again
//	enum        integer and string values to and from enums
//	struct      member-wise mapping of struct values
//	reference   member-wise mapping of pointers to structs, tracked by identity
//	collection  element-wise mapping of slices and arrays
//	dictionary  key and value mapping of maps
//	dynamic     resolved from the runtime types of the values
//	custom      user supplied converter function
//
// Builders are tried in a fixed order and the first one that can handle a pair
// builds its node. Nested pairs are compiled once and shared; a pair under
// construction is referenced through its unfinished node, so recursive types
// compile to cyclic plans.
//
// An Executor interprets a plan against one reference tracker.
package plan
