// Package did reads candid interface descriptions (.did files) into idl
// types.
//
// A description is a list of type definitions and imports followed by at
// most one service declaration:
//
//	type Account = record { owner : principal; subaccount : opt blob };
//	type Tree = variant { Leaf : int; Node : record { left : Tree; right : Tree } };
//	service : {
//		icrc1_balance_of : (Account) -> (nat) query;
//	}
//
// Definitions may appear in any order. A definition that reaches itself
// becomes an *idl.RecType labeled with its name; every other definition is
// inlined where it is used. Records whose fields are all positional become
// tuples.
//
// Syntax errors stop parsing at the first problem. Resolution errors such
// as unknown names or duplicate fields are collected; Errors splits them.
package did
