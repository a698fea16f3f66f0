// Package icreactor turns candid interface descriptions into working
// values for Internet Computer canisters.
//
// Every candid type is a tree of descriptors (package idl). Four
// traversals walk that tree through the shared visitor engine:
//
//	icreactor/
//	├── idl/         Type descriptors, candid text and value rendering
//	├── visitor/     Dispatch and recursion tracking shared by all passes
//	├── codec/       Wire <-> display conversion
//	├── fields/      Form metadata, defaults and validation
//	├── generate/    Random values that inhabit a type
//	├── result/      Labeled display trees with format hints
//	├── did/         .did parser producing descriptors
//	├── witimport/   WIT types mapped onto candid descriptors
//	├── fixture/     CBOR recordings of generated calls
//	├── config/      reactor.toml loading and validation
//	├── principal/   Principal identifiers
//	└── errors/      Structured errors with phase, kind and path
//
// # Quick Start
//
// Load an interface and encode form input for a method:
//
//	r, err := icreactor.Load("ledger.did")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	wire, err := r.EncodeArgs("icrc1_balance_of", []any{
//	    map[string]any{"owner": "aaaaa-aa", "subaccount": []any{}},
//	})
//
// Mock a reply and format it for display:
//
//	values, _ := r.MockResults("icrc1_balance_of")
//	nodes, _ := r.FormatResults("icrc1_balance_of", values)
//
// # Value Forms
//
// Wire values are what the network layer sends: integers are *big.Int,
// optionals are zero or one element slices and variants are single key
// maps. Display values are what applications show: big integers become
// decimal strings and variants become codec.Variant. Form values are what
// users type: text for numbers and principals, slices for optionals.
//
// # Thread Safety
//
// Descriptors are immutable once built. Codecs are safe for concurrent
// use. A Generator is not; give each goroutine its own.
package icreactor
