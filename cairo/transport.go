package cairo

import "context"

// FunctionCall is one contract invocation: the target, the entry point
// selector and the serialized arguments.
type FunctionCall struct {
	To       Felt
	Selector Felt
	Calldata []Felt
}

// Transport executes calls against a Starknet node. Generated bindings only
// build calldata and decode results; signing, fee estimation and RPC are up
// to the implementation.
type Transport interface {
	// Call runs a read-only call and returns the raw return felts.
	Call(ctx context.Context, call FunctionCall) ([]Felt, error)
	// Invoke submits calls in one transaction and returns its hash.
	Invoke(ctx context.Context, calls ...FunctionCall) (Felt, error)
}

// NewCall builds a call of the entry point fn on contract to.
func NewCall(to Felt, fn string, calldata []Felt) FunctionCall {
	return FunctionCall{To: to, Selector: Selector(fn), Calldata: calldata}
}
