package netdicom

import "fmt"

// doassert panics if cond is false. It marks invariants that the Upper
// Layer state machine relies on but that the type system can't express,
// mirroring the teacher's use of assertions in statemachine.go.
func doassert(cond bool, context ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("dicom.assertion failure: %v", context))
	}
}
