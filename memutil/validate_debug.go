//go:build debug_vbuf

package memutil

import "fmt"

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_vbuf build tag is present.
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(fmt.Sprintf("validation failure: %+v", err))
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_vbuf build tag is present.
func DebugCheckPow2[T Number](number T, name string) {
	err := CheckPow2(number, name)
	if err != nil {
		panic(fmt.Sprintf("pow2 check failure: %+v", err))
	}
}
