package main

/*
#include <stdlib.h>

typedef void (*unreal_callback)(const char*);

// Go cannot call a C function pointer directly; this trampoline lives here
// rather than in main.go because files with //export directives may only
// carry declarations in their preamble.
void invokeUnrealCallback(unreal_callback cb, const char* text)
{
	cb(text);
}
*/
import "C"

import (
	"unsafe"

	"github.com/uscript-tools/unreal-dap/internal/service"
)

// installCallback wraps the host's function pointer as a Go func and hands
// it to the service.
func installCallback(cb unsafe.Pointer) {
	fn := C.unreal_callback(cb)
	service.SetCallback(func(text string) {
		ctext := C.CString(text)
		defer C.free(unsafe.Pointer(ctext))
		C.invokeUnrealCallback(fn, ctext)
	})
}
