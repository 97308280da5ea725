// debuggerinterface is the shared library the host loads as its script
// debugger. It exports the entry points of the fixed Debugger Interface ABI
// and bridges them to the in-process service, which relays everything to
// the external unreal-dap client over TCP.
//
// Build it as a C shared library:
//
//	go build -buildmode=c-shared -o DebuggerInterface.dll ./cmd/debuggerinterface
package main

/*
typedef void (*unreal_callback)(const char*);
*/
import "C"

import (
	"unsafe"

	"github.com/uscript-tools/unreal-dap/internal/service"
)

// SetCallback stores the host's command callback. Called once, before any
// other entry point.
//
//export SetCallback
func SetCallback(cb unsafe.Pointer) {
	installCallback(cb)
}

//export ShowDllForm
func ShowDllForm() {
	service.HostShowDllForm()
}

//export BuildHierarchy
func BuildHierarchy() {
	service.HostBuildHierarchy()
}

//export ClearHierarchy
func ClearHierarchy() {
	service.HostClearHierarchy()
}

//export AddClassToHierarchy
func AddClassToHierarchy(className *C.char) {
	service.HostAddClassToHierarchy(C.GoString(className))
}

//export ClearWatch
func ClearWatch(watchKind C.int) {
	service.HostClearWatch(int(watchKind))
}

//export ClearAWatch
func ClearAWatch(watchKind C.int) {
	service.HostClearAWatch(int(watchKind))
}

// AddAWatch is the only entry point with a return value: the index assigned
// here comes back as the parent of the watch's children.
//
//export AddAWatch
func AddAWatch(watchKind, parent C.int, name, value *C.char) C.int {
	return C.int(service.HostAddAWatch(int(watchKind), int(parent), C.GoString(name), C.GoString(value)))
}

//export LockList
func LockList(watchKind C.int) {
	service.HostLockList(int(watchKind))
}

//export UnlockList
func UnlockList(watchKind C.int) {
	service.HostUnlockList(int(watchKind))
}

//export AddBreakpoint
func AddBreakpoint(className *C.char, lineNumber C.int) {
	service.HostAddBreakpoint(C.GoString(className), int(lineNumber))
}

//export RemoveBreakpoint
func RemoveBreakpoint(className *C.char, lineNumber C.int) {
	service.HostRemoveBreakpoint(C.GoString(className), int(lineNumber))
}

//export EditorLoadClass
func EditorLoadClass(className *C.char) {
	service.HostEditorLoadClass(C.GoString(className))
}

//export EditorGotoLine
func EditorGotoLine(lineNumber, highlight C.int) {
	service.HostEditorGotoLine(int(lineNumber), int(highlight))
}

//export AddLineToLog
func AddLineToLog(text *C.char) {
	service.HostAddLineToLog(C.GoString(text))
}

//export CallStackClear
func CallStackClear() {
	service.HostCallStackClear()
}

//export CallStackAdd
func CallStackAdd(entry *C.char) {
	service.HostCallStackAdd(C.GoString(entry))
}

//export SetCurrentObjectName
func SetCurrentObjectName(objectName *C.char) {
	service.HostSetCurrentObjectName(C.GoString(objectName))
}

// DebugWindowState is documented as unused by the host.
//
//export DebugWindowState
func DebugWindowState(state C.int) {
}

func main() {}
