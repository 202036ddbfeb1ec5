// Package nativeir is the opaque "native IR" collaborator the lowering
// core (internal/lower, internal/driver) is written against.
//
// No Go binding of a GCC-JIT-shaped native compiler library exists to
// import, so this package implements the exact operation set the core
// requires — context lifecycle, type/value/block constructors, and the
// file/memory sinks — by emitting textual LLVM IR and driving clang as
// an external process. The core never sees LLVM directly: everything
// it touches is a Context, CType, RValue, LValue, Function, or Block
// handle from this package.
package nativeir
