// Command libperfmon builds the C API of perfmon, use -buildmode=c-shared or -buildmode=c-archive.
//
//	void perfmon_prepare(void);
//	void perfmon_begin(void);
//	const EventResult* perfmon_end(int* size);
//	void perfmon_reset(void);
//
// Every error is logged to stderr and terminates the process with exit status 1.
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	const char* name;
	uint64_t value;
} EventResult;
*/
import "C"

import (
	"errors"
	"log/slog"
	"os"
	"unsafe"

	"github.com/dylandreimerink/perfmon"
)

var (
	session *perfmon.Session
	log     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	results *C.EventResult
	array   = resultArray[*C.char]{
		realloc: reallocResults,
		set: func(i int, name *C.char, value uint64) {
			entry := (*C.EventResult)(unsafe.Add(unsafe.Pointer(results), uintptr(i)*unsafe.Sizeof(C.EventResult{})))
			entry.name = name
			entry.value = C.uint64_t(value)
		},
	}
)

var errNotPrepared = errors.New("perfmon_prepare not called")

func fatal(err error) {
	log.Error("perfmon", "err", err)
	os.Exit(1)
}

//export perfmon_prepare
func perfmon_prepare() {
	cfg, err := perfmon.LoadConfig()
	if err != nil {
		fatal(err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		fatal(err)
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if session == nil {
		session = perfmon.NewSession(cfg, perfmon.WithLogger(log))
	}
	if err = session.Prepare(); err != nil {
		fatal(err)
	}

	// One C string per event, shared by all results of that event
	for _, desc := range session.Events() {
		array.names = append(array.names, C.CString(desc.Name))
	}
}

//export perfmon_begin
func perfmon_begin() {
	if session == nil {
		fatal(&perfmon.Error{Kind: perfmon.ErrInit, Op: "begin", Index: -1, Err: errNotPrepared})
	}

	if err := session.Begin(); err != nil {
		fatal(err)
	}
}

//export perfmon_end
func perfmon_end(size *C.int) *C.EventResult {
	if session == nil {
		fatal(&perfmon.Error{Kind: perfmon.ErrInit, Op: "end", Index: -1, Err: errNotPrepared})
	}

	res, err := session.End()
	if err != nil {
		fatal(err)
	}

	n, err := array.sync(res)
	if err != nil {
		fatal(err)
	}

	if size != nil {
		*size = C.int(n)
	}
	return results
}

//export perfmon_reset
func perfmon_reset() {
	if session == nil {
		fatal(&perfmon.Error{Kind: perfmon.ErrInit, Op: "reset", Index: -1, Err: errNotPrepared})
	}

	session.Reset()
	array.reset()
}

// reallocResults grows the C results array to n entries.
func reallocResults(n int) bool {
	p := C.realloc(unsafe.Pointer(results), C.size_t(n)*C.size_t(unsafe.Sizeof(C.EventResult{})))
	if p == nil {
		return false
	}

	results = (*C.EventResult)(p)
	return true
}

func main() {}
