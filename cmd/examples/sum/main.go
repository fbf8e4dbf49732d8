// Command sum counts the events configured in PERF_EVENTS while summing a million integers.
//
//	PERF_EVENTS=cycles,instructions go run ./cmd/examples/sum
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dylandreimerink/perfmon"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := perfmon.LoadConfig()
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}

	session := perfmon.NewSession(cfg, perfmon.WithLogger(log))
	if err = session.Prepare(); err != nil {
		log.Error("prepare", "err", err)
		os.Exit(1)
	}
	defer session.Close()

	if err = session.Begin(); err != nil {
		log.Error("begin", "err", err)
		os.Exit(1)
	}

	values := make([]int, 1000000)
	for i := range values {
		values[i] = i
	}
	sum := 0
	for _, v := range values {
		sum += v
	}

	results, err := session.End()
	if err != nil {
		log.Error("end", "err", err)
		os.Exit(1)
	}

	if sum != 499999500000 {
		panic("wrong sum")
	}

	for _, res := range results {
		fmt.Printf("%s = %d\n", res.Name, res.Value)
	}
}
