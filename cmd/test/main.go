// Command test prints the `go test` invocations that exercise this repo's
// packages. It does not run them itself — adapted from the teacher's
// cmd/test, which pointed at `go test ./circuits/<name>/` for a named
// circuit; this repo has one circuit, so it prints one invocation per core
// package, one for the circuit, and one for the whole module.
package main

import "fmt"

func main() {
	fmt.Println(`Prefer using go test directly:
  go test ./pkg/statetree/... -v         batch engine, tree store, root verifier
  go test ./pkg/proof/... -v             inclusion proof extractor
  go test ./pkg/zerohash/... -v          zero-hash cache
  go test ./pkg/preimage/... -v          preimage witness map
  go test ./circuits/transition/ -v -timeout 5m
  go test ./...                          everything`)
}
