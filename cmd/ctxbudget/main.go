// Command ctxbudget assembles prompt manifests into a token-budgeted context.
//
// Usage:
//
//	ctxbudget build -m prompt.yaml [-c ctxbudget.yaml] [--ceiling N] [--report]
//	ctxbudget estimate [file|-] [--encoding cl100k_base]
//	ctxbudget check [file|-] [--threshold 0.8]
//	ctxbudget schema
//	ctxbudget watch -m prompt.yaml -c ctxbudget.yaml [--metrics-addr :9090]
//
// check exits 1 when the input is approaching the ceiling. Other failures
// exit 2.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errApproachingLimit) {
			return 1
		}
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}
	return 0
}
