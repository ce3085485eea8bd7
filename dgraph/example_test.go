package dgraph_test

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/log"

	"github.com/grapl-security/graphkit/dgraph"
	"github.com/grapl-security/graphkit/sd"
)

func ExampleProvider() {
	var (
		alphas   = sd.ParseInstances(os.Getenv("MG_ALPHAS"))
		logger   = log.NewLogfmtLogger(os.Stderr)
		provider = dgraph.NewProvider(alphas, dgraph.WithLogger(logger))
	)
	defer provider.Close()

	client, err := provider.Client(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	txn := client.NewReadOnlyTxn()
	defer txn.Discard(context.Background())
	resp, err := txn.Query(context.Background(), `{ q(func: has(node_key), first: 1) { uid } }`)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(resp.Json))
}
