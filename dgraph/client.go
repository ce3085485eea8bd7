package dgraph

import (
	"io"

	"github.com/dgraph-io/dgo/v240"
	"github.com/dgraph-io/dgo/v240/protos/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/grapl-security/graphkit/sd"
)

// Client is a handle to one alpha of a Dgraph cluster. It embeds the dgo
// client, so transactions are issued on it directly.
type Client struct {
	*dgo.Dgraph

	addr string
	conn *grpc.ClientConn
}

// Addr returns the alpha address the client is bound to.
func (c *Client) Addr() string { return c.addr }

// Close releases the underlying connection. Clients obtained from a Provider
// are owned by it and must not be closed by callers.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// NewFactory returns a factory that builds clients over gRPC with insecure
// transport credentials. Additional dial options are applied after the
// credentials. The returned closer releases the connection.
func NewFactory(options ...grpc.DialOption) sd.Factory[*Client] {
	return func(instance string) (*Client, io.Closer, error) {
		opts := append([]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, options...)
		conn, err := grpc.NewClient(instance, opts...)
		if err != nil {
			return nil, nil, err
		}
		c := &Client{
			Dgraph: dgo.NewDgraphClient(api.NewDgraphClient(conn)),
			addr:   instance,
			conn:   conn,
		}
		return c, c, nil
	}
}
