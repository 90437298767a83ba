package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start launches a collection session.
func (c *Client) Start(req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Credaq.Start", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests a cooperative stop of the live session.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Credaq.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Credaq.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionList lists archived sessions, newest first.
func (c *Client) SessionList(limit int) (*SessionListResponse, error) {
	var resp SessionListResponse
	if err := c.client.Call("Credaq.SessionList", SessionListRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDescribe fetches one archived session by id.
func (c *Client) SessionDescribe(id string) (*SessionDescribeResponse, error) {
	var resp SessionDescribeResponse
	if err := c.client.Call("Credaq.SessionDescribe", SessionDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SpeedGet reads the goniometer speed setting.
func (c *Client) SpeedGet() (*SpeedGetResponse, error) {
	var resp SpeedGetResponse
	if err := c.client.Call("Credaq.SpeedGet", SpeedGetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SpeedSet changes the goniometer speed setting.
func (c *Client) SpeedSet(speed int) (*SpeedSetResponse, error) {
	var resp SpeedSetResponse
	if err := c.client.Call("Credaq.SpeedSet", SpeedSetRequest{Speed: speed}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
