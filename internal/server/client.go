package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Client sends commands to a Server over one connection
type Client struct {
	conn net.Conn
}

// Dial connects to the server at address
func Dial(ctx context.Context, address string) (*Client, error) {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Do sends req and waits for the response
func (c *Client) Do(req Request) (Response, error) {
	if err := WriteRequest(c.conn, req); err != nil {
		return Response{}, fmt.Errorf("failed to send %s: %w", req.Command, err)
	}

	resp, err := ReadResponse(c.conn)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read %s response: %w", req.Command, err)
	}
	return resp, nil
}

// Run sends req and turns a failed response into an error
func (c *Client) Run(req Request) (string, error) {
	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", errors.New(resp.Message)
	}
	return resp.Message, nil
}

// Close sends quit and closes the connection
func (c *Client) Close() error {
	c.Do(Request{Command: CmdQuit})
	return c.conn.Close()
}
