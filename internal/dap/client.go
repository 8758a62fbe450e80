package dap

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/go-dap"
)

const requestTimeout = 30 * time.Second

// Client provides the DAP operations a launch attempt needs.
type Client struct {
	transport *Transport

	pendingRequests map[int]chan dap.Message
	mu              sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a client over the given transport and starts its
// message reader.
func NewClient(transport *Transport) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		transport:       transport,
		pendingRequests: make(map[int]chan dap.Message),
		ctx:             ctx,
		cancel:          cancel,
	}

	c.wg.Add(1)
	go c.readLoop()

	return c
}

// readLoop continuously reads messages from the transport and routes
// responses to their pending requests. Events are ignored; the launch
// delegate only needs request/response pairs.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		msg, err := c.transport.Receive()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return
			default:
			}
			// Connection is gone; fail every waiter.
			c.mu.Lock()
			for seq, ch := range c.pendingRequests {
				close(ch)
				delete(c.pendingRequests, seq)
			}
			c.mu.Unlock()
			return
		}

		if resp, ok := msg.(dap.ResponseMessage); ok {
			c.mu.Lock()
			ch, found := c.pendingRequests[resp.GetResponse().RequestSeq]
			if found {
				delete(c.pendingRequests, resp.GetResponse().RequestSeq)
			}
			c.mu.Unlock()

			if found {
				ch <- msg
				close(ch)
			}
		}
	}
}

// sendRequest sends a request and waits for its response.
func (c *Client) sendRequest(req dap.RequestMessage, timeout time.Duration) (dap.Message, error) {
	seq := req.GetRequest().Seq
	ch := make(chan dap.Message, 1)

	c.mu.Lock()
	c.pendingRequests[seq] = ch
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.mu.Lock()
		delete(c.pendingRequests, seq)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("connection closed while waiting for response")
		}
		return msg, nil
	case <-time.After(timeout):
		c.mu.Lock()
		delete(c.pendingRequests, seq)
		c.mu.Unlock()
		return nil, fmt.Errorf("request timed out after %s", timeout)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// Initialize performs the DAP initialize handshake.
func (c *Client) Initialize(clientID, clientName string) (*dap.InitializeResponse, error) {
	req := &dap.InitializeRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{
				Seq:  c.transport.NextSeq(),
				Type: "request",
			},
			Command: "initialize",
		},
		Arguments: dap.InitializeRequestArguments{
			ClientID:        clientID,
			ClientName:      clientName,
			AdapterID:       "ibmidebug",
			Locale:          "en-US",
			LinesStartAt1:   true,
			ColumnsStartAt1: true,
			PathFormat:      "path",
		},
	}

	msg, err := c.sendRequest(req, requestTimeout)
	if err != nil {
		return nil, err
	}

	resp, ok := msg.(*dap.InitializeResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T to initialize", msg)
	}
	if !resp.Success {
		return nil, fmt.Errorf("initialize failed: %s", resp.Message)
	}
	return resp, nil
}

// Launch sends a launch request with the given adapter-specific
// arguments.
func (c *Client) Launch(args map[string]interface{}) (*dap.LaunchResponse, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal launch arguments: %w", err)
	}

	req := &dap.LaunchRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{
				Seq:  c.transport.NextSeq(),
				Type: "request",
			},
			Command: "launch",
		},
		Arguments: json.RawMessage(raw),
	}

	msg, err := c.sendRequest(req, requestTimeout)
	if err != nil {
		return nil, err
	}

	resp, ok := msg.(*dap.LaunchResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T to launch", msg)
	}
	if !resp.Success {
		return nil, fmt.Errorf("launch failed: %s", resp.Message)
	}
	return resp, nil
}

// Disconnect ends the session, optionally terminating the debuggee.
func (c *Client) Disconnect(terminateDebuggee bool) error {
	req := &dap.DisconnectRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{
				Seq:  c.transport.NextSeq(),
				Type: "request",
			},
			Command: "disconnect",
		},
		Arguments: &dap.DisconnectArguments{
			TerminateDebuggee: terminateDebuggee,
		},
	}

	_, err := c.sendRequest(req, 5*time.Second)
	return err
}

// Close shuts down the client and its transport.
func (c *Client) Close() error {
	c.cancel()
	err := c.transport.Close()
	c.wg.Wait()
	return err
}
