package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Common errors
var (
	ErrNotConnected  = errors.New("not connected to tray")
	ErrAlreadyServed = errors.New("another tray is already running")
)

// Handler processes incoming IPC messages.
type Handler interface {
	HandleMessage(ctx context.Context, msg *Message) (*Message, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, msg *Message) (*Message, error)

// HandleMessage implements Handler.
func (f HandlerFunc) HandleMessage(ctx context.Context, msg *Message) (*Message, error) {
	return f(ctx, msg)
}

// conn frames JSON messages over a stream connection.
type conn struct {
	nc  net.Conn
	enc *json.Encoder
	dec *json.Decoder
	mu  sync.Mutex
}

func newConn(nc net.Conn) *conn {
	return &conn{
		nc:  nc,
		enc: json.NewEncoder(nc),
		dec: json.NewDecoder(nc),
	}
}

func (c *conn) send(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(msg)
}

func (c *conn) receive() (*Message, error) {
	var msg Message
	if err := c.dec.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Server accepts connections on a Unix socket and answers each message
// with the handler's reply.
type Server struct {
	socketPath string
	handler    Handler

	mu       sync.Mutex
	listener net.Listener
	conns    map[*conn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server that will listen on socketPath.
func NewServer(socketPath string, handler Handler) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		conns:      make(map[*conn]struct{}),
	}
}

// Address returns the socket path.
func (s *Server) Address() string { return s.socketPath }

// Start begins listening. It fails with ErrAlreadyServed when another
// process answers on the socket, and removes the socket file left behind
// by a process that died.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server already running")
	}
	if err := removeStaleSocket(s.socketPath); err != nil {
		return err
	}

	l, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}
	s.listener = l

	s.wg.Add(1)
	go s.acceptLoop(ctx, l)
	return nil
}

func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	nc, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err == nil {
		nc.Close()
		return ErrAlreadyServed
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, l net.Listener) {
	defer s.wg.Done()

	for {
		nc, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if ctx.Err() != nil {
				return
			}
			continue
		}

		c := newConn(nc)
		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(ctx, c)
	}
}

func (s *Server) serve(ctx context.Context, c *conn) {
	defer s.wg.Done()
	defer func() {
		c.nc.Close()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
	}()

	for {
		msg, err := c.receive()
		if err != nil {
			// A client that sends garbage is dropped.
			return
		}

		resp, err := s.handler.HandleMessage(ctx, msg)
		if err != nil {
			resp, _ = NewMessage(MessageTypeError, ErrorResponse{
				Code:    "handler_error",
				Message: err.Error(),
			})
		}
		if resp == nil {
			resp, _ = NewMessage(MessageTypeSuccess, nil)
		}
		if err := c.send(resp); err != nil {
			return
		}
	}
}

// Stop closes the listener and all open connections, waits for the
// serving goroutines and removes the socket file.
func (s *Server) Stop() error {
	s.mu.Lock()
	l := s.listener
	s.listener = nil
	if l == nil {
		s.mu.Unlock()
		return nil
	}
	l.Close()
	for c := range s.conns {
		c.nc.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Client is a connection to a running server.
type Client struct {
	socketPath string

	mu sync.Mutex
	c  *conn
}

// NewClient creates a client for socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Connect dials the server.
func (cl *Client) Connect(ctx context.Context) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.c != nil {
		return nil
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", cl.socketPath)
	if err != nil {
		return err
	}
	cl.c = newConn(nc)
	return nil
}

// Disconnect closes the connection.
func (cl *Client) Disconnect() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.c == nil {
		return nil
	}
	err := cl.c.nc.Close()
	cl.c = nil
	return err
}

// Send sends msg and waits for the reply. A reply of type error is
// returned as a Go error.
func (cl *Client) Send(ctx context.Context, msg *Message) (*Message, error) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.c == nil {
		return nil, ErrNotConnected
	}

	if deadline, ok := ctx.Deadline(); ok {
		cl.c.nc.SetDeadline(deadline)
		defer cl.c.nc.SetDeadline(time.Time{})
	}

	if err := cl.c.send(msg); err != nil {
		return nil, err
	}
	resp, err := cl.c.receive()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotConnected
		}
		return nil, err
	}

	if resp.Type == MessageTypeError {
		var e ErrorResponse
		if err := resp.DecodePayload(&e); err != nil {
			return nil, fmt.Errorf("tray returned an unreadable error: %w", err)
		}
		return nil, fmt.Errorf("tray: %s", e.Message)
	}
	return resp, nil
}

// Request connects, sends one message and disconnects.
func Request(ctx context.Context, socketPath string, msgType MessageType, payload interface{}) (*Message, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}

	cl := NewClient(socketPath)
	if err := cl.Connect(ctx); err != nil {
		return nil, err
	}
	defer cl.Disconnect()

	return cl.Send(ctx, msg)
}

// Notify tells a running tray that the accounts changed. It reports
// whether a tray received the notice; no tray is not an error.
func Notify(ctx context.Context, socketPath, active string) bool {
	_, err := Request(ctx, socketPath, MessageTypeAccountsChanged, AccountsChangedNotice{Active: active})
	return err == nil
}
