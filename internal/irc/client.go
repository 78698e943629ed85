// Package irc is the transport layer: a thin wrapper around gopkg.in/irc.v4
// that feeds inbound lines to the dispatcher and implements its outbound
// Sender surface.
package irc

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"gopkg.in/irc.v4"

	"github.com/yourusername/marvin/internal/config"
	"github.com/yourusername/marvin/internal/output"
)

// Client wraps the irc.v4 client. After Run returns and Disconnect is
// called, Connect may be called again to redial with the same handler.
type Client struct {
	server  config.ServerConfig
	channel string
	logger  output.Logger
	handler irc.Handler

	mu        sync.RWMutex
	conn      *irc.Client
	rawConn   io.ReadWriteCloser
	connected bool
}

// NewClient creates a client for one connection to the configured server.
// The handler must be set with SetHandler before Connect.
func NewClient(server config.ServerConfig, channel string, logger output.Logger) *Client {
	return &Client{
		server:  server,
		channel: channel,
		logger:  logger,
		handler: irc.HandlerFunc(func(*irc.Client, *irc.Message) {}),
	}
}

// SetHandler sets the inbound message handler. Must be called before
// Connect; the handler is bound at client creation.
func (c *Client) SetHandler(h irc.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Connect dials the server, optionally over TLS, and prepares the
// protocol client. It does not start reading; call Run for that.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return fmt.Errorf("already connected")
	}

	address := net.JoinHostPort(c.server.Address, fmt.Sprintf("%d", c.server.Port))

	var rawConn io.ReadWriteCloser
	var err error

	if c.server.TLS {
		c.logger.Info("Connecting to %s with TLS...", address)
		rawConn, err = tls.Dial("tcp", address, &tls.Config{ServerName: c.server.Address})
		if err != nil {
			return fmt.Errorf("TLS connection failed: %w", err)
		}
	} else {
		c.logger.Info("Connecting to %s...", address)
		rawConn, err = net.Dial("tcp", address)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
	}

	c.rawConn = rawConn
	c.conn = irc.NewClient(rawConn, irc.ClientConfig{
		Nick:          c.server.Nickname,
		User:          c.server.Username,
		Name:          c.server.Realname,
		Handler:       c.handler,
		PingFrequency: 1 * time.Minute,
		PingTimeout:   30 * time.Second,
	})
	c.connected = true
	c.logger.Success("Connected to %s", address)

	return nil
}

// Run drives the protocol read loop until the connection drops. The
// registered handler is called from this loop, one message at a time.
func (c *Client) Run() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return conn.Run()
}

// Quit sends QUIT and closes the connection.
func (c *Client) Quit(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	if c.conn != nil {
		quit := &irc.Message{Command: "QUIT"}
		if message != "" {
			quit.Params = []string{message}
		}
		if err := c.conn.WriteMessage(quit); err != nil {
			c.logger.Error("Failed to send QUIT: %v", err)
		}
		// Give the server a moment to process the QUIT.
		time.Sleep(100 * time.Millisecond)
	}

	if c.rawConn != nil {
		_ = c.rawConn.Close()
	}
	c.connected = false
	c.logger.Info("Disconnected from IRC server")

	return nil
}

// Disconnect closes the connection without the QUIT courtesy.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	if c.rawConn != nil {
		_ = c.rawConn.Close()
	}
	c.connected = false
	return nil
}

// IsConnected reports whether the client currently holds a connection.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) write(msg *irc.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteMessage(msg)
}

// SendMessage sends a PRIVMSG to a channel or nick.
func (c *Client) SendMessage(target, text string) error {
	return c.write(&irc.Message{Command: "PRIVMSG", Params: []string{target, text}})
}

// SendMode applies a channel mode change to a nick, e.g. +o or +v.
func (c *Client) SendMode(channel, mode, nick string) error {
	return c.write(&irc.Message{Command: "MODE", Params: []string{channel, mode, nick}})
}

// SendInvite invites a nick to a channel.
func (c *Client) SendInvite(nick, channel string) error {
	return c.write(&irc.Message{Command: "INVITE", Params: []string{nick, channel}})
}

// SendNick requests a nickname change.
func (c *Client) SendNick(newNick string) error {
	return c.write(&irc.Message{Command: "NICK", Params: []string{newNick}})
}

// SendJoin joins a channel.
func (c *Client) SendJoin(channel string) error {
	return c.write(&irc.Message{Command: "JOIN", Params: []string{channel}})
}
