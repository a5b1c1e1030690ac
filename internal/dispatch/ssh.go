// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package dispatch

import (
	"context"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

// Default timeouts.
const (
	DefaultConnectionTimeout = 4 * time.Second
	DefaultCommandTimeout    = 5 * time.Second
	DefaultPort              = 22
	DefaultWorkers           = 16
)

// ConnectionConfig bounds every network step of a dispatch.
type ConnectionConfig struct {
	// ConnectionTimeout covers the TCP connect and the SSH handshake.
	ConnectionTimeout time.Duration
	// CommandTimeout covers opening the session and submitting the command.
	CommandTimeout time.Duration
	Port           int
	// Workers is the number of boards contacted at once by a batch.
	Workers int
}

// DefaultConnectionConfig returns the default connection configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		ConnectionTimeout: DefaultConnectionTimeout,
		CommandTimeout:    DefaultCommandTimeout,
		Port:              DefaultPort,
		Workers:           DefaultWorkers,
	}
}

func (c ConnectionConfig) withDefaults() ConnectionConfig {
	def := DefaultConnectionConfig()
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = def.ConnectionTimeout
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = def.CommandTimeout
	}
	if c.Port <= 0 {
		c.Port = def.Port
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	return c
}

// sshClientIface is the subset of an SSH connection the dispatcher uses.
type sshClientIface interface {
	NewSession() (sshSessionIface, error)
	SetDeadline(t time.Time) error
	Close() error
}

type sshSessionIface interface {
	Start(cmd string) error
	Close() error
}

type sshClient struct {
	client *ssh.Client
	conn   net.Conn
}

func (c *sshClient) NewSession() (sshSessionIface, error) {
	s, err := c.client.NewSession()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *sshClient) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

func (c *sshClient) Close() error { return c.client.Close() }

// sshDial connects and authenticates. Tests replace it.
var sshDial = func(ctx context.Context, network, addr string, cfg *ssh.ClientConfig) (sshClientIface, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	// The handshake shares the connect budget.
	if cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return &sshClient{client: ssh.NewClient(c, chans, reqs), conn: conn}, nil
}

// clientConfig builds password authentication. Some boards only offer
// keyboard-interactive, which is answered with the same password.
//
// Host keys are not verified: boards are reinstalled from images and
// live on a closed classroom LAN. Do not use this on untrusted networks.
func clientConfig(user, password string, timeout time.Duration) *ssh.ClientConfig {
	answer := func(name, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = password
		}
		return answers, nil
	}
	return &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(answer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
}
