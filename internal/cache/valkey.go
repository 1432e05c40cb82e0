package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ValkeyConfig holds connection parameters for a shared Valkey/Redis prediction cache.
type ValkeyConfig struct {
	Addr       string
	Username   string
	Password   string
	DB         int
	TLS        bool
	Timeout    time.Duration
	// MaxRetries is the number of extra attempts after a timed-out command.
	MaxRetries int
}

// ValkeyProvider implements Provider over RESP. Each command uses its own connection so
// the dashboard holds no idle sockets between diagnoses.
type ValkeyProvider struct {
	cfg ValkeyConfig
}

// NewValkeyProvider validates cfg and pings the server so a bad address fails at startup.
func NewValkeyProvider(ctx context.Context, cfg ValkeyConfig) (*ValkeyProvider, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("valkey addr is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 500 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	p := &ValkeyProvider{cfg: cfg}
	reply, err := p.do(ctx, "PING")
	if err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	if reply.kind != respSimple || reply.text() != "PONG" {
		return nil, fmt.Errorf("valkey ping: unexpected reply %q", reply.text())
	}
	return p, nil
}

// Get returns the stored bytes or ErrCacheMiss.
func (p *ValkeyProvider) Get(ctx context.Context, key string) ([]byte, error) {
	reply, err := p.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	switch reply.kind {
	case respNil:
		return nil, ErrCacheMiss
	case respBulk:
		return reply.data, nil
	default:
		return nil, fmt.Errorf("valkey GET: unexpected reply kind %q", reply.kind)
	}
}

// Set stores value with a millisecond expiry when ttl is positive.
func (p *ValkeyProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", key, string(value)}
	if ttl > 0 {
		args = append(args, "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
	}
	reply, err := p.do(ctx, args...)
	if err != nil {
		return err
	}
	if reply.kind != respSimple || reply.text() != "OK" {
		return fmt.Errorf("valkey SET: unexpected reply %q", reply.text())
	}
	return nil
}

// Del removes key. Deleting a missing key is not an error.
func (p *ValkeyProvider) Del(ctx context.Context, key string) error {
	_, err := p.do(ctx, "DEL", key)
	return err
}

// Close is a no-op; connections are per command.
func (p *ValkeyProvider) Close() error { return nil }

// do runs one command on a fresh, authenticated connection. Network timeouts are retried
// up to MaxRetries times with exponential backoff.
func (p *ValkeyProvider) do(ctx context.Context, args ...string) (respReply, error) {
	for attempt := 0; ; attempt++ {
		reply, err := p.once(ctx, args)
		if err == nil {
			return reply, nil
		}
		var netErr net.Error
		if attempt >= p.cfg.MaxRetries || !errors.As(err, &netErr) || !netErr.Timeout() {
			return respReply{}, err
		}
		backoff := time.NewTimer(time.Duration(1<<attempt) * 25 * time.Millisecond)
		select {
		case <-ctx.Done():
			backoff.Stop()
			return respReply{}, ctx.Err()
		case <-backoff.C:
		}
	}
}

func (p *ValkeyProvider) once(ctx context.Context, args []string) (respReply, error) {
	conn, err := p.dial(ctx)
	if err != nil {
		return respReply{}, err
	}
	defer conn.Close()

	deadline := time.Now().Add(p.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return respReply{}, err
	}

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	for _, setup := range p.handshake() {
		if err := writeCommand(rw.Writer, setup); err != nil {
			return respReply{}, err
		}
		reply, err := readReply(rw.Reader)
		if err != nil {
			return respReply{}, fmt.Errorf("valkey %s: %w", setup[0], err)
		}
		if !strings.EqualFold(reply.text(), "OK") {
			return respReply{}, fmt.Errorf("valkey %s: unexpected reply %q", setup[0], reply.text())
		}
	}
	if err := writeCommand(rw.Writer, args); err != nil {
		return respReply{}, err
	}
	return readReply(rw.Reader)
}

func (p *ValkeyProvider) handshake() [][]string {
	var cmds [][]string
	if p.cfg.Password != "" {
		auth := []string{"AUTH"}
		if p.cfg.Username != "" {
			auth = append(auth, p.cfg.Username)
		}
		cmds = append(cmds, append(auth, p.cfg.Password))
	}
	if p.cfg.DB > 0 {
		cmds = append(cmds, []string{"SELECT", strconv.Itoa(p.cfg.DB)})
	}
	return cmds
}

func (p *ValkeyProvider) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: p.cfg.Timeout}
	if !p.cfg.TLS {
		return dialer.DialContext(ctx, "tcp", p.cfg.Addr)
	}
	host, _, err := net.SplitHostPort(p.cfg.Addr)
	if err != nil {
		host = p.cfg.Addr
	}
	td := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}}
	return td.DialContext(ctx, "tcp", p.cfg.Addr)
}

type respKind byte

const (
	respSimple  respKind = '+'
	respInteger respKind = ':'
	respBulk    respKind = '$'
	respNil     respKind = '_'
)

type respReply struct {
	kind respKind
	data []byte
}

func (r respReply) text() string { return string(r.data) }

func writeCommand(w *bufio.Writer, args []string) error {
	fmt.Fprintf(w, "*%d\r\n", len(args))
	for _, a := range args {
		fmt.Fprintf(w, "$%d\r\n%s\r\n", len(a), a)
	}
	return w.Flush()
}

func readReply(r *bufio.Reader) (respReply, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return respReply{}, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return respReply{}, errors.New("empty RESP line")
	}
	body := line[1:]
	switch respKind(line[0]) {
	case respSimple, respInteger:
		return respReply{kind: respKind(line[0]), data: []byte(body)}, nil
	case '-':
		return respReply{}, errors.New(body)
	case respBulk:
		size, err := strconv.Atoi(body)
		if err != nil {
			return respReply{}, fmt.Errorf("bulk length %q: %w", body, err)
		}
		if size < 0 {
			return respReply{kind: respNil}, nil
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return respReply{}, err
		}
		if buf[size] != '\r' || buf[size+1] != '\n' {
			return respReply{}, errors.New("invalid bulk termination")
		}
		return respReply{kind: respBulk, data: buf[:size]}, nil
	default:
		return respReply{}, fmt.Errorf("unexpected RESP prefix %q", line[0])
	}
}
