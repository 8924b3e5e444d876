package mailer_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
)

// listen starts a local TCP listener and hands every connection to serve.
func listen(t *testing.T, serve func(conn net.Conn)) mailer.SMTPConfig {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var wg sync.WaitGroup
	t.Cleanup(func() {
		_ = ln.Close()
		wg.Wait()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				serve(conn)
			}()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return mailer.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     addr.Port,
		Email:    "noreply@devcode.test",
		Password: "pw",
		FromName: "DevCode",
	}
}

// stalled accepts the connection and never says anything.
func stalled(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _ = conn.Read(make([]byte, 1))
}

// relay speaks just enough SMTP to accept one message and records its data.
type relay struct {
	mu   sync.Mutex
	data string
}

func (r *relay) serve(conn net.Conn) {
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	rd := bufio.NewReader(conn)
	write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	write("220 relay.test ready")
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			write("250 relay.test")
		case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
			write("250 OK")
		case cmd == "DATA":
			write("354 go ahead")
			var body strings.Builder
			for {
				l, err := rd.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			r.mu.Lock()
			r.data = body.String()
			r.mu.Unlock()
			write("250 queued")
		case cmd == "QUIT":
			write("221 bye")
			return
		default:
			write("502 not implemented")
		}
	}
}

func (r *relay) received() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func TestSMTPSink_Delivers(t *testing.T) {
	rl := &relay{}
	sink := mailer.NewSMTPSink(listen(t, rl.serve))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := sink.Send(ctx, mailer.Message{To: "ann@x.com", Subject: "Welcome", HTMLBody: "<p>hi</p>"})
	require.NoError(t, err)

	data := rl.received()
	assert.Contains(t, data, "Subject: Welcome")
	assert.Contains(t, data, "To: ann@x.com")
}

func TestSMTPSink_StalledRelayHonoursDeadline(t *testing.T) {
	sink := mailer.NewSMTPSink(listen(t, stalled))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sink.Send(ctx, mailer.Message{To: "ann@x.com", Subject: "Reset"})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDeliveryFailed), "got %v", err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSMTPSink_CancelUnblocksStalledRelay(t *testing.T) {
	sink := mailer.NewSMTPSink(listen(t, stalled))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(150*time.Millisecond, cancel)

	start := time.Now()
	err := sink.Send(ctx, mailer.Message{To: "ann@x.com", Subject: "Reset"})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDeliveryFailed), "got %v", err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSMTPSink_CancelledContextSkipsDial(t *testing.T) {
	sink := mailer.NewSMTPSink(mailer.SMTPConfig{Host: "127.0.0.1", Port: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.Send(ctx, mailer.Message{To: "ann@x.com"})
	assert.True(t, apperr.Is(err, apperr.CodeDeliveryFailed), "got %v", err)
}
