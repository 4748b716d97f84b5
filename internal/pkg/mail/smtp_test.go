package mail

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSMTP struct {
	addr     *net.TCPAddr
	sessions atomic.Int32
	messages chan string
}

// startFakeSMTP serves just enough ESMTP for net/smtp: EHLO, AUTH PLAIN, MAIL, RCPT, DATA, NOOP and QUIT.
func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &fakeSMTP{addr: ln.Addr().(*net.TCPAddr), messages: make(chan string, 8)}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			srv.sessions.Add(1)
			go srv.serve(conn)
		}
	}()

	return srv
}

func (f *fakeSMTP) serve(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

	reply("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-fake")
			reply("250 AUTH PLAIN")
		case strings.HasPrefix(cmd, "AUTH"):
			reply("235 authenticated")
		case strings.HasPrefix(cmd, "DATA"):
			reply("354 end with .")
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			f.messages <- sb.String()
			reply("250 queued")
		case strings.HasPrefix(cmd, "QUIT"):
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func TestSMTP_SendUnconfigured(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"})

	assert.False(t, s.Configured())
	err := s.Send(context.Background(), Message{To: []string{"a@b.co"}, Subject: "x", TextBody: "y"})
	assert.ErrorIs(t, err, ErrUnconfigured)
}

func TestSMTP_SendReusesConnection(t *testing.T) {
	srv := startFakeSMTP(t)

	s := NewSMTP(SMTPConfig{
		Host:     "127.0.0.1",
		Port:     srv.addr.Port,
		Username: "user",
		Password: "pass",
		From:     "Reclaim <noreply@example.com>",
	})
	t.Cleanup(func() { _ = s.Close() })

	msg := Message{
		To:       []string{"user@example.com"},
		Subject:  "Your Reclaim login code",
		TextBody: "Your code is 123456",
		HTMLBody: "<p>Your code is <b>123456</b></p>",
	}

	require.NoError(t, s.Send(context.Background(), msg))
	require.NoError(t, s.Send(context.Background(), msg))

	first := <-srv.messages
	<-srv.messages

	assert.Equal(t, int32(1), srv.sessions.Load())
	assert.Contains(t, first, "Subject: Your Reclaim login code")
	assert.Contains(t, first, "To: user@example.com")
	assert.Contains(t, first, "multipart/alternative")
	assert.Contains(t, first, "Your code is 123456")
}

func TestSMTP_SendNoRecipients(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "h", Username: "u", Password: "p", From: "f@x.io"})

	err := s.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrSMTPNoRecipients)
}

func TestSMTPConfig_implicitTLS(t *testing.T) {
	assert.True(t, SMTPConfig{Port: 465}.implicitTLS())
	assert.True(t, SMTPConfig{Port: 587, Secure: true}.implicitTLS())
	assert.False(t, SMTPConfig{Port: 587}.implicitTLS())
}

func TestBuildBody(t *testing.T) {
	body, ct := buildBody(Message{TextBody: "plain"})
	assert.Equal(t, "plain", body)
	assert.Equal(t, "text/plain; charset=UTF-8", ct)

	body, ct = buildBody(Message{HTMLBody: "<p>x</p>"})
	assert.Equal(t, "<p>x</p>", body)
	assert.Equal(t, "text/html; charset=UTF-8", ct)
}
