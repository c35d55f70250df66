package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/leftmike/nquery/sql"
)

const (
	sshPrompt = "nquery> "
)

// SSHConfig configures an SSH listener. If neither CheckPassword nor AuthorizedBytes is
// set, clients are not authenticated.
type SSHConfig struct {
	Address         string
	HostKeysBytes   [][]byte
	AuthorizedBytes []byte
	CheckPassword   func(user, password string) error
}

type sshServer struct {
	mutex      sync.Mutex
	cfg        *ssh.ServerConfig
	address    string
	listener   net.Listener
	activeConn map[*ssh.ServerConn]struct{}
	connCount  int32
	shutdown   bool
	closed     bool
}

func parseAuthorizedKeys(b []byte) (map[string]struct{}, error) {
	keys := map[string]struct{}{}
	for len(b) > 0 {
		key, _, _, rest, err := ssh.ParseAuthorizedKey(b)
		if err != nil {
			return nil, err
		}
		keys[string(key.Marshal())] = struct{}{}
		b = rest
	}
	return keys, nil
}

func (sshCfg SSHConfig) serverConfig() (*ssh.ServerConfig, error) {
	cfg := ssh.ServerConfig{
		AuthLogCallback: func(md ssh.ConnMetadata, method string, err error) {
			if method == "none" {
				return
			}
			entry := log.WithFields(log.Fields{
				"user":   md.User(),
				"addr":   md.RemoteAddr().String(),
				"method": method,
			})
			if err != nil {
				entry.WithField("error", err.Error()).Error("ssh authentication failed")
			} else {
				entry.Info("ssh authentication succeeded")
			}
		},
		BannerCallback: func(md ssh.ConnMetadata) string {
			return fmt.Sprintf("nquery %d.%d\n", sql.MajorVersion, sql.MinorVersion)
		},
	}

	for _, keyBytes := range sshCfg.HostKeysBytes {
		key, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("server: host key: %w", err)
		}
		cfg.AddHostKey(key)
	}

	authorizedKeys, err := parseAuthorizedKeys(sshCfg.AuthorizedBytes)
	if err != nil {
		return nil, fmt.Errorf("server: authorized keys: %w", err)
	}

	if sshCfg.CheckPassword == nil && len(authorizedKeys) == 0 {
		cfg.NoClientAuth = true
		log.Warn("ssh client auth: NONE")
	}

	if checkPassword := sshCfg.CheckPassword; checkPassword != nil {
		cfg.PasswordCallback =
			func(md ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
				log.WithFields(log.Fields{
					"user": md.User(),
					"addr": md.RemoteAddr().String(),
				}).Debug("ssh password callback")
				return nil, checkPassword(md.User(), string(pass))
			}
		log.Info("ssh client auth: password")
	}

	if len(authorizedKeys) > 0 {
		cfg.PublicKeyCallback =
			func(md ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
				log.WithFields(log.Fields{
					"user":        md.User(),
					"fingerprint": ssh.FingerprintSHA256(key),
					"addr":        md.RemoteAddr().String(),
				}).Debug("ssh public key callback")
				if _, ok := authorizedKeys[string(key.Marshal())]; !ok {
					return nil, fmt.Errorf("unknown public key for %s", md.User())
				}
				return nil, nil
			}
		log.Info("ssh client auth: public key")
	}

	return &cfg, nil
}

// ListenAndServeSSH accepts SSH connections on sshCfg.Address. A shell request runs the
// Handler interactively over a terminal; an exec request runs the Handler on the command.
func (svr *Server) ListenAndServeSSH(sshCfg SSHConfig) error {
	cfg, err := sshCfg.serverConfig()
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", sshCfg.Address)
	if err != nil {
		return err
	}
	ss := &sshServer{
		cfg:        cfg,
		address:    sshCfg.Address,
		listener:   l,
		activeConn: map[*ssh.ServerConn]struct{}{},
	}
	if !svr.addServer(ss) {
		return ErrServerClosed
	}

	for {
		tcp, err := l.Accept()
		if err != nil {
			ss.mutex.Lock()
			if ss.shutdown {
				err = ErrServerClosed
			}
			ss.mutex.Unlock()
			log.WithField("error", err.Error()).Error("ssh accept")
			return err
		}

		go ss.handleConn(tcp, svr)
	}
}

func (ss *sshServer) trackConn(conn *ssh.ServerConn, add bool) bool {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.closed {
		return false
	}
	if add {
		ss.activeConn[conn] = struct{}{}
	} else {
		delete(ss.activeConn, conn)
	}
	return true
}

func (ss *sshServer) handleConn(tcp net.Conn, svr *Server) {
	atomic.AddInt32(&ss.connCount, 1)
	defer atomic.AddInt32(&ss.connCount, -1)

	conn, chans, reqs, err := ssh.NewServerConn(tcp, ss.cfg)
	if err != nil {
		log.WithFields(log.Fields{
			"addr":  tcp.RemoteAddr().String(),
			"error": err.Error(),
		}).Error("ssh handshake")
		tcp.Close()
		return
	}
	entry := log.WithFields(log.Fields{
		"user": conn.User(),
		"addr": conn.RemoteAddr().String(),
	})
	entry.Info("ssh connected")
	defer entry.Info("ssh disconnected")

	go ssh.DiscardRequests(reqs)

	if !ss.trackConn(conn, true) {
		conn.Close()
		return
	}

	var wg sync.WaitGroup
	for nch := range chans {
		wg.Add(1)
		go func(nch ssh.NewChannel) {
			defer wg.Done()
			ss.handleChannel(conn, nch, svr, entry)
		}(nch)
	}
	wg.Wait()

	if ss.trackConn(conn, false) {
		conn.Close()
	}
}

type termReader struct {
	term *terminal.Terminal
	r    *strings.Reader
}

func (tr *termReader) ReadRune() (rune, int, error) {
	for {
		if tr.r == nil {
			line, err := tr.term.ReadLine()
			if err != nil {
				return 0, 0, err
			}
			tr.r = strings.NewReader(line + "\n")
		}

		r, sz, err := tr.r.ReadRune()
		if err != io.EOF {
			return r, sz, err
		}
		tr.r = nil
	}
}

type execRequest struct {
	Command string
}

type exitStatus struct {
	Status uint32
}

func (ss *sshServer) handleChannel(conn *ssh.ServerConn, nch ssh.NewChannel, svr *Server,
	entry *log.Entry) {

	typ := nch.ChannelType()
	if typ != "session" {
		nch.Reject(ssh.UnknownChannelType, typ)
		entry.WithField("channel-type", typ).Error("unknown channel type")
		return
	}

	ch, reqs, err := nch.Accept()
	if err != nil {
		entry.WithField("error", err.Error()).Error("ssh channel accept")
		return
	}
	defer ch.Close()

	user := conn.User()
	addr := conn.RemoteAddr().String()
	for req := range reqs {
		entry.WithFields(log.Fields{
			"request-type": req.Type,
			"want-reply":   req.WantReply,
		}).Debug("ssh channel request")

		switch req.Type {
		case "pty-req", "env", "window-change":
			req.Reply(true, nil)
		case "shell":
			req.Reply(true, nil)
			go ssh.DiscardRequests(reqs)

			t := terminal.NewTerminal(ch, sshPrompt)
			svr.Handle(&termReader{term: t}, t, user, "ssh", addr, true)
			return
		case "exec":
			var er execRequest
			err := ssh.Unmarshal(req.Payload, &er)
			if err != nil {
				req.Reply(false, nil)
				continue
			}
			req.Reply(true, nil)
			go ssh.DiscardRequests(reqs)

			svr.Handle(strings.NewReader(er.Command), ch, user, "ssh", addr, false)
			_, err = ch.SendRequest("exit-status", false, ssh.Marshal(&exitStatus{}))
			if err != nil {
				entry.WithField("error", err.Error()).Error("ssh exit status")
			}
			return
		default:
			req.Reply(false, nil)
		}
	}
}

func (ss *sshServer) Close() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.closed {
		return nil
	}
	ss.closed = true

	var err error
	if !ss.shutdown {
		err = ss.listener.Close()
		ss.shutdown = true
	}

	for conn := range ss.activeConn {
		conn.Close()
		delete(ss.activeConn, conn)
	}
	return err
}

func (ss *sshServer) Shutdown(ctx context.Context) error {
	var err error

	ss.mutex.Lock()
	if ss.closed {
		ss.mutex.Unlock()
		return nil
	}
	if !ss.shutdown {
		err = ss.listener.Close()
		ss.shutdown = true
	}
	ss.mutex.Unlock()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := int32(-1)
	for {
		cc := atomic.LoadInt32(&ss.connCount)
		if cc == 0 {
			break
		}
		if cc != last {
			log.WithFields(log.Fields{
				"address":     ss.address,
				"connections": cc,
			}).Info("waiting for active ssh connections")
			last = cc
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return err
}
