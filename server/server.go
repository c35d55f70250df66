package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/symbols"
)

var ErrServerClosed = errors.New("server: closed")

// Session is one client of the server; each session queries the data context of the
// server with its own copy of the flags.
type Session struct {
	ID          uuid.UUID
	DataContext *symbols.DataContext
	Flags       flags.Flags
	User        string
	Type        string
	Addr        string
	Interactive bool
}

func (ses *Session) String() string {
	return "session-" + ses.ID.String()
}

type Handler func(ses *Session, rr io.RuneReader, w io.Writer)

type Server struct {
	Handler     Handler
	DataContext *symbols.DataContext
	Flags       flags.Flags

	mutex      sync.Mutex
	listeners  map[net.Listener]struct{}
	sshServers map[*sshServer]struct{}
	activeConn map[net.Conn]struct{}
	connCount  int32
	shutdown   bool
	closed     bool
}

func (svr *Server) newSession(user, typ, addr string, interactive bool) *Session {
	dc := svr.DataContext
	if dc == nil {
		dc = symbols.NewDataContext()
	}
	flgs := flags.Default()
	copy(flgs, svr.Flags)

	return &Session{
		ID:          uuid.New(),
		DataContext: dc,
		Flags:       flgs,
		User:        user,
		Type:        typ,
		Addr:        addr,
		Interactive: interactive,
	}
}

func (svr *Server) withSession(user, typ, addr string, interactive bool,
	fn func(ses *Session)) {

	ses := svr.newSession(user, typ, addr, interactive)
	entry := log.WithFields(log.Fields{
		"session": ses.String(),
		"user":    user,
		"type":    typ,
		"addr":    addr,
	})
	entry.Info("session started")
	start := time.Now()

	fn(ses)

	entry.WithField("elapsed", time.Since(start)).Info("session done")
}

// Handle runs the Handler of the server on a new session reading statements from rr and
// writing results to w.
func (svr *Server) Handle(rr io.RuneReader, w io.Writer, user, typ, addr string,
	interactive bool) {

	svr.withSession(user, typ, addr, interactive,
		func(ses *Session) {
			svr.Handler(ses, rr, w)
		})
}

func (svr *Server) addListener(l net.Listener) bool {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.shutdown {
		l.Close()
		return false
	}
	if svr.listeners == nil {
		svr.listeners = map[net.Listener]struct{}{}
	}
	svr.listeners[l] = struct{}{}
	return true
}

func (svr *Server) addServer(ss *sshServer) bool {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.shutdown {
		ss.listener.Close()
		return false
	}
	if svr.sshServers == nil {
		svr.sshServers = map[*sshServer]struct{}{}
	}
	svr.sshServers[ss] = struct{}{}
	return true
}

func (svr *Server) isShutdown() bool {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	return svr.shutdown
}

func (svr *Server) trackConn(conn net.Conn, add bool) bool {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.closed {
		return false
	}
	if add {
		if svr.activeConn == nil {
			svr.activeConn = map[net.Conn]struct{}{}
		}
		svr.activeConn[conn] = struct{}{}
	} else {
		delete(svr.activeConn, conn)
	}
	return true
}

func (svr *Server) closeListeners() error {
	var err error
	if !svr.shutdown {
		for l := range svr.listeners {
			lerr := l.Close()
			if lerr != nil && err == nil {
				err = lerr
			}
		}
		svr.shutdown = true
	}
	return err
}

// Close immediately closes all listeners and active connections.
func (svr *Server) Close() error {
	svr.mutex.Lock()
	if svr.closed {
		svr.mutex.Unlock()
		return nil
	}
	err := svr.closeListeners()
	svr.closed = true
	for conn := range svr.activeConn {
		conn.Close()
		delete(svr.activeConn, conn)
	}
	servers := svr.sshServers
	svr.mutex.Unlock()

	for ss := range servers {
		serr := ss.Close()
		if serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// Shutdown closes all listeners and then waits for active connections to finish or for
// ctx to be done.
func (svr *Server) Shutdown(ctx context.Context) error {
	svr.mutex.Lock()
	if svr.closed {
		svr.mutex.Unlock()
		return nil
	}
	err := svr.closeListeners()
	servers := svr.sshServers
	svr.mutex.Unlock()

	for ss := range servers {
		serr := ss.Shutdown(ctx)
		if serr != nil && err == nil {
			err = serr
		}
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := int32(-1)
	for {
		cc := atomic.LoadInt32(&svr.connCount)
		if cc == 0 {
			break
		}
		if cc != last {
			log.WithField("connections", cc).Info("waiting for active connections")
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
