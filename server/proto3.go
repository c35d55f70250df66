package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	pgproto3 "github.com/jackc/pgproto3/v2"
	"github.com/lib/pq/oid"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/nquery/engine"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/syntax"
)

const (
	syntaxErrorCode   = "42601"
	internalErrorCode = "XX000"
)

type Proto3Config struct {
	Address string
}

func (svr *Server) ListenAndServeProto3(p3Cfg Proto3Config) error {
	l, err := net.Listen("tcp", p3Cfg.Address)
	if err != nil {
		return err
	}
	return svr.ServeProto3(l)
}

// ServeProto3 accepts PostgreSQL wire protocol v3 connections on l until the server is
// closed or shutdown.
func (svr *Server) ServeProto3(l net.Listener) error {
	if !svr.addListener(l) {
		return ErrServerClosed
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			if svr.isShutdown() {
				err = ErrServerClosed
			}
			log.WithField("error", err.Error()).Error("proto3 accept")
			return err
		}

		entry := log.WithFields(log.Fields{
			"addr": conn.RemoteAddr().String(),
		})
		entry.Info("proto3 connected")

		go svr.handleProto3Conn(conn, entry)
	}
}

func (svr *Server) handleProto3Conn(conn net.Conn, entry *log.Entry) {
	atomic.AddInt32(&svr.connCount, 1)
	defer atomic.AddInt32(&svr.connCount, -1)

	defer func() {
		entry.Info("proto3 disconnected")
	}()

	if !svr.trackConn(conn, true) {
		conn.Close()
		return
	}

	defer func() {
		if svr.trackConn(conn, false) {
			conn.Close()
		}
	}()

	be := pgproto3.NewBackend(pgproto3.NewChunkReader(conn), conn)

	var user string
	for user == "" {
		msg, err := be.ReceiveStartupMessage()
		if err != nil {
			entry.Errorf("receive startup message: %s", err)
			return
		}

		switch msg := msg.(type) {
		case *pgproto3.StartupMessage:
			entry.Debugf("protocol version: %d", msg.ProtocolVersion)
			for nam, val := range msg.Parameters {
				entry.Debugf("parameter: %s = %s", nam, val)
			}
			user = msg.Parameters["user"]
			if user == "" {
				user = "unknown"
			}

			err = proto3Startup(conn)
			if err != nil {
				entry.Errorf("send startup: %s", err)
				return
			}
		case *pgproto3.SSLRequest:
			_, err := conn.Write([]byte("N"))
			if err != nil {
				entry.Errorf("send deny SSL request: %s", err)
				return
			}
		default:
			entry.Errorf("unknown startup message: %v", msg)
			return
		}
	}

	svr.withSession(user, "proto3", conn.RemoteAddr().String(), false,
		func(ses *Session) {
			handleProto3Session(ses, be, conn, entry)
		})
}

func proto3Startup(conn net.Conn) error {
	buf := (&pgproto3.AuthenticationOk{}).Encode(nil)
	buf = (&pgproto3.ParameterStatus{
		Name:  "server_version",
		Value: fmt.Sprintf("%d.%d", sql.MajorVersion, sql.MinorVersion),
	}).Encode(buf)
	buf = (&pgproto3.ParameterStatus{Name: "client_encoding", Value: "UTF8"}).Encode(buf)
	buf = (&pgproto3.ParameterStatus{Name: "DateStyle", Value: "ISO, MDY"}).Encode(buf)
	_, err := conn.Write(buf)
	return err
}

func dataType(typ sql.Type) (oid.Oid, int16, int32) {
	// Return oid, size, and type modifier.
	switch typ {
	case sql.SByteType, sql.ByteType, sql.ShortType:
		return oid.T_int2, 2, -1
	case sql.UShortType, sql.IntType:
		return oid.T_int4, 4, -1
	case sql.UIntType, sql.LongType:
		return oid.T_int8, 8, -1
	case sql.ULongType:
		return oid.T_numeric, -1, -1
	case sql.CharType:
		return oid.T_bpchar, -1, 1 + 4
	case sql.FloatType:
		return oid.T_float4, 4, -1
	case sql.DoubleType:
		return oid.T_float8, 8, -1
	case sql.BooleanType:
		return oid.T_bool, 1, -1
	case sql.DateType:
		return oid.T_timestamp, 8, -1
	default:
		return oid.T_text, -1, -1
	}
}

func formatValue(v sql.Value) []byte {
	switch v := v.(type) {
	case nil:
		return nil
	case bool:
		if v {
			return []byte("t")
		}
		return []byte("f")
	case string:
		return []byte(v)
	case time.Time:
		return []byte(v.Format("2006-01-02 15:04:05.999999"))
	default:
		return []byte(sql.Format(v))
	}
}

func handleProto3Session(ses *Session, be *pgproto3.Backend, conn net.Conn,
	entry *log.Entry) {

	ctx := context.Background()
	for {
		_, err := conn.Write((&pgproto3.ReadyForQuery{TxStatus: 'I'}).Encode(nil))
		if err != nil {
			entry.Errorf("send ready for query: %s", err)
			return
		}

		msg, err := be.Receive()
		if err != nil {
			if err != io.EOF {
				entry.Errorf("receive: %s", err)
			}
			return
		}

		switch msg := msg.(type) {
		case *pgproto3.Query:
			proto3Query(ctx, ses, conn, msg, entry)
		case *pgproto3.Terminate:
			return
		default:
			buf, _ := json.Marshal(msg)
			entry.Errorf("backend unexpected message: %s", string(buf))
			proto3ErrorResponse(conn, fmt.Errorf("server: unsupported message: %T", msg), entry)
		}
	}
}

// proto3Query runs each of the statements in a simple query message; the first statement
// to fail ends the query.
func proto3Query(ctx context.Context, ses *Session, conn net.Conn, msg *pgproto3.Query,
	entry *log.Entry) {

	rr := strings.NewReader(msg.String)
	var cnt int
	for {
		stmt, err := syntax.ReadStatement(rr)
		if err == io.EOF {
			break
		} else if err != nil {
			proto3ErrorResponse(conn, err, entry)
			return
		}
		cnt += 1

		err = proto3Statement(ctx, ses, conn, stmt, entry)
		if err != nil {
			proto3ErrorResponse(conn, err, entry)
			return
		}
	}

	if cnt == 0 {
		_, err := conn.Write((&pgproto3.EmptyQueryResponse{}).Encode(nil))
		if err != nil {
			entry.Errorf("send empty query response: %s", err)
		}
	}
}

func proto3Statement(ctx context.Context, ses *Session, conn net.Conn, stmt string,
	entry *log.Entry) error {

	c := engine.NewQueryCompilation(ses.DataContext, stmt)
	c.Flags = ses.Flags
	q, err := c.Compile()
	if err != nil {
		return err
	}

	r, err := q.CreateReader(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	var fields []pgproto3.FieldDescription
	cols := r.Columns()
	for _, col := range cols {
		oid, sz, tmod := dataType(col.Type)
		fields = append(fields,
			pgproto3.FieldDescription{
				Name:                 []byte(col.Name),
				TableOID:             0,
				TableAttributeNumber: 0,
				DataTypeOID:          uint32(oid),
				DataTypeSize:         sz,
				TypeModifier:         tmod,
				Format:               0, // Text format; binary format = 1
			})
	}
	_, err = conn.Write((&pgproto3.RowDescription{Fields: fields}).Encode(nil))
	if err != nil {
		entry.Errorf("send row description: %s", err)
		return err
	}

	err = r.Start()
	if err != nil {
		return err
	}

	values := make([][]byte, len(cols))
	var n int64
	for {
		ok, err := r.NextRow()
		if err != nil {
			return err
		} else if !ok {
			break
		}

		for vdx := range values {
			values[vdx] = formatValue(r.Value(vdx))
		}
		_, err = conn.Write((&pgproto3.DataRow{Values: values}).Encode(nil))
		if err != nil {
			entry.Errorf("send data row: %s", err)
			return err
		}

		n += 1
	}

	proto3CommandComplete(conn, "SELECT", n, entry)
	return nil
}

func proto3ErrorResponse(conn net.Conn, err error, entry *log.Entry) {
	er := pgproto3.ErrorResponse{
		Severity: "ERROR",
		Code:     internalErrorCode,
		Message:  err.Error(),
	}

	var de *engine.DiagnosticsError
	if errors.As(err, &de) && len(de.Diagnostics) > 0 {
		var lines []string
		for _, d := range de.Diagnostics {
			lines = append(lines, engine.FormatDiagnostic(de.Text, d))
		}
		er.Code = syntaxErrorCode
		er.Message = lines[0]
		er.Detail = strings.Join(lines, "\n")
		er.Position = int32(de.Diagnostics[0].Span.Start) + 1
	}

	_, cerr := conn.Write(er.Encode(nil))
	if cerr != nil {
		entry.Errorf("send error response: %s", cerr)
	}
}

func proto3CommandComplete(conn net.Conn, tag string, n int64, entry *log.Entry) {
	var cmdTag string
	if n < 0 {
		cmdTag = tag
	} else {
		cmdTag = fmt.Sprintf("%s %d", tag, n)
	}
	_, err := conn.Write((&pgproto3.CommandComplete{CommandTag: []byte(cmdTag)}).Encode(nil))
	if err != nil {
		entry.Errorf("send command complete: %s", err)
	}
}
