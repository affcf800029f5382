// Package oscio bridges the drum machine and OSC hosts such as SuperCollider:
// pad hits and clicks go out, pad hits and transport commands come in.
package oscio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/hypebeast/go-osc/osc"
)

const (
	PadAddress      = "/drum/pad"
	ClickAddress    = "/drum/click"
	RecordAddress   = "/drum/record"
	PlayStopAddress = "/drum/play"
	ClearAddress    = "/drum/clear"
)

// PadMessage is /drum/pad <pad>.
func PadMessage(pad int) *osc.Message {
	return osc.NewMessage(PadAddress, int32(pad))
}

// ClickMessage is /drum/click <1 on the downbeat, else 0>.
func ClickMessage(downbeat bool) *osc.Message {
	var accent int32
	if downbeat {
		accent = 1
	}
	return osc.NewMessage(ClickAddress, accent)
}

// Sink forwards pad triggers and clicks to an OSC host. Send failures are
// logged and dropped.
type Sink struct {
	client *osc.Client
	log    *slog.Logger
}

func NewSink(host string, port int, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sink{
		client: osc.NewClient(host, port),
		log:    log.With("component", "osc", "host", fmt.Sprintf("%s:%d", host, port)),
	}
}

func (s *Sink) PlayPad(pad int) {
	s.send(PadMessage(pad))
}

func (s *Sink) Click(downbeat bool) {
	s.send(ClickMessage(downbeat))
}

func (s *Sink) send(msg *osc.Message) {
	if err := s.client.Send(msg); err != nil {
		s.log.Warn("send failed", "address", msg.Address, "err", err)
	}
}

// Commands receives remote input. Handlers run on the server's goroutines;
// nil handlers are skipped.
type Commands struct {
	Hit      func(pad int)
	Record   func()
	PlayStop func()
	Clear    func()
}

// Dispatcher routes the drum addresses to cmds.
func Dispatcher(cmds Commands, log *slog.Logger) (*osc.StandardDispatcher, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d := osc.NewStandardDispatcher()
	err := d.AddMsgHandler(PadAddress, func(msg *osc.Message) {
		pad, ok := intArg(msg)
		if !ok || pad < 0 {
			log.Warn("bad pad message", "msg", msg.String())
			return
		}
		if cmds.Hit != nil {
			cmds.Hit(pad)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("osc handler %s: %w", PadAddress, err)
	}
	for addr, fn := range map[string]func(){
		RecordAddress:   cmds.Record,
		PlayStopAddress: cmds.PlayStop,
		ClearAddress:    cmds.Clear,
	} {
		if fn == nil {
			continue
		}
		if err := d.AddMsgHandler(addr, func(*osc.Message) { fn() }); err != nil {
			return nil, fmt.Errorf("osc handler %s: %w", addr, err)
		}
	}
	return d, nil
}

// Serve dispatches messages read from conn until ctx is done, then closes
// conn.
func Serve(ctx context.Context, conn net.PacketConn, cmds Commands, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d, err := Dispatcher(cmds, log)
	if err != nil {
		conn.Close()
		return err
	}
	server := &osc.Server{Dispatcher: d}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	log.Info("osc listening", "addr", conn.LocalAddr().String())
	err = server.Serve(conn)
	if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return fmt.Errorf("osc server: %w", err)
}

// Listen opens a UDP socket on addr and serves it.
func Listen(ctx context.Context, addr string, cmds Commands, log *slog.Logger) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("osc listen %s: %w", addr, err)
	}
	return Serve(ctx, conn, cmds, log)
}

func intArg(msg *osc.Message) (int, bool) {
	if len(msg.Arguments) == 0 {
		return 0, false
	}
	switch v := msg.Arguments[0].(type) {
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
