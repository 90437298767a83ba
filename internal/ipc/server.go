package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"credaq/internal/acquisition"
	"credaq/internal/config"
	"credaq/internal/daemon"
	"credaq/internal/logging"
	"credaq/internal/sessions"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, cfg: cfg, logger: logging.NewComponentLogger(logger, "ipc")}
	if err := rpcServer.RegisterName("Credaq", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
			s.conns[conn] = struct{}{}
			s.wg.Add(1)
			s.mu.Unlock()
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
				s.mu.Lock()
				delete(s.conns, c)
				s.mu.Unlock()
				_ = c.Close()
			}(conn)
		}
	}()
}

// Close stops the server, disconnects remaining clients, and removes the
// socket file. It never waits for an idle client to hang up.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for _, conn := range conns {
		_ = conn.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"))
	}
}

type service struct {
	daemon *daemon.Daemon
	cfg    *config.Config
	logger *slog.Logger
}

func (s *service) Start(req StartRequest, resp *StartResponse) error {
	params := acquisition.ParamsFromConfig(s.cfg)
	if req.Sample != "" {
		params.Sample = req.Sample
	}
	if req.ExposureMillis > 0 {
		params.Exposure = time.Duration(req.ExposureMillis) * time.Millisecond
	}
	if req.FrameCapacity > 0 {
		params.FrameCapacity = req.FrameCapacity
	}
	if req.AutoStop != nil {
		params.AutoStop = *req.AutoStop
	}

	id, err := s.daemon.StartSession(params)
	if err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.SessionID = id
	resp.Message = "session started"
	s.logger.Info("session started via IPC",
		logging.String(logging.FieldSessionID, id),
		logging.String(logging.FieldSample, params.Sample))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	if err := s.daemon.StopSession(); err != nil {
		resp.Stopped = false
		resp.Message = err.Error()
		return nil
	}
	resp.Stopped = true
	resp.Message = "stop requested"
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockPath
	resp.SessionsPath = status.SessionsPath
	resp.SessionID = status.Acquisition.SessionID
	resp.Sample = status.Acquisition.Sample
	resp.State = string(status.Acquisition.State)
	resp.FramesCollected = status.Acquisition.FramesCollected
	resp.FrameCapacity = status.Acquisition.FrameCapacity
	resp.LastAngle = status.Acquisition.LastAngle
	return nil
}

func (s *service) SessionList(req SessionListRequest, resp *SessionListResponse) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := s.daemon.ListSessions(ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Sessions = make([]SessionRecord, 0, len(records))
	for _, rec := range records {
		resp.Sessions = append(resp.Sessions, convertRecord(rec))
	}
	return nil
}

func (s *service) SessionDescribe(req SessionDescribeRequest, resp *SessionDescribeResponse) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, err := s.daemon.GetSession(ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Session = convertRecord(rec)
	return nil
}

func (s *service) SpeedGet(_ SpeedGetRequest, resp *SpeedGetResponse) error {
	speed, err := s.daemon.RotationSpeed()
	if err != nil {
		return err
	}
	resp.Speed = speed
	return nil
}

func (s *service) SpeedSet(req SpeedSetRequest, resp *SpeedSetResponse) error {
	if err := s.daemon.SetRotationSpeed(req.Speed); err != nil {
		return err
	}
	resp.Speed = req.Speed
	return nil
}

func convertRecord(rec sessions.Record) SessionRecord {
	return SessionRecord{
		ID:               rec.ID,
		Sample:           rec.Sample,
		State:            rec.State,
		ExperimentDir:    rec.ExperimentDir,
		FramesCollected:  rec.FramesCollected,
		StartAngle:       rec.StartAngle,
		EndAngle:         rec.EndAngle,
		RotationRange:    rec.RotationRange,
		OscillationAngle: rec.OscillationAngle,
		RotationSpeed:    rec.RotationSpeed,
		ExposureMillis:   rec.Exposure.Milliseconds(),
		TotalMillis:      rec.TotalTime.Milliseconds(),
		AbortReason:      rec.AbortReason,
		StartedAt:        rec.StartedAt,
		FinishedAt:       rec.FinishedAt,
	}
}
