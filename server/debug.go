// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"

	"go.uber.org/zap"
)

func debugHandler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/debug/pprof/", pprof.Index)
	m.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	m.HandleFunc("/debug/pprof/profile", pprof.Profile)
	m.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	m.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return m
}

// listenDebug serves the profiler on the loopback interface only.
func (l *Listener) listenDebug(ctx context.Context) error {
	var lc net.ListenConfig
	ls, err := lc.Listen(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(l.cfg.DebugPort)))
	if err != nil {
		l.log.Fatal("Debug server error", zap.Error(err))
		return err
	}

	l.debugSrv = &http.Server{
		Handler:           debugHandler(),
		ReadHeaderTimeout: l.cfg.HeadersTimeout,
		ErrorLog:          zap.NewStdLog(l.log.Named("debug")),
	}
	go l.serve(l.debugSrv, ls)

	l.log.Debug("Profiler is listening", zap.String("addr", ls.Addr().String()))
	return nil
}
