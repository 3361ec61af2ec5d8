// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"code.hybscloud.com/bwnet"
	"code.hybscloud.com/bwnet/internal/logging"
	"code.hybscloud.com/bwnet/internal/wireframe"
	"code.hybscloud.com/bwnet/session"
)

var (
	serveConfigPath string
	serveCapture    string
)

func addServeCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a UDP loopback session that logs and acknowledges received packets",
		Long: "serve runs a small demonstrator of the codec's collaborator API: it listens on a " +
			"UDP socket, decodes each datagram, logs it, and replies with an empty, reliable " +
			"packet carrying a cumulative ack. It does not bundle, dispatch, or replicate.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	f := cmd.Flags()
	f.StringVar(&serveConfigPath, "config", "", "Path to a toml config file (see session.Config)")
	f.StringVar(&serveCapture, "capture", "", "Optional path to write a wireframe capture of all traffic")
	root.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := session.DefaultConfig()
	if serveConfigPath != "" {
		loaded, err := session.LoadConfig(serveConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	pc, err := net.ListenPacket("udp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer pc.Close()

	if cfg.MetricsAddr != "" {
		srv := session.StartMetricsHTTP(cfg.MetricsAddr)
		defer srv.Close()
	}

	base := session.NewConn(pc, cfg.Options()...)
	conn, closer, err := wrapCapture(base, serveCapture)
	if err != nil {
		return err
	}
	defer closer()

	logging.L().Info("serve_listen", "addr", pc.LocalAddr().String())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logging.L().Info("serve_shutdown")
			return nil
		default:
		}

		recv, err := conn.Receive()
		if err != nil {
			if errors.Is(err, bwnet.ErrWouldBlock) {
				continue
			}
			var syncErr *bwnet.PacketSyncError
			if errors.As(err, &syncErr) {
				// A malformed datagram from one peer must not take down
				// the loop; log it and keep serving everyone else.
				continue
			}
			return fmt.Errorf("receive: %w", err)
		}

		logging.L().Info("packet_received",
			"from", recv.From.String(),
			"prefix", recv.Prefix,
			"body_len", len(recv.Body),
			"reliable", recv.Config.Reliable(),
		)

		ack := bwnet.NewPacketConfig()
		ack.SetReliable(true)
		if seq := recv.Config.SequenceNum(); seq != 0 {
			ack.SetCumulativeAck(seq)
		} else {
			ack.SetCumulativeAck(1)
		}
		if err := conn.Send(recv.From, recv.Prefix, nil, ack); err != nil {
			logging.L().Warn("ack_send_failed", "to", recv.From.String(), "error", err)
		}
	}
}

// wrapCapture optionally swaps conn's Send/Receive path for a
// CaptureConn writing to path. The returned cleanup func is always
// safe to defer, even when path is empty.
func wrapCapture(conn *session.Conn, path string) (session.SendReceiver, func(), error) {
	if path == "" {
		return conn, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("bwnetctl: opening capture file: %w", err)
	}
	cc := session.NewCaptureConn(conn, wireframe.NewWriter(f))
	return cc, func() { f.Close() }, nil
}
