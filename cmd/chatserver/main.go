// Command chatserver runs the chat server: `chatserver <host> <port>`.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kbaird/chatterm/internal/chatserver"
	"github.com/kbaird/chatterm/internal/settings"
)

func main() {
	host, port, configFile, err := parseArgs(os.Args[1:])
	if err != nil {
		printUsage(err)
		os.Exit(1)
	}

	sett, err := settings.Load(configFile)
	if err != nil {
		logrus.WithError(err).Fatalf("%+v", err)
	}

	if level, err := logrus.ParseLevel(sett.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	srv := chatserver.New(chatserver.FromSettings(sett))

	addr := net.JoinHostPort(host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logrus.Fatalf("%+v", pkgerrors.Wrapf(err, "unable to listen on %s", addr))
	}

	go handleShutdownSignal(ln)

	logrus.Infof("Listening on %s", addr)

	if err := srv.Serve(ln); err != nil {
		if errors.Is(err, net.ErrClosed) {
			logrus.Info("server shut down cleanly")
			os.Exit(0)
		}
		logrus.Fatalf("%+v", err)
	}
}

func handleShutdownSignal(ln net.Listener) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	_ = ln.Close()
}

func parseArgs(args []string) (host, port, configFile string, err error) {
	fs := flag.NewFlagSet("chatserver", flag.ContinueOnError)
	config := fs.String("config", "", "Optional settings file.")
	if err := fs.Parse(args); err != nil {
		return "", "", "", err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return "", "", "", fmt.Errorf("usage: chatserver [-config FILE] <host> <port>")
	}

	return rest[0], rest[1], *config, nil
}

func printUsage(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
	_, _ = fmt.Fprintf(os.Stderr, "Usage: chatserver [-config FILE] <host> <port>\n")
}
