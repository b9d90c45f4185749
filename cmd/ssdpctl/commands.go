package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ssdp/internal/capture"
	"github.com/muurk/ssdp/internal/config"
	"github.com/muurk/ssdp/internal/discovery"
	"github.com/muurk/ssdp/internal/netif"
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/transport"
	"github.com/muurk/ssdp/internal/tui"
	"github.com/muurk/ssdp/internal/ui"
)

// Command flags
var (
	searchTimeout time.Duration
	searchUSN     string
	outputFormat  string

	announceInterval time.Duration
	announceCount    int

	listenRaw     bool
	listenVerbose bool
	listenSearch  string
	listenCapture string

	monitorTarget string

	forceInit bool
)

func init() {
	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(announceCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(configCmd)
}

// sessionOptions builds session options from the loaded configuration
func sessionOptions(consumer discovery.Consumer) discovery.Options {
	return discovery.Options{
		Port:          cfg.Port,
		Header:        cfg.Header,
		MaxInterfaces: cfg.MaxInterfaces,
		Consumer:      consumer,
		Logger:        logger,
	}
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newPrinter(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout())
}

// interfacesCmd lists the interfaces messages would be sent on
var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List the active IPv4 interfaces used for sending",
	Long: `List the active IPv4 interfaces that announcements and searches
are sent on, in the order they are used.`,
	RunE: runInterfaces,
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	ifaces, err := netif.NewEnumerator(cfg.MaxInterfaces, logger).Refresh()
	if err != nil {
		p.PrintError("Interface enumeration failed", err, []string{
			"Check that the host has at least one IPv4 address",
			fmt.Sprintf("Raise max_interfaces in %s if the host has many interfaces", configPath),
		})
		return err
	}

	p.PrintInterfaces(ifaces)
	return nil
}

// searchCmd sends an M-SEARCH and lists the peers that answer
var searchCmd = &cobra.Command{
	Use:   "search [target]",
	Short: "Search for SSDP peers",
	Long: `Send an M-SEARCH on every interface and list the peers that respond or
announce themselves before the timeout.

The target defaults to the search_target from the config file.`,
	Example: `  # Search for everything
  ssdpctl search ssdp:all

  # Wait up to 10 seconds for one particular peer
  ssdpctl search --usn uuid:1234 --timeout 10s

  # Machine readable output
  ssdpctl search --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", discovery.DefaultScanTimeout, "How long to listen for replies")
	searchCmd.Flags().StringVar(&searchUSN, "usn", "", "Stop as soon as the peer with this USN is seen")
	searchCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if outputFormat != "table" && outputFormat != "json" {
		return fmt.Errorf("unknown --format %q (expected table or json)", outputFormat)
	}

	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	sc := discovery.NewScanner(sessionOptions(nil))
	sc.Timeout = searchTimeout
	sc.PollInterval = cfg.PollInterval.Std()
	defer sc.Session().Close()

	p := newPrinter(cmd)

	var peers []*discovery.Peer
	if searchUSN != "" {
		peer, err := sc.WaitForPeer(ctx, target, searchUSN)
		if err != nil {
			return err
		}
		peers = []*discovery.Peer{peer}
	} else {
		found, err := sc.Scan(ctx, target)
		if err != nil {
			return err
		}
		peers = found
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(peers)
	}

	if len(peers) == 0 {
		p.Println("No peers found.")
		return nil
	}
	p.PrintPeers(peers, time.Now())
	return nil
}

// announceCmd sends ssdp:alive NOTIFY messages
var announceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Announce this host with NOTIFY messages",
	Long: `Send an ssdp:alive NOTIFY on every interface using the header values from
the config file. With a non-zero interval the announcement repeats until
interrupted.`,
	Example: `  # Announce once
  ssdpctl announce --interval 0

  # Announce every 30 seconds until Ctrl+C
  ssdpctl announce --interval 30s`,
	RunE: runAnnounce,
}

func init() {
	announceCmd.Flags().DurationVar(&announceInterval, "interval", 0, "Repeat interval, 0 announces once (default from config)")
	announceCmd.Flags().IntVar(&announceCount, "count", 0, "Stop after this many announcements, 0 for no limit")
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	interval := cfg.AnnounceInterval.Std()
	if cmd.Flags().Changed("interval") {
		interval = announceInterval
	}
	if interval < 0 {
		return fmt.Errorf("--interval must not be negative, got %s", interval)
	}

	if cfg.Header.USN == "" {
		logger.Warn("No USN configured, peers cannot tell announcements apart")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	session := discovery.NewSession(sessionOptions(nil))
	p := newPrinter(cmd)

	for sent := 1; ; sent++ {
		results, err := session.Announce()
		if err != nil {
			return err
		}
		p.PrintSendResults("NOTIFY", results)

		if interval == 0 || (announceCount > 0 && sent >= announceCount) {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// listenCmd prints every datagram received on the multicast group
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print SSDP traffic on the multicast group",
	Long: `Join the SSDP multicast group and print every datagram received until
interrupted. Datagrams that do not parse as SSDP are shown raw.`,
	Example: `  # Show parsed packets
  ssdpctl listen

  # Search first, then show the replies with all headers
  ssdpctl listen --search ssdp:all --verbose

  # Show the raw bytes of every datagram
  ssdpctl listen --raw

  # Record traffic for later replay
  ssdpctl listen --capture ssdp.jsonl`,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().BoolVar(&listenRaw, "raw", false, "Print the raw bytes of every datagram")
	listenCmd.Flags().BoolVarP(&listenVerbose, "verbose", "v", false, "Print every header")
	listenCmd.Flags().StringVar(&listenSearch, "search", "", "Send an M-SEARCH for this target after joining")
	listenCmd.Flags().StringVar(&listenCapture, "capture", "", "Append every datagram to this JSONL file")
}

func runListen(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	show := func(dg transport.Datagram, pkt *protocol.Packet) {
		if listenRaw {
			p.PrintRaw(fmt.Sprintf("%d bytes from %s", len(dg.Data), dg.From), dg.Data)
			return
		}
		p.PrintPacket(dg, pkt, listenVerbose)
	}
	h := &discovery.Handler{
		OnSearch:   show,
		OnNotify:   show,
		OnResponse: show,
		OnUnknown: func(dg transport.Datagram) {
			p.PrintRaw(fmt.Sprintf("Unrecognised datagram from %s", dg.From), dg.Data)
		},
	}

	consumer := h.Consume
	if listenCapture != "" {
		w, err := capture.Create(listenCapture, logger)
		if err != nil {
			return err
		}
		defer func() {
			logger.Info("Capture closed", zap.String("file", listenCapture), zap.Int("records", w.Count()))
			_ = w.Close()
		}()
		consumer = discovery.Chain(w.Consume, h.Consume)
	}

	session := discovery.NewSession(sessionOptions(consumer))
	if err := session.Open(); err != nil {
		p.PrintError("Could not join the multicast group", err, []string{
			fmt.Sprintf("Check that nothing else has port %d bound without SO_REUSEADDR", session.Port()),
			"Check that the host has a multicast capable interface",
		})
		return err
	}
	defer session.Close()

	p.PrintHeader("Listening", "listen", map[string]string{
		"group": fmt.Sprintf("239.255.255.250:%d", session.Port()),
	})

	if listenSearch != "" {
		results, err := session.Search(listenSearch)
		if err != nil {
			return err
		}
		p.PrintSendResults("M-SEARCH", results)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	ticker := time.NewTicker(cfg.PollInterval.Std())
	defer ticker.Stop()

	for {
		if _, err := session.Drain(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// monitorCmd opens the interactive peer monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch peers in an interactive table",
	Long: `Open a full-screen table of the peers seen on the network. Peers are
dropped when their CACHE-CONTROL max-age runs out.

Keys: s search again, a announce, c clear, q quit.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&monitorTarget, "target", "", "Search target (default from config)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal() {
		return errors.New("monitor needs an interactive terminal, use 'ssdpctl listen' instead")
	}

	peers := discovery.NewPeerTable()
	opts := sessionOptions(tui.Consumer(peers))
	// Log output would be drawn over the full-screen table
	opts.Logger = zap.NewNop()

	session := discovery.NewSession(opts)
	if err := session.Open(); err != nil {
		return err
	}
	defer session.Close()

	return tui.Run(tui.NewMonitorModel(tui.MonitorOptions{
		Session:      session,
		Peers:        peers,
		Target:       monitorTarget,
		PollInterval: cfg.PollInterval.Std(),
	}))
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ssdpctl config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	if err := config.Default().Save(configPath); err != nil {
		return err
	}

	newPrinter(cmd).PrintSuccess("Config written", map[string]string{
		"path": configPath,
	})
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	p.Printf("# %s\n", configPath)
	p.Print(string(out))
	return nil
}
