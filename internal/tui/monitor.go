package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/ssdp/internal/discovery"
	"github.com/muurk/ssdp/internal/protocol"
	"github.com/muurk/ssdp/internal/transport"
)

// Session is the part of discovery.Session the monitor drives
type Session interface {
	Search(target string) ([]transport.SendResult, error)
	Announce() ([]transport.SendResult, error)
	Drain() (int, error)
}

// pollMsg asks the model to drain the receiver
type pollMsg time.Time

// monitorKeyMap defines key bindings for the monitor
type monitorKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Search   key.Binding
	Announce key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Announce, k.Clear, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Search, k.Announce, k.Clear, k.Quit},
	}
}

func defaultMonitorKeys() monitorKeyMap {
	return monitorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search"),
		),
		Announce: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "announce"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MonitorModel shows peers as they announce themselves or answer searches.
// Every poll tick drains the session's receiver from within Update, so the
// session is only touched from the Bubble Tea event loop.
type MonitorModel struct {
	session      Session
	peers        *discovery.PeerTable
	target       string
	pollInterval time.Duration
	now          func() time.Time

	Table   table.Model
	Spinner spinner.Model
	Help    help.Model
	Keys    monitorKeyMap

	Width    int
	Received int
	Status   string
	Err      error
}

// MonitorOptions configures a MonitorModel
type MonitorOptions struct {
	Session      Session
	Peers        *discovery.PeerTable // Filled by the session's consumer
	Target       string               // Search target for the initial and repeated searches
	PollInterval time.Duration
}

// NewMonitorModel creates the monitor. The session must already be open and
// its consumer must feed opts.Peers, see Consumer.
func NewMonitorModel(opts MonitorOptions) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	columns := []table.Column{
		{Title: "USN", Width: 36},
		{Title: "Location", Width: 30},
		{Title: "Type", Width: 12},
		{Title: "Expires", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	if opts.PollInterval <= 0 {
		opts.PollInterval = discovery.DefaultPollInterval
	}
	if opts.Peers == nil {
		opts.Peers = discovery.NewPeerTable()
	}

	return MonitorModel{
		session:      opts.Session,
		peers:        opts.Peers,
		target:       opts.Target,
		pollInterval: opts.PollInterval,
		now:          time.Now,
		Table:        t,
		Spinner:      s,
		Help:         help.New(),
		Keys:         defaultMonitorKeys(),
		Width:        MinTerminalWidth,
	}
}

// Consumer returns a consumer that records datagrams into peers. Pass it to
// the session so that the monitor sees what Drain receives.
func Consumer(peers *discovery.PeerTable) discovery.Consumer {
	return func(dg transport.Datagram, pkt *protocol.Packet) {
		peers.Observe(dg.From, pkt)
	}
}

func (m MonitorModel) poll() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		m.poll(),
		func() tea.Msg { return searchMsg{} },
	)
}

type searchMsg struct{}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Search):
			m = m.search()
			return m, nil
		case key.Matches(msg, m.Keys.Announce):
			m = m.announce()
			return m, nil
		case key.Matches(msg, m.Keys.Clear):
			m.peers.Clear()
			m.Received = 0
			m.refreshRows()
			m.Status = "cleared"
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width)
		m.Table.SetHeight(max(msg.Height-12, 3))
		return m, nil

	case searchMsg:
		m = m.search()
		return m, nil

	case pollMsg:
		n, err := m.session.Drain()
		m.Received += n
		if err != nil {
			m.Err = err
		}
		m.peers.Expire(m.now())
		m.refreshRows()
		return m, m.poll()

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m MonitorModel) search() MonitorModel {
	results, err := m.session.Search(m.target)
	m.Status, m.Err = describe("M-SEARCH", results, err)
	return m
}

func (m MonitorModel) announce() MonitorModel {
	results, err := m.session.Announce()
	m.Status, m.Err = describe("NOTIFY", results, err)
	return m
}

func describe(kind string, results []transport.SendResult, err error) (string, error) {
	if err != nil {
		return "", err
	}
	failed := transport.Failed(results)
	return fmt.Sprintf("%s sent on %d/%d interfaces", kind, len(results)-failed, len(results)), nil
}

func (m *MonitorModel) refreshRows() {
	now := m.now()
	peers := m.peers.Peers()
	rows := make([]table.Row, 0, len(peers))
	for _, p := range peers {
		rows = append(rows, table.Row{
			p.Key(),
			p.Location,
			p.DeviceType,
			p.ExpiresAt().Sub(now).Truncate(time.Second).String(),
		})
	}
	m.Table.SetRows(rows)
}

// View implements tea.Model
func (m MonitorModel) View() string {
	var b strings.Builder

	b.WriteString(m.Spinner.View())
	b.WriteString(" listening")
	if m.target != "" {
		b.WriteString(" for " + m.target)
	}
	b.WriteString("   peers ")
	b.WriteString(CountStyle.Render(fmt.Sprint(m.peers.Len())))
	b.WriteString("   datagrams ")
	b.WriteString(CountStyle.Render(fmt.Sprint(m.Received)))
	b.WriteString("\n\n")

	b.WriteString(m.Table.View())
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + m.Err.Error()))
	} else if m.Status != "" {
		b.WriteString(StatusStyle.Render(m.Status))
	}

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width)
}

// Run starts the monitor as a full-screen program
func Run(m MonitorModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
