package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusSnapshot is one refresh of the player's on-chain position,
// pre-formatted by the caller.
type StatusSnapshot struct {
	Block          uint64
	PinContentID   string
	PinTokenID     string
	Shares         string
	Claimable      string
	TotalDeposits  string
	GameBalance    string
	PaymentBalance string
	BaseFeeBps     int
	EffectiveBps   int
	DiscountBps    int
	Equipped       []string // flair names, empty slots omitted
	AuctionPrice   string
	AuctionRemain  string
	ErrMsg         string
}

var statusSpinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type statusTickMsg struct{}
type statusPollMsg struct{}

func statusSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

// StatusModel is the Bubble Tea model for `pincli status --watch`.
type StatusModel struct {
	Address  string
	Interval time.Duration
	Fetch    func() StatusSnapshot

	snap     StatusSnapshot
	loaded   bool
	frame    int
	fetching bool
	Quitting bool
}

func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(statusSpinTick(), m.poll())
}

func (m StatusModel) poll() tea.Cmd {
	return func() tea.Msg {
		return m.Fetch()
	}
}

func (m StatusModel) schedulePoll() tea.Cmd {
	return tea.Tick(m.Interval, func(time.Time) tea.Msg {
		return statusPollMsg{}
	})
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case "r":
			m.fetching = true
			return m, m.poll()
		}

	case statusTickMsg:
		m.frame = (m.frame + 1) % len(statusSpinFrames)
		return m, statusSpinTick()

	case statusPollMsg:
		m.fetching = true
		return m, m.poll()

	case StatusSnapshot:
		m.snap = msg
		m.loaded = true
		m.fetching = false
		return m, m.schedulePoll()
	}

	return m, nil
}

func (m StatusModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := statusSpinFrames[m.frame]

	title := fmt.Sprintf("⛏  Pin Status  ·  %s", TruncateAddr(m.Address))
	sb.WriteString(StyleTitle.Render(title) + "\n")

	switch {
	case m.snap.ErrMsg != "":
		sb.WriteString(StyleError.Render("✗ "+m.snap.ErrMsg) + "\n\n")
	case m.fetching || !m.loaded:
		sb.WriteString(StyleInfo.Render(spin+" refreshing…") + "\n\n")
	default:
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  block #%d", m.snap.Block)) + "\n\n")
	}

	if !m.loaded {
		sb.WriteString(StyleMeta.Render("  Loading position…") + "\n")
		return sb.String()
	}

	s := m.snap
	row := func(label, value string) {
		sb.WriteString(padR(StyleDim.Render(label), 18) + "  " + value + "\n")
	}

	if s.PinContentID != "" {
		row("PIN", Val(s.PinContentID)+StyleMeta.Render("  (token #"+s.PinTokenID+")"))
	} else {
		row("PIN", StyleMeta.Render("not minted"))
	}
	row("SHARES", Val(s.Shares))
	row("CLAIMABLE", StyleSuccess.Render(s.Claimable))
	row("POOL DEPOSITS", Val(s.TotalDeposits))
	if s.GameBalance != "" {
		row("GAME TOKEN", Val(s.GameBalance))
	}
	if s.PaymentBalance != "" {
		row("PAYMENT TOKEN", Val(s.PaymentBalance))
	}

	fee := fmt.Sprintf("%d bps", s.EffectiveBps)
	if s.DiscountBps > 0 {
		fee += StyleMeta.Render(fmt.Sprintf("  (base %d, flair −%d)", s.BaseFeeBps, s.DiscountBps))
	}
	row("FEE RATE", Val(fee))

	if len(s.Equipped) > 0 {
		row("EQUIPPED", StyleChain.Render(strings.Join(s.Equipped, ", ")))
	} else {
		row("EQUIPPED", StyleMeta.Render("none"))
	}

	if s.AuctionPrice != "" {
		sb.WriteString("\n" + StyleHeader.Render("AUCTION") + "\n")
		row("PRICE", Val(s.AuctionPrice))
		row("REMAINING", Val(s.AuctionRemain))
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("[ r ]") + StyleMeta.Render(" refresh") +
		StyleMeta.Render("   [ q ] quit"))
	sb.WriteString("\n")

	return sb.String()
}
