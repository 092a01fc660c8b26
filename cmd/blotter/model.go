package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"bondstream/internal/adminapi"
)

var priceLikeFields = []string{"price", "premium", "swapRate"}

// row is one instrument's live state, kept around so a delta (which only
// carries changed fields) can be merged onto the last-known values instead
// of replacing them.
type row struct {
	id       string
	kind     string
	fields   map[string]any
	lastMove int // -1 down, 0 flat, +1 up, keyed off the row's price-like field
}

type model struct {
	wsAddr      string
	instruments []string

	f      *feed
	table  table.Model
	rows   map[string]*row
	order  []string
	err    error
	status string
}

func newModel(wsAddr string, views []adminapi.InstrumentView) model {
	rows := make(map[string]*row, len(views))
	order := make([]string, 0, len(views))
	ids := make([]string, 0, len(views))
	for _, v := range views {
		rows[v.ID] = &row{id: v.ID, kind: v.Kind, fields: v.Fields}
		order = append(order, v.ID)
		ids = append(ids, v.ID)
	}
	sort.Strings(order)

	columns := []table.Column{
		{Title: "ID", Width: 16},
		{Title: "Kind", Width: 8},
		{Title: "Price", Width: 12},
		{Title: "Bid", Width: 10},
		{Title: "Ask", Width: 10},
		{Title: "Status", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithStyles(blotterTableStyles), table.WithFocused(true))

	return model{
		wsAddr:      wsAddr,
		instruments: ids,
		table:       t,
		rows:        rows,
		order:       order,
		status:      "connecting...",
	}
}

type appKeyMap struct {
	Quit key.Binding
}

var keys = appKeyMap{
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "q", "esc"), key.WithHelp("q", "quit")),
}

func (m model) Init() tea.Cmd {
	return connectCmd(m.wsAddr, m.instruments)
}

func connectCmd(wsAddr string, ids []string) tea.Cmd {
	return func() tea.Msg {
		f, err := dialFeed(wsAddr, ids)
		if err != nil {
			return feedErrMsg{err: err}
		}
		return connectedMsg{f: f}
	}
}

type connectedMsg struct{ f *feed }

func waitForFeedMsg(f *feed) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-f.out
		if !ok {
			return feedErrMsg{err: fmt.Errorf("feed closed")}
		}
		return msg
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 4)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if m.f != nil {
				m.f.close()
			}
			return m, tea.Quit
		}

	case connectedMsg:
		m.f = msg.f
		m.status = "live"
		return m, waitForFeedMsg(m.f)

	case initialDataMsg:
		for _, fields := range msg.instruments {
			id, _ := fields["id"].(string)
			if id == "" {
				continue
			}
			r, ok := m.rows[id]
			if !ok {
				r = &row{id: id}
				m.rows[id] = r
				m.order = append(m.order, id)
			}
			r.fields = fields
		}
		sort.Strings(m.order)
		m.refreshTable()
		return m, waitForFeedMsg(m.f)

	case deltaMsg:
		m.applyDelta(msg.delta)
		m.refreshTable()
		return m, waitForFeedMsg(m.f)

	case feedErrMsg:
		m.err = msg.err
		m.status = "disconnected"
		return m, nil
	}

	return m, nil
}

func (m *model) applyDelta(d wireDelta) {
	r, ok := m.rows[d.InstrumentID]
	if !ok {
		r = &row{id: d.InstrumentID, fields: map[string]any{}}
		m.rows[d.InstrumentID] = r
		m.order = append(m.order, d.InstrumentID)
		sort.Strings(m.order)
	}
	if r.fields == nil {
		r.fields = map[string]any{}
	}

	r.lastMove = 0
	for _, key := range priceLikeFields {
		newV, ok := d.Fields[key]
		if !ok {
			continue
		}
		newF, ok1 := newV.(float64)
		oldF, ok2 := r.fields[key].(float64)
		if ok1 && ok2 {
			if newF > oldF {
				r.lastMove = 1
			} else if newF < oldF {
				r.lastMove = -1
			}
		}
		break
	}

	for k, v := range d.Fields {
		r.fields[k] = v
	}
}

func (m *model) refreshTable() {
	rows := make([]table.Row, 0, len(m.order))
	for _, id := range m.order {
		r := m.rows[id]
		rows = append(rows, table.Row{
			r.id,
			r.kind,
			formatMovingField(r, priceLikeFields),
			formatFloat(r.fields["bidPrice"]),
			formatFloat(r.fields["askPrice"]),
			fmt.Sprintf("%v", r.fields["status"]),
		})
	}
	m.table.SetRows(rows)
}

func formatMovingField(r *row, keys []string) string {
	for _, k := range keys {
		v, ok := r.fields[k]
		if !ok {
			continue
		}
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprintf("%v", v)
		}
		s := humanize.Commaf(f)
		switch r.lastMove {
		case 1:
			return upStyle.Render(s)
		case -1:
			return downStyle.Render(s)
		default:
			return s
		}
	}
	return "-"
}

func formatFloat(v any) string {
	f, ok := v.(float64)
	if !ok {
		return "-"
	}
	return humanize.Commaf(f)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf(" bondstream blotter — %s ", m.status)))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(footerStyle.Render(fmt.Sprintf(" error: %s ", m.err.Error())))
	} else {
		b.WriteString(footerStyle.Render(fmt.Sprintf(" %d instruments · q to quit ", len(m.order))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, b.String())
}
