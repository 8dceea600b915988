// Package dashboard is the terminal view. It only reads store snapshots; the
// operator keys route through the stream client and the store's own
// operations.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"optimus-dashboard/pkg/clock"
	"optimus-dashboard/pkg/store"
	"optimus-dashboard/pkg/stream"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = "[yellow]r[-] reconnect  [yellow]d[-] disconnect  [yellow]c[-] clear history  [yellow]q[-] quit"

// Controller is the slice of the stream client the keys drive.
type Controller interface {
	Reconnect()
	Disconnect()
	State() stream.State
	Attempts() int
	Exhausted() bool
}

type Dashboard struct {
	store  *store.Store
	ctrl   Controller
	clock  clock.Clock
	logger *log.Logger

	app       *tview.Application
	status    *tview.TextView
	telemetry *tview.TextView
	joints    *tview.TextView
	history   *tview.TextView
	alerts    *tview.TextView
}

func New(st *store.Store, ctrl Controller, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = log.Default()
	}
	d := &Dashboard{
		store:     st,
		ctrl:      ctrl,
		clock:     clock.RealClock{},
		logger:    logger,
		app:       tview.NewApplication(),
		status:    textView(""),
		telemetry: textView("Telemetry"),
		joints:    textView("Joint currents"),
		history:   textView("History"),
		alerts:    textView("Alerts"),
	}

	top := tview.NewFlex().
		AddItem(d.telemetry, 0, 1, false).
		AddItem(d.joints, 0, 1, false)
	help := tview.NewTextView().SetDynamicColors(true).SetText(helpText)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.status, 1, 0, false).
		AddItem(top, 10, 0, false).
		AddItem(d.history, 5, 0, false).
		AddItem(d.alerts, 0, 1, false).
		AddItem(help, 1, 0, false)

	d.app.SetRoot(root, true).SetInputCapture(d.handleKey)
	return d
}

// Run blocks until the user quits or ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := d.store.Subscribe()
	defer sub.Unsubscribe()

	go d.watch(ctx, sub)
	return d.app.Run()
}

func (d *Dashboard) watch(ctx context.Context, sub *store.Subscription) {
	// Ages in the header go stale between frames.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var latest store.Snapshot
	for {
		select {
		case <-ctx.Done():
			d.app.Stop()
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			latest = snap
		case <-ticker.C:
		}
		snap := latest
		d.app.QueueUpdateDraw(func() { d.render(snap) })
	}
}

func (d *Dashboard) render(snap store.Snapshot) {
	now := d.clock.Now()
	status := StreamStatus{State: stream.StateDisconnected.String()}
	if d.ctrl != nil {
		status = StreamStatus{
			State:     d.ctrl.State().String(),
			Attempts:  d.ctrl.Attempts(),
			Exhausted: d.ctrl.Exhausted(),
		}
	}

	d.status.SetText(StatusLine(snap, status, now))
	d.telemetry.SetText(TelemetryPanel(snap))
	if s, ok := snap.Latest(); ok {
		d.joints.SetText(JointsPanel(s.Joints))
	}
	_, _, width, _ := d.history.GetInnerRect()
	d.history.SetText(HistoryPanel(snap.History, width-8))
	d.alerts.SetTitle(alertsTitle(snap))
	d.alerts.SetText(AlertList(snap.Alerts, now))
}

func (d *Dashboard) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyCtrlC {
		d.app.Stop()
		return nil
	}
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	switch ev.Rune() {
	case 'q':
		d.app.Stop()
	case 'r':
		if d.ctrl != nil {
			d.logger.Printf("manual reconnect requested")
			d.ctrl.Reconnect()
		}
	case 'd':
		if d.ctrl != nil {
			d.ctrl.Disconnect()
		}
	case 'c':
		d.store.ClearHistory()
	default:
		return ev
	}
	return nil
}

func alertsTitle(snap store.Snapshot) string {
	active := len(snap.ActiveAlerts())
	if active == 0 {
		return " Alerts "
	}
	return fmt.Sprintf(" Alerts (%d active) ", active)
}

func textView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	if title != "" {
		tv.SetBorder(true).SetTitle(" " + title + " ")
	}
	return tv
}
