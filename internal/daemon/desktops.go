package daemon

import (
	"slices"

	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/wm"
)

// DesktopPublisher writes the EWMH desktop and client properties.
type DesktopPublisher interface {
	Desktops(names []string, current int) error
	ClientList(ids []uint32) error
	SetWindowDesktop(id uint32, desktop int) error
}

// DesktopSync mirrors engine snapshots into EWMH properties so pagers and
// bars see groups as desktops. Only what changed since the previous snapshot
// is written.
type DesktopSync struct {
	pub DesktopPublisher
	log *logger.Logger

	names   []string
	current int
	clients []uint32
	desktop map[uint32]int
}

// NewDesktopSync creates a synchronizer writing through pub.
func NewDesktopSync(pub DesktopPublisher, log *logger.Logger) *DesktopSync {
	if log == nil {
		log = logger.Nop()
	}
	return &DesktopSync{
		pub:     pub,
		log:     log,
		current: -1,
		desktop: make(map[uint32]int),
	}
}

// Publish is the engine's publish hook. It runs on the reactor goroutine.
func (d *DesktopSync) Publish(s *wm.Snapshot) {
	names := make([]string, len(s.Groups))
	index := make(map[string]int, len(s.Groups))
	for i, g := range s.Groups {
		names[i] = g.Name
		index[g.Name] = i
	}
	current := -1
	if i, ok := index[s.Group]; ok {
		current = i
	}

	if !slices.Equal(names, d.names) || current != d.current {
		if err := d.pub.Desktops(names, current); err != nil {
			d.log.Warn("failed to publish desktops", "error", err.Error())
		} else {
			d.names, d.current = names, current
		}
	}

	clients := make([]uint32, len(s.Windows))
	seen := make(map[uint32]bool, len(s.Windows))
	for i, w := range s.Windows {
		clients[i] = w.ID
		seen[w.ID] = true
		desk, ok := index[w.Group]
		if !ok {
			continue
		}
		if prev, known := d.desktop[w.ID]; known && prev == desk {
			continue
		}
		if err := d.pub.SetWindowDesktop(w.ID, desk); err != nil {
			d.log.Debug("failed to set window desktop", "window", w.ID, "error", err.Error())
			continue
		}
		d.desktop[w.ID] = desk
	}
	for id := range d.desktop {
		if !seen[id] {
			delete(d.desktop, id)
		}
	}

	if !slices.Equal(clients, d.clients) {
		if err := d.pub.ClientList(clients); err != nil {
			d.log.Warn("failed to publish client list", "error", err.Error())
		} else {
			d.clients = clients
		}
	}
}
