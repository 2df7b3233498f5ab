package daemon

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/groupwm/internal/wm"
)

type desktopCall struct {
	Names   []string
	Current int
}

type recordingPublisher struct {
	desktops []desktopCall
	clients  [][]uint32
	windows  map[uint32]int
	failList bool
}

func (p *recordingPublisher) Desktops(names []string, current int) error {
	p.desktops = append(p.desktops, desktopCall{names, current})
	return nil
}

func (p *recordingPublisher) ClientList(ids []uint32) error {
	if p.failList {
		return errors.New("no display")
	}
	p.clients = append(p.clients, ids)
	return nil
}

func (p *recordingPublisher) SetWindowDesktop(id uint32, desktop int) error {
	if p.windows == nil {
		p.windows = make(map[uint32]int)
	}
	p.windows[id] = desktop
	return nil
}

func snapshot(current string, windows ...wm.WindowStatus) *wm.Snapshot {
	return &wm.Snapshot{
		Group:   current,
		Groups:  []wm.GroupStatus{{Name: "1"}, {Name: "2"}, {Name: "3"}},
		Windows: windows,
	}
}

func TestDesktopSync_PublishesChangesOnly(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDesktopSync(pub, nil)

	d.Publish(snapshot("2", wm.WindowStatus{ID: 10, Group: "1"}, wm.WindowStatus{ID: 11, Group: "2"}))
	d.Publish(snapshot("2", wm.WindowStatus{ID: 10, Group: "1"}, wm.WindowStatus{ID: 11, Group: "2"}))
	d.Publish(snapshot("3", wm.WindowStatus{ID: 11, Group: "3"}))

	wantDesktops := []desktopCall{
		{Names: []string{"1", "2", "3"}, Current: 1},
		{Names: []string{"1", "2", "3"}, Current: 2},
	}
	if diff := cmp.Diff(wantDesktops, pub.desktops); diff != "" {
		t.Errorf("desktops (-want +got):\n%s", diff)
	}
	wantClients := [][]uint32{{10, 11}, {11}}
	if diff := cmp.Diff(wantClients, pub.clients); diff != "" {
		t.Errorf("client lists (-want +got):\n%s", diff)
	}
	wantWindows := map[uint32]int{10: 0, 11: 2}
	if diff := cmp.Diff(wantWindows, pub.windows); diff != "" {
		t.Errorf("window desktops (-want +got):\n%s", diff)
	}
	if _, ok := d.desktop[10]; ok {
		t.Error("closed window 10 still tracked")
	}
}

func TestDesktopSync_RetriesAfterFailure(t *testing.T) {
	pub := &recordingPublisher{failList: true}
	d := NewDesktopSync(pub, nil)

	d.Publish(snapshot("1", wm.WindowStatus{ID: 5, Group: "1"}))
	pub.failList = false
	d.Publish(snapshot("1", wm.WindowStatus{ID: 5, Group: "1"}))

	if diff := cmp.Diff([][]uint32{{5}}, pub.clients); diff != "" {
		t.Errorf("client lists (-want +got):\n%s", diff)
	}
}
