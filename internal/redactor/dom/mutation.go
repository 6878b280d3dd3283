package dom

import (
	"sync"

	"golang.org/x/net/html"
)

type MutationType int

const (
	ChildList MutationType = iota
	Attributes
	CharacterData
)

func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case Attributes:
		return "attributes"
	case CharacterData:
		return "characterData"
	}
	return "unknown"
}

// MutationRecord описывает одно изменение внешнего представления.
type MutationRecord struct {
	Type            MutationType
	Target          *html.Node
	AddedNodes      []*html.Node
	RemovedNodes    []*html.Node
	PreviousSibling *html.Node
	NextSibling     *html.Node
	AttributeName   string
	OldValue        string
}

// Observer накапливает записи о мутациях поддерева, начиная с наблюдаемого корня.
// Изменения, сделанные через функции пакета, попадают во все наблюдатели,
// чьи корни являются предками цели.
type Observer struct {
	root    *html.Node
	mu      sync.Mutex
	records []MutationRecord
}

var observers = struct {
	sync.RWMutex
	byRoot map[*html.Node][]*Observer
}{byRoot: make(map[*html.Node][]*Observer)}

// Observe начинает наблюдение за поддеревом root.
func Observe(root *html.Node) *Observer {
	o := &Observer{root: root}
	observers.Lock()
	observers.byRoot[root] = append(observers.byRoot[root], o)
	observers.Unlock()
	return o
}

func (o *Observer) Root() *html.Node {
	return o.root
}

// TakeRecords возвращает накопленные записи и очищает очередь.
func (o *Observer) TakeRecords() []MutationRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	records := o.records
	o.records = nil
	return records
}

// Pending сообщает количество ещё не выданных записей.
func (o *Observer) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.records)
}

// Disconnect прекращает наблюдение и отбрасывает накопленные записи.
func (o *Observer) Disconnect() {
	observers.Lock()
	list := observers.byRoot[o.root]
	for i, candidate := range list {
		if candidate == o {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(observers.byRoot, o.root)
	} else {
		observers.byRoot[o.root] = list
	}
	observers.Unlock()

	o.mu.Lock()
	o.records = nil
	o.mu.Unlock()
}

func (o *Observer) push(rec MutationRecord) {
	o.mu.Lock()
	o.records = append(o.records, rec)
	o.mu.Unlock()
}

func record(rec MutationRecord) {
	observers.RLock()
	if len(observers.byRoot) == 0 {
		observers.RUnlock()
		return
	}
	var targets []*Observer
	for p := rec.Target; p != nil; p = p.Parent {
		targets = append(targets, observers.byRoot[p]...)
	}
	observers.RUnlock()

	for _, o := range targets {
		o.push(rec)
	}
}
