package mixer

import "errors"

var (
	ErrInsertNotFound    = errors.New("mixer: insert not found")
	ErrDuplicateInsertID = errors.New("mixer: insert id already present")
)

// Mixer owns every insert plus the master bus and resolves solo/mute
// and send routing across the whole strip.
type Mixer struct {
	inserts []*Insert
	master  *Insert
}

// NewMixer creates a mixer with one master insert already present —
// every graph has exactly one.
func NewMixer() *Mixer {
	return &Mixer{master: New("master", "Master")}
}

// AddInsert registers a new channel strip.
func (m *Mixer) AddInsert(ins *Insert) error {
	for _, existing := range m.inserts {
		if existing.ID == ins.ID {
			return ErrDuplicateInsertID
		}
	}
	m.inserts = append(m.inserts, ins)
	return nil
}

// RemoveInsert drops a channel strip by id.
func (m *Mixer) RemoveInsert(id string) error {
	for i, ins := range m.inserts {
		if ins.ID == id {
			m.inserts = append(m.inserts[:i], m.inserts[i+1:]...)
			return nil
		}
	}
	return ErrInsertNotFound
}

// Find returns the insert with the given id, or nil.
func (m *Mixer) Find(id string) *Insert {
	for _, ins := range m.inserts {
		if ins.ID == id {
			return ins
		}
	}
	return nil
}

// Master returns the mixer's single master insert.
func (m *Mixer) Master() *Insert { return m.master }

// Inserts returns every non-master insert, in strip order.
func (m *Mixer) Inserts() []*Insert { return m.inserts }

// anySoloed reports whether at least one non-solo-safe insert is
// soloed, which is what gates the mute-everyone-else behavior.
func (m *Mixer) anySoloed() bool {
	for _, ins := range m.inserts {
		if ins.Solo && !ins.SoloSafe {
			return true
		}
	}
	return false
}

// Audible reports whether ins should be heard given current solo
// state across the whole mixer: soloing mutes everyone else globally,
// except solo-safe inserts like aux returns.
func (m *Mixer) Audible(ins *Insert) bool {
	return ins.audible(m.anySoloed())
}

// MaxLatency returns the maximum insert latency across the mixer, used
// by the graph to size each insert's compensating delay.
func (m *Mixer) MaxLatency() int {
	max := 0
	for _, ins := range m.inserts {
		if l := ins.Latency(); l > max {
			max = l
		}
	}
	return max
}

// Serialize captures every insert, including the master bus, in strip
// order with the master last — the shape a session snapshot's
// "inserts" field embeds directly.
func (m *Mixer) Serialize() []Serialized {
	out := make([]Serialized, 0, len(m.inserts)+1)
	for _, ins := range m.inserts {
		out = append(out, ins.Serialize())
	}
	out = append(out, m.master.Serialize())
	return out
}
