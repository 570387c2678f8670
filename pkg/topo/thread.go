package topo

// Thread represents a hyperthread, typically presented by the operating
// system as a logical CPU.
type Thread struct {
	id     int
	core   int
	socket int
}

// NewThread returns a new thread with the supplied thread, core, and
// socket IDs.
func NewThread(id int, core int, socket int) Thread {
	return Thread{id: id, core: core, socket: socket}
}

// ID returns the logical CPU id of the thread.
func (t Thread) ID() int {
	return t.id
}

// Core returns the physical core id the thread belongs to.
func (t Thread) Core() int {
	return t.core
}

// Socket returns the socket id the thread belongs to.
func (t Thread) Socket() int {
	return t.socket
}
