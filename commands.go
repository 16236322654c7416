package veldt

import (
	"github.com/veldt-engine/veldt/types"
)

// Commands queues entity operations that cannot run while a hook is in flight. Hooks use it
// to despawn entities; the queue is flushed once the triggering entity operation has
// completed.
type Commands struct {
	pendingDespawns []types.EntityID
	// despawned tracks IDs already processed in the current flush so a hook that despawns
	// its own entity doesn't loop forever.
	despawned map[types.EntityID]bool
}

func newCommands() *Commands {
	return &Commands{
		pendingDespawns: make([]types.EntityID, 0),
		despawned:       map[types.EntityID]bool{},
	}
}

// Despawn queues the removal of an entity. The entity (and its OnRemove hooks) is processed
// after the current entity operation finishes.
func (c *Commands) Despawn(id types.EntityID) {
	if c.despawned[id] {
		return
	}
	for _, pending := range c.pendingDespawns {
		if pending == id {
			return
		}
	}
	c.pendingDespawns = append(c.pendingDespawns, id)
}

// IsEmpty reports whether there are queued commands.
func (c *Commands) IsEmpty() bool {
	return len(c.pendingDespawns) == 0
}

// markDespawned records an entity as already processed, so any despawn queued for it is
// dropped instead of re-entering the removal path.
func (c *Commands) markDespawned(id types.EntityID) {
	c.despawned[id] = true
}

// pendingLen returns the current length of the despawn queue.
func (c *Commands) pendingLen() int {
	return len(c.pendingDespawns)
}

// rollback drops every despawn queued after the given queue position. Used when the entity
// operation whose hooks queued them fails.
func (c *Commands) rollback(n int) {
	if n < len(c.pendingDespawns) {
		c.pendingDespawns = c.pendingDespawns[:n]
	}
}

// reset clears all bookkeeping. Called at the start of each tick.
func (c *Commands) reset() {
	c.pendingDespawns = c.pendingDespawns[:0]
	c.despawned = map[types.EntityID]bool{}
}

// flushCommands processes queued despawns until the queue is empty. OnRemove hooks run for
// each component of a despawned entity and may queue further despawns. The flush is not
// reentrant; a Remove triggered by the flush queues into the same pass.
func (w *World) flushCommands(wCtx WorldContext) error {
	if w.isFlushingCommands {
		return nil
	}
	w.isFlushingCommands = true
	defer func() { w.isFlushingCommands = false }()

	cmds := w.commands
	for len(cmds.pendingDespawns) > 0 {
		id := cmds.pendingDespawns[0]
		cmds.pendingDespawns = cmds.pendingDespawns[1:]
		if cmds.despawned[id] {
			continue
		}
		cmds.despawned[id] = true
		if err := Remove(wCtx, id); err != nil {
			return err
		}
	}
	return nil
}
