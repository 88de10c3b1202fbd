// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

// Dispose detaches both sinks, restores the local sink's mute flag and then
// closes the engine, returning its error unchanged. Sinks are released first
// because closing the engine ends the tracks they show. Later calls do
// nothing and return nil.
func (p *Peer) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()

		return nil
	}
	p.disposed = true

	if local := p.localVideo; local != nil {
		release(local)
		local.SetMuted(p.localMuted)
	}
	if remote := p.remoteVideo; remote != nil {
		release(remote)
	}
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	err := p.engine.Close()
	p.log.Debugf("%s peer disposed", p.mode)
	p.notify(EventDisposed, 0)

	return err
}
