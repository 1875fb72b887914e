package process

// Ancestry walks the parent chain of a tracked process, nearest parent
// first. The walk stops at the first untracked ancestor or after maxDepth
// hops, whichever comes first; pid 1 launches almost everything, so chains
// stay short in practice.
func (pm *ProcessMap) Ancestry(key Key, maxDepth int) []*ProcessInfo {
	var chain []*ProcessInfo
	info, ok := pm.Get(key)
	if !ok {
		return nil
	}
	seen := map[uint32]bool{info.PID: true}
	for depth := 0; depth < maxDepth; depth++ {
		info.Mu.RLock()
		ppid := info.PPID
		info.Mu.RUnlock()
		if ppid == 0 || seen[ppid] {
			break
		}
		parent, ok := pm.GetByPID(ppid)
		if !ok {
			break
		}
		chain = append(chain, parent)
		seen[ppid] = true
		info = parent
	}
	return chain
}

// Parent returns the tracked parent of a process, if known.
func (pm *ProcessMap) Parent(key Key) (*ProcessInfo, bool) {
	info, ok := pm.Get(key)
	if !ok {
		return nil, false
	}
	info.Mu.RLock()
	ppid := info.PPID
	info.Mu.RUnlock()
	if ppid == 0 {
		return nil, false
	}
	return pm.GetByPID(ppid)
}

// Children returns every tracked process whose parent is the given pid.
func (pm *ProcessMap) Children(pid uint32) []*ProcessInfo {
	var out []*ProcessInfo
	for _, info := range pm.List() {
		info.Mu.RLock()
		ppid := info.PPID
		info.Mu.RUnlock()
		if ppid == pid {
			out = append(out, info)
		}
	}
	return out
}
