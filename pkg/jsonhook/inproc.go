package jsonhook

import "sync"

var (
	inprocMu sync.RWMutex
	inproc   = map[string]Handler{}
)

// RegisterInproc makes h available under a name referenced by "inproc"
// handlers in the manifest. Registering a name twice panics.
func RegisterInproc(name string, h Handler) {
	if h == nil {
		panic("jsonhook: nil inproc handler " + name)
	}
	inprocMu.Lock()
	defer inprocMu.Unlock()
	if _, dup := inproc[name]; dup {
		panic("jsonhook: inproc handler " + name + " registered twice")
	}
	inproc[name] = h
}

// LookupInproc retrieves a registered in-proc handler by name.
func LookupInproc(name string) (Handler, bool) {
	inprocMu.RLock()
	defer inprocMu.RUnlock()
	h, ok := inproc[name]
	return h, ok
}
