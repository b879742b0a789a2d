package domain

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the caller's goroutine, after the command has
// been appended to the log.
type LifecycleHooks struct {
	OnCommand  func(Command)
	OnRejected func(op string, err error)
}

// ChainHooks returns hooks that invoke each of the given hooks in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommand: func(cmd Command) {
			for _, h := range hooks {
				if h.OnCommand != nil {
					h.OnCommand(cmd)
				}
			}
		},
		OnRejected: func(op string, err error) {
			for _, h := range hooks {
				if h.OnRejected != nil {
					h.OnRejected(op, err)
				}
			}
		},
	}
}
