package deltacycle

// HookPos names a site at which a Hook can be triggered.
type HookPos struct {
	Name string
}

// HookPosBeforeFire triggers immediately before a SimTimer's callback runs.
var HookPosBeforeFire = &HookPos{Name: "BeforeFire"}

// HookPosAfterFire triggers immediately after a SimTimer's callback
// returns.
var HookPosAfterFire = &HookPos{Name: "AfterFire"}

// HookCtx carries the information about the site a hook was triggered at.
// This is the event wheel's adaptation of sim.HookCtx: akita brackets
// Handler.Handle(Event) this way, deltacycle brackets SimTimer.fire the
// same way.
type HookCtx struct {
	Domain *Simulator
	Pos    *HookPos
	Timer  *SimTimer
}

// Hook is a short piece of program a Hookable can invoke.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable is satisfied by anything that accepts Hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase provides the bookkeeping any Hookable needs.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// InvokeHook runs every registered hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

// stringLogger is the subset of *log.Logger that TimerLogHook needs,
// kept as an interface so tests can substitute a recorder.
type stringLogger interface {
	Printf(format string, v ...interface{})
}

// TimerLogHook is a Hook that writes one line per timer fire to a
// *log.Logger, the deltacycle analogue of sim.EventLogger.
type TimerLogHook struct {
	Logger stringLogger
}

// NewTimerLogHook returns a TimerLogHook writing through logger.
func NewTimerLogHook(logger stringLogger) *TimerLogHook {
	return &TimerLogHook{Logger: logger}
}

// Func writes the timer's identity and firing time before each fire.
func (h *TimerLogHook) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeFire {
		return
	}

	h.Logger.Printf("timer %s fire #%d at %s", ctx.Timer.id, ctx.Timer.tick+1, ctx.Timer.nextCall)
}
